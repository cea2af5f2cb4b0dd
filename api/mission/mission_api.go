package mission

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"problemsolving.GO/api"
)

func init() {
	api.RegisterModule(RegisterMissionRoutes)
}

type basketBody struct {
	BasketCode string `json:"basket_code"`
	CreatedBy  string `json:"created_by"`
}

type batchBody struct {
	BasketCodes []string `json:"basket_codes"`
	CreatedBy   string   `json:"created_by"`
}

type statusBody struct {
	NewStatus string `json:"new_status"`
	Status    string `json:"status"`
}

func RegisterMissionRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/missions")

	// POST /api/missions/preview – shortfall of one basket, nothing persisted
	g.POST("/preview", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body basketBody
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		if strings.TrimSpace(body.BasketCode) == "" {
			return api.BadRequest(c, "basket_code is required")
		}
		p, err := deps.Missions.Preview(c.Request().Context(), company, strings.TrimSpace(body.BasketCode))
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, strconv.Itoa(len(p.Lines))+" missing items", p)
	})

	// POST /api/missions/from-basket
	g.POST("/from-basket", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body basketBody
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		if strings.TrimSpace(body.BasketCode) == "" {
			return api.BadRequest(c, "basket_code is required")
		}
		res, err := deps.Missions.Create(c.Request().Context(), company, strings.TrimSpace(body.BasketCode), body.CreatedBy)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, res.Message, res)
	})

	// POST /api/missions/batch – one mission for several baskets
	g.POST("/batch", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body batchBody
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		res, err := deps.Missions.CreateBatch(c.Request().Context(), company, body.BasketCodes, body.CreatedBy)
		if err != nil {
			return api.Fail(c, err, res)
		}
		return api.OK(c, res.Message, res)
	})

	// GET /api/missions?status=&limit=
	g.GET("", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		limit := 0
		if v := c.QueryParam("limit"); v != "" {
			if limit, err = strconv.Atoi(v); err != nil {
				return api.BadRequest(c, "invalid limit "+strconv.Quote(v))
			}
		}
		list, err := deps.Routes.List(c.Request().Context(), company, c.QueryParam("status"), limit)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, "", list)
	})

	g.GET("/:id", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		d, err := deps.Routes.Details(c.Request().Context(), company, id)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, "", d)
	})

	g.GET("/:id/route", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		stops, err := deps.Routes.Route(c.Request().Context(), company, id)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, "", stops)
	})

	// GET /api/missions/:id/next-position – data is null once every check is done
	g.GET("/:id/next-position", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		stop, err := deps.Routes.Next(c.Request().Context(), company, id)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		if stop == nil {
			return api.OK(c, "no positions left to check", nil)
		}
		return api.OK(c, "", stop)
	})

	g.GET("/:id/summary", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		s, err := deps.Routes.Summary(c.Request().Context(), company, id)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, "", s)
	})

	// PUT /api/missions/:id/status {new_status} – manual override
	g.PUT("/:id/status", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body statusBody
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		status := body.NewStatus
		if status == "" {
			status = body.Status
		}
		m, err := deps.Checks.UpdateMissionStatus(c.Request().Context(), company, id, status)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, "mission "+m.MissionCode+" is "+m.Status, m)
	})
}

func target(c echo.Context, deps *api.Deps) (string, uint64, error) {
	company, err := deps.Company(c)
	if err != nil {
		return "", 0, err
	}
	id, err := api.ParamID(c, "id")
	return company, id, err
}
