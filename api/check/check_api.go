package check

import (
	"github.com/labstack/echo/v4"

	"problemsolving.GO/api"
	checkService "problemsolving.GO/service/check"
)

func init() {
	api.RegisterModule(RegisterCheckRoutes)
}

func RegisterCheckRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/checks")

	g.GET("/:id", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		d, err := deps.Checks.Get(c.Request().Context(), company, id)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, "", d)
	})

	// POST /api/checks/:id/found {checked_by, qty_found, notes}
	g.POST("/:id/found", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body checkService.FoundInput
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		res, err := deps.Checks.MarkFound(c.Request().Context(), company, id, body)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, message(res), res)
	})

	g.POST("/:id/not-found", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body checkService.NotFoundInput
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		res, err := deps.Checks.MarkNotFound(c.Request().Context(), company, id, body)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, message(res), res)
	})

	// PUT /api/checks/:id/update {found_in_position, checked_by, qty_found, notes}
	g.PUT("/:id/update", func(c echo.Context) error {
		company, id, err := target(c, deps)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body checkService.UpdateInput
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		res, err := deps.Checks.Update(c.Request().Context(), company, id, body)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, message(res), res)
	})
}

func message(res *checkService.Result) string {
	switch {
	case res.MissionComplete:
		return "check recorded, mission completed"
	case res.ItemResolved:
		return "check recorded, item resolved"
	}
	return "check recorded"
}

func target(c echo.Context, deps *api.Deps) (string, uint64, error) {
	company, err := deps.Company(c)
	if err != nil {
		return "", 0, err
	}
	id, err := api.ParamID(c, "id")
	return company, id, err
}
