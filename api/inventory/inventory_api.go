package inventory

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"problemsolving.GO/api"
	inventoryEntity "problemsolving.GO/model/entity/inventory"
	inventoryService "problemsolving.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterInventoryRoutes)
}

// LookupResponse answers "where is this sku, and where is this unit-load".
type LookupResponse struct {
	SKU       string                           `json:"sku"`
	Group     int64                            `json:"pick_list_group"`
	UnitLoads []inventoryService.UnitLoadStock `json:"unit_loads"`
	Location  *inventoryEntity.Location        `json:"location,omitempty"`
}

// RegisterInventoryRoutes sets up the read-only inventory lookup API.
func RegisterInventoryRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/inventory")

	// GET /api/inventory/lookup?group=3&sku=XXX&unit_load=U1 – unit-loads of a sku, and one unit-load's location, fetched in parallel
	g.GET("/lookup", func(c echo.Context) error {
		start := time.Now()
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		sku := strings.TrimSpace(c.QueryParam("sku"))
		group, gerr := strconv.ParseInt(c.QueryParam("group"), 10, 64)
		unitLoad := strings.TrimSpace(c.QueryParam("unit_load"))
		if (sku == "" || gerr != nil) && unitLoad == "" {
			return api.BadRequest(c, "group and sku, or unit_load, required")
		}

		res := LookupResponse{SKU: sku, Group: group}
		ctx := c.Request().Context()
		eg, gctx := errgroup.WithContext(ctx)
		if sku != "" && gerr == nil {
			eg.Go(func() error {
				var err error
				res.UnitLoads, err = deps.Inventory.UnitLoads(gctx, company, group, sku)
				return err
			})
		}
		if unitLoad != "" {
			eg.Go(func() error {
				var err error
				res.Location, err = deps.Inventory.Location(gctx, company, unitLoad)
				return err
			})
		}
		if err := eg.Wait(); err != nil {
			return api.Fail(c, err, nil)
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		if len(res.UnitLoads) == 0 && res.Location == nil {
			return c.JSON(http.StatusNotFound, api.Envelope{Success: false, Message: "nothing found"})
		}
		return api.OK(c, "", res)
	})

	// GET /api/inventory/snapshot – the whole derived snapshot of the company
	g.GET("/snapshot", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		rows, n, err := deps.Inventory.Snapshot(c.Request().Context(), company)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, strconv.FormatInt(n, 10)+" rows", echo.Map{"company": company, "total": n, "rows": rows})
	})
}
