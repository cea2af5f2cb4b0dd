package imports

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"problemsolving.GO/api"
	"problemsolving.GO/service/ingest"
	"problemsolving.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterImportRoutes)
}

func RegisterImportRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/imports")

	// POST /api/imports/orders {"orders": [...]}
	g.POST("/orders", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body struct {
			Orders []ingest.OrderInput `json:"orders"`
		}
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		if len(body.Orders) == 0 {
			return api.BadRequest(c, "orders array is required and must not be empty")
		}
		res, err := deps.Ingest.ImportOrders(c.Request().Context(), company, body.Orders)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, fmt.Sprintf("%d order lines received", res.Received), res)
	})

	// POST /api/imports/picking {"events": [...]} – rebuilds the inventory snapshot afterwards
	g.POST("/picking", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		var body struct {
			Events []ingest.PickingInput `json:"events"`
		}
		if err := c.Bind(&body); err != nil {
			return api.BadRequest(c, err.Error())
		}
		if len(body.Events) == 0 {
			return api.BadRequest(c, "events array is required and must not be empty")
		}
		res, err := deps.Ingest.ImportPicking(c.Request().Context(), company, body.Events)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, fmt.Sprintf("%d picking events created", res.EventsCreated), res)
	})

	// POST /api/imports/locations – JSON {"locations": [...]}, a text/csv body, or a multipart "file"
	g.POST("/locations", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		rows, warnings, err := locationRows(c)
		if err != nil {
			return api.BadRequest(c, err.Error())
		}
		res, err := deps.Ingest.ImportLocations(c.Request().Context(), company, rows)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		res.Warnings = append(warnings, res.Warnings...)
		res.Skipped += len(warnings)
		res.Received += len(warnings)
		return api.OK(c, fmt.Sprintf("%d inserted, %d updated, %d stale", res.Inserted, res.Updated, res.Stale), res)
	})

	// POST /api/imports/inventory/rebuild
	g.POST("/inventory/rebuild", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		start := time.Now()
		n, err := deps.Inventory.Rebuild(c.Request().Context(), company)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, fmt.Sprintf("%d snapshot rows", n), echo.Map{
			"company":       company,
			"snapshot_rows": n,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
	})

	// DELETE /api/imports/shipments/cache – forget cached vendor answers of the company
	g.DELETE("/shipments/cache", func(c echo.Context) error {
		company, err := deps.Company(c)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		if deps.ShipmentCache == nil {
			return api.OK(c, "shipment cache disabled", echo.Map{"company": company, "removed": 0})
		}
		n, err := deps.ShipmentCache.Invalidate(c.Request().Context(), company)
		if err != nil {
			return api.Fail(c, err, nil)
		}
		return api.OK(c, fmt.Sprintf("%d cached shipments removed", n), echo.Map{"company": company, "removed": n})
	})
}

func locationRows(c echo.Context) ([]inventory.LocationInput, []string, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ct, echo.MIMEMultipartForm):
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, nil, fmt.Errorf("file field is required: %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		return ingest.ParseLocationCSV(f)
	case strings.HasPrefix(ct, "text/csv"), strings.HasPrefix(ct, echo.MIMETextPlain):
		return ingest.ParseLocationCSV(io.LimitReader(c.Request().Body, 64<<20))
	}
	var body struct {
		Locations []inventory.LocationInput `json:"locations"`
	}
	if err := c.Bind(&body); err != nil {
		return nil, nil, err
	}
	if len(body.Locations) == 0 {
		return nil, nil, fmt.Errorf("locations array is required and must not be empty")
	}
	return body.Locations, nil, nil
}
