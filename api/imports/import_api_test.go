package imports

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"problemsolving.GO/api"
	"problemsolving.GO/config"
	"problemsolving.GO/core/testdb"
	inventoryEntity "problemsolving.GO/model/entity/inventory"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	deps := api.NewDeps(db, &config.Config{DefaultCompany: "acme"}, nil)
	e := echo.New()
	RegisterImportRoutes(e.Group("/api"), deps)
	return e, db
}

func send(t *testing.T, e *echo.Echo, method, path, contentType string, body []byte) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestImportRoutes_OrdersPickingRebuild(t *testing.T) {
	e, db := newServer(t)

	code, env := send(t, e, http.MethodPost, "/api/imports/orders", echo.MIMEApplicationJSON, []byte(`{"orders":[
		{"order_number":"O1","pick_list_id":10,"pick_list_group":3,"sku":"SKU-A","qty_ordered":"4"},
		{"order_number":"O1","pick_list_id":10,"pick_list_group":3,"sku":"SKU-B","qty_ordered":1}
	]}`))
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"items_created":2`) {
		t.Fatalf("orders = %d %s", code, env.Data)
	}

	code, env = send(t, e, http.MethodPost, "/api/imports/picking", echo.MIMEApplicationJSON, []byte(`{"events":[
		{"pick_list_group":3,"sku":"SKU-A","unit_load_id":"U1","qty_picked":"2"},
		{"pick_list_group":3,"sku":"SKU-B","unit_load_id":"U2","qty_picked":"1"}
	]}`))
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"snapshot_rows":2`) {
		t.Fatalf("picking = %d %s", code, env.Data)
	}

	code, env = send(t, e, http.MethodPost, "/api/imports/inventory/rebuild?company=acme", "", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"snapshot_rows":2`) {
		t.Errorf("rebuild = %d %s", code, env.Data)
	}
	var n int64
	db.Model(&inventoryEntity.Snapshot{}).Where("company = ?", "acme").Count(&n)
	if n != 2 {
		t.Errorf("snapshot rows = %d, want 2", n)
	}

	code, _ = send(t, e, http.MethodPost, "/api/imports/orders", echo.MIMEApplicationJSON, []byte(`{"orders":[]}`))
	if code != http.StatusBadRequest {
		t.Errorf("empty orders = %d, want 400", code)
	}
}

func TestImportRoutes_Locations(t *testing.T) {
	e, db := newServer(t)

	csvBody := "DataOra;Pallet;Mag;Scaf;Col;Pia;Sc;Comp\n" +
		"03/06/2024 08:00:00;U1;65066;10;5;1;;\n" +
		";;1;2;3;4;;\n"
	code, env := send(t, e, http.MethodPost, "/api/imports/locations", "text/csv", []byte(csvBody))
	if code != http.StatusOK {
		t.Fatalf("csv = %d %+v", code, env)
	}
	var res struct {
		Inserted int      `json:"inserted"`
		Skipped  int      `json:"skipped"`
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Inserted != 1 || res.Skipped != 1 || len(res.Warnings) != 1 {
		t.Errorf("csv result = %+v", res)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "monitor.csv")
	fw.Write([]byte("DataOra,Pallet,Mag,Scaf,Col,Pia,Sc,Comp\n04/06/2024 08:00:00,U2,1,2,3,4,,\n"))
	mw.Close()
	code, env = send(t, e, http.MethodPost, "/api/imports/locations", mw.FormDataContentType(), buf.Bytes())
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"inserted":1`) {
		t.Errorf("multipart = %d %s", code, env.Data)
	}

	code, env = send(t, e, http.MethodPost, "/api/imports/locations", echo.MIMEApplicationJSON,
		[]byte(`{"locations":[{"unit_load_id":"U3","warehouse":"M1","aisle":"A"}]}`))
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"inserted":1`) {
		t.Errorf("json = %d %s", code, env.Data)
	}

	var loc inventoryEntity.Location
	if err := db.Where("company = ? AND unit_load_id = ?", "acme", "U1").First(&loc).Error; err != nil {
		t.Fatalf("location U1: %v", err)
	}
	if loc.PositionCode != "65066-10-5-1" {
		t.Errorf("PositionCode = %q", loc.PositionCode)
	}

	code, _ = send(t, e, http.MethodPost, "/api/imports/locations", echo.MIMEApplicationJSON, []byte(`{}`))
	if code != http.StatusBadRequest {
		t.Errorf("empty locations = %d, want 400", code)
	}
}

func TestImportRoutes_ShipmentCacheDisabled(t *testing.T) {
	e, _ := newServer(t)
	code, env := send(t, e, http.MethodDelete, "/api/imports/shipments/cache", "", nil)
	if code != http.StatusOK || env.Message != "shipment cache disabled" {
		t.Errorf("cache = %d %+v", code, env)
	}
}
