package check

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"problemsolving.GO/api"
	"problemsolving.GO/config"
	"problemsolving.GO/core/testdb"
	"problemsolving.GO/service/route"
	"problemsolving.GO/service/shortfall"
)

type stubProvider map[string][]shortfall.ShippedRecord

func (p stubProvider) Shipped(_ context.Context, _, basket string) ([]shortfall.ShippedRecord, error) {
	return p[basket], nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newServer seeds a basket missing 2 units of SKU-A stocked on two unit-loads and creates its mission.
func newServer(t *testing.T) (*echo.Echo, []route.Stop) {
	t.Helper()
	db := testdb.Open(t)
	provider := stubProvider{
		"C1": {{OrderNumber: "O1", PickListID: 200, SKU: "SKU-A", QtyShipped: decimal.NewFromInt(1)}},
	}
	deps := api.NewDeps(db, &config.Config{DefaultCompany: "acme"}, provider)
	e := echo.New()
	RegisterCheckRoutes(e.Group("/api"), deps)

	testdb.OrderItem(t, db, "acme", "O1", 200, testdb.Int64(5), "SKU-A", "3", nil)
	testdb.Stock(t, db, "acme", 5, "SKU-A", "U1", "1")
	testdb.Stock(t, db, "acme", 5, "SKU-A", "U2", "1")
	testdb.Located(t, db, "acme", "U1", "A-01-1-1")
	testdb.Located(t, db, "acme", "U2", "B-02-1-1")

	ctx := context.Background()
	res, err := deps.Missions.Create(ctx, "acme", "C1", "op1")
	if err != nil || !res.MissionCreated {
		t.Fatalf("Create = %+v, %v", res, err)
	}
	stops, err := deps.Routes.Route(ctx, "acme", res.Mission.ID)
	if err != nil || len(stops) != 2 {
		t.Fatalf("Route = %+v, %v", stops, err)
	}
	return e, stops
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestCheckRoutes_Flow(t *testing.T) {
	e, stops := newServer(t)
	first := "/api/checks/" + strconv.FormatUint(stops[0].CheckID, 10)
	second := "/api/checks/" + strconv.FormatUint(stops[1].CheckID, 10)

	code, env := do(t, e, http.MethodGet, first, "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"status":"TO_CHECK"`) {
		t.Fatalf("get = %d %s", code, env.Data)
	}

	code, env = do(t, e, http.MethodPost, first+"/found", `{"checked_by":"op1","qty_found":0}`)
	if code != http.StatusBadRequest {
		t.Errorf("found qty 0 = %d, want 400", code)
	}

	code, env = do(t, e, http.MethodPost, first+"/not-found", `{"checked_by":"op1","notes":"empty slot"}`)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"mission_status":"IN_PROGRESS"`) {
		t.Fatalf("not-found = %d %s", code, env.Data)
	}

	code, env = do(t, e, http.MethodPost, first+"/found", `{"checked_by":"op1"}`)
	if code != http.StatusConflict || env.Success {
		t.Errorf("found on terminal check = %d %+v, want 409", code, env)
	}

	code, env = do(t, e, http.MethodPut, second+"/update", `{"found_in_position":true,"checked_by":"op2","qty_found":"2"}`)
	if code != http.StatusOK {
		t.Fatalf("update = %d %+v", code, env)
	}
	var res struct {
		ItemResolved     bool   `json:"item_resolved"`
		MissionCompleted bool   `json:"mission_completed"`
		MissionStatus    string `json:"mission_status"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.ItemResolved || !res.MissionCompleted || res.MissionStatus != "COMPLETED" {
		t.Errorf("update result = %+v", res)
	}
	if env.Message != "check recorded, mission completed" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestCheckRoutes_NotFound(t *testing.T) {
	e, _ := newServer(t)
	for _, path := range []string{"/api/checks/9999", "/api/checks/0"} {
		code, _ := do(t, e, http.MethodGet, path, "")
		if code != http.StatusNotFound && code != http.StatusBadRequest {
			t.Errorf("GET %s = %d", path, code)
		}
	}
	code, _ := do(t, e, http.MethodPost, "/api/checks/9999/not-found", `{}`)
	if code != http.StatusNotFound {
		t.Errorf("not-found on missing check = %d, want 404", code)
	}
}
