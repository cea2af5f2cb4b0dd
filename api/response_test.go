package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"problemsolving.GO/core/apperr"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("mission", 7), http.StatusNotFound},
		{&apperr.PreconditionError{Entity: "position check", ID: 1, State: "FOUND"}, http.StatusConflict},
		{apperr.Invalid("bad status"), http.StatusBadRequest},
		{apperr.Upstream("no rows"), http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", apperr.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestCompany_HeaderQueryDefault(t *testing.T) {
	e := echo.New()
	deps := &Deps{DefaultCompany: "acme"}

	req := httptest.NewRequest(http.MethodGet, "/?company=beta", nil)
	req.Header.Set("X-Company", " Gamma ")
	c := e.NewContext(req, httptest.NewRecorder())
	if got, _ := deps.Company(c); got != "gamma" {
		t.Errorf("header company = %q, want gamma", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/?company=beta", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	if got, _ := deps.Company(c); got != "beta" {
		t.Errorf("query company = %q, want beta", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	if got, _ := deps.Company(c); got != "acme" {
		t.Errorf("default company = %q, want acme", got)
	}

	_, err := (&Deps{}).Company(c)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("missing company err = %v, want ErrInvalidInput", err)
	}
}

func TestParamID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")
	if id, err := ParamID(c, "id"); err != nil || id != 42 {
		t.Errorf("ParamID = %d, %v; want 42", id, err)
	}
	c.SetParamValues("x")
	if _, err := ParamID(c, "id"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("ParamID(x) err = %v, want ErrInvalidInput", err)
	}
}
