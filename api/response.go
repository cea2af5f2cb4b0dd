package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"problemsolving.GO/config"
	"problemsolving.GO/core/apperr"
)

// Envelope is the body of every /api response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK writes a 200 success envelope.
func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case apperr.IsPrecondition(err):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Fail writes an error envelope; data may carry a partial result.
func Fail(c echo.Context, err error, data interface{}) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, Envelope{Success: false, Message: err.Error(), Data: data})
}

// BadRequest writes a 400 envelope with message.
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}

// Company resolves the tenant from the X-Company header or the company query parameter, falling back
// to the configured default company.
func (d *Deps) Company(c echo.Context) (string, error) {
	company := c.Request().Header.Get("X-Company")
	if strings.TrimSpace(company) == "" {
		company = c.QueryParam("company")
	}
	company = config.NormalizeCompany(company)
	if company == "" {
		company = d.DefaultCompany
	}
	if company == "" {
		return "", apperr.Invalid("company is required (X-Company header or company parameter)")
	}
	return company, nil
}

// ParamID parses a positive numeric path parameter.
func ParamID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}
