package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const CtxKeyCompany contextKey = "company"

// Company is resolved from: X-Company header > company query param > JSON variables.__Company
const (
	HeaderCompany     = "X-Company"
	QueryParamCompany = "company"
	VarCompany        = "__Company"
)

// CompanyFromContext returns the company attached to the request, or "".
func CompanyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyCompany).(string); ok {
		return v
	}
	return ""
}

// WithCompany attaches company to ctx.
func WithCompany(ctx context.Context, company string) context.Context {
	return context.WithValue(ctx, CtxKeyCompany, company)
}

// CompanyFromRequest reads the header and query parameter. body is the POST payload, may be nil.
func CompanyFromRequest(r *http.Request, body []byte) string {
	if h := strings.TrimSpace(r.Header.Get(HeaderCompany)); h != "" {
		return h
	}
	if q := strings.TrimSpace(r.URL.Query().Get(QueryParamCompany)); q != "" {
		return q
	}
	if c, ok := ParseCompanyFromVariables(body); ok {
		return c
	}
	return ""
}

// ParseCompanyFromVariables looks for variables.__Company in a JSON request body.
func ParseCompanyFromVariables(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	var payload struct {
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Variables == nil {
		return "", false
	}
	if v, ok := payload.Variables[VarCompany].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	return "", false
}
