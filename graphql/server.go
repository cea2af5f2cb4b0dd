package graphql

import (
	"bytes"
	"io"
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"problemsolving.GO/service/route"
)

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(routes *route.Service, defaultCompany string) (*gql.Schema, error) {
	return gql.ParseSchema(Schema(), &RootResolver{Routes: routes, DefaultCompany: defaultCompany}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format) that attaches the request's company to the context.
func Handler(schema *gql.Schema) http.Handler {
	return companyMiddleware(&relay.Handler{Schema: schema})
}

func companyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Method == http.MethodPost && r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		if company := CompanyFromRequest(r, body); company != "" {
			r = r.WithContext(WithCompany(r.Context(), company))
		}
		next.ServeHTTP(w, r)
	})
}
