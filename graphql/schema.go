package graphql

import (
	_ "embed"
)

//go:embed schema.graphqls
var schemaBase string

// Schema returns the GraphQL schema source.
func Schema() string {
	return schemaBase
}
