// Package api holds the published HTTP contract.
package api

import _ "embed"

// OpenAPI is the OpenAPI document served at /docs
//
//go:embed openapi.yaml
var OpenAPI []byte
