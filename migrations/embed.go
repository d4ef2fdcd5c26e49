// Package migrations holds the SQL schema applied by ledgerctl migrate and
// by the integration test database.
package migrations

import "embed"

// FS contains the numbered *.up.sql and *.down.sql files
//
//go:embed *.sql
var FS embed.FS
