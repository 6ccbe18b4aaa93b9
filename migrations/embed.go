// Package migrations holds the fleet log schema as goose SQL files. The API
// applies them at start-up when AUTO_MIGRATE is set; the integration tests
// apply them through testutil.
package migrations

import "embed"

// FS is the embedded schema, ordered by file name.
//
//go:embed *.sql
var FS embed.FS
