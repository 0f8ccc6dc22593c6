// Package migrations embebe los scripts SQL del catálogo.
package migrations

import "embed"

// FS contiene los *_up.sql (orden ascendente) y sus *_down.sql (orden inverso).
//
//go:embed *.sql
var FS embed.FS
