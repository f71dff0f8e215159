// Package assets embeds the default company dataset and the SQL migrations so
// the server runs without any files configured.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed catalog.json sql/*.sql
var FS embed.FS

// DefaultCatalog returns the bundled dataset (a small sample of companies).
func DefaultCatalog() ([]byte, error) {
	return FS.ReadFile("catalog.json")
}

// Migrations returns the migration scripts rooted at their directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
