// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the migrations for every supported driver.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dir returns the directory within FS for the given driver.
func Dir(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}
