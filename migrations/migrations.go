// Package migrations embeds the schema for each supported store driver.
package migrations

import (
	"embed"
	"io/fs"
	"sort"

	"github.com/rotisserie/eris"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Script is a single migration file.
type Script struct {
	Name string
	SQL  string
}

// For returns the migration scripts for driver ("postgres" or "sqlite") in
// lexical order.
func For(driver string) ([]Script, error) {
	entries, err := fs.ReadDir(files, driver)
	if err != nil {
		return nil, eris.Wrapf(err, "migrations: read %s", driver)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	scripts := make([]Script, 0, len(entries))
	for _, e := range entries {
		data, err := fs.ReadFile(files, driver+"/"+e.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "migrations: read %s", e.Name())
		}
		scripts = append(scripts, Script{Name: e.Name(), SQL: string(data)})
	}

	return scripts, nil
}
