package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/tracker/internal/config"
)

func TestSelectApplied(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_users.up.sql":   {},
		"m/0001_users.down.sql": {},
		"m/0002_index.up.sql":   {},
		"m/0010_extra.up.sql":   {},
	}
	files := listMigrationFiles(fsys, "m")
	assert.Equal(t, []string{"0001_users.up.sql", "0002_index.up.sql", "0010_extra.up.sql"}, files)
	assert.Equal(t, []string{"0002_index.up.sql", "0010_extra.up.sql"}, selectApplied(files, 1, 10))
	assert.Empty(t, selectApplied(files, 10, 10))
}

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "sqlite://data/users.db", migrationURL(config.DatabaseConfig{Driver: config.DriverSQLite, URL: "data/users.db?_pragma=foreign_keys(1)"}))
	pg := "postgres://bot:secret@db:5432/tracker?sslmode=disable"
	assert.Equal(t, pg, migrationURL(config.DatabaseConfig{Driver: config.DriverPostgres, URL: pg}))
	assert.Equal(t, "postgres://bot@db:5432/tracker?sslmode=disable", redact(pg))
}
