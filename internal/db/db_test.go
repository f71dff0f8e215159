package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	sqlDB, err := OpenMigrated(path)
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Migrate(sqlDB), "second run skips applied files")

	var applied int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)

	_, err = sqlDB.Exec(`INSERT INTO daily_solves(date_key, solves) VALUES ('2025-11-02', 4)`)
	require.NoError(t, err)
	_, err = sqlDB.Exec(`INSERT INTO daily_solves(date_key, solves) VALUES ('bad', 1)`)
	assert.Error(t, err, "date_key length check")
}
