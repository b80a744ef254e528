package testutil

import (
	"path/filepath"
	"testing"

	"example.com/backstage/services/picking/config"
	"example.com/backstage/services/picking/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated sqlite database in a temp dir, closed on cleanup
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "picking.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := database.Connect(config.DatabaseConfig{
		Driver: database.DriverSQLite,
		DSN:    dsn,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
