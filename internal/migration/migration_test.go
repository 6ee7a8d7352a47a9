package migration

import (
	"io/fs"
	"testing"

	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrateCreatesTables(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(conn))

	for _, table := range []string{"products", "inventory_snapshots", "sales", "users"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
	assert.True(t, conn.Migrator().HasIndex("sales", "ux_sales_product_date"))
	assert.True(t, conn.Migrator().HasIndex("inventory_snapshots", "ux_inventory_snapshots_product_date_rev"))

	// re-running is a no-op
	require.NoError(t, AutoMigrate(conn))
}

func TestEmbeddedMigrationsPaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, "sql/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(embeddedMigrations, "sql/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestNilHandles(t *testing.T) {
	assert.Error(t, AutoMigrate(nil))
	assert.Error(t, RunMigrations(nil))
}
