package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/propellerswap/propeller/pkg/config"
	"github.com/propellerswap/propeller/pkg/pgutil"
)

type testDao struct {
	bun.BaseModel `bun:"table:test_table"`
	ID            int64  `bun:",pk,autoincrement"`
	Name          string `bun:",notnull,type:varchar(100)"`
	Age           int    `bun:",nullzero"`
}

func TestConnectDB_InvalidHost(t *testing.T) {
	db, err := pgutil.ConnectDB(&config.DatabaseConfig{
		Host:     "invalid-host-that-does-not-exist",
		Port:     5432,
		User:     "test",
		Password: "test",
		Database: "test",
		SSLMode:  "disable",
	})
	if err == nil {
		_ = db.Close()
	}
	require.Error(t, err)
}

func TestRun_UnknownCommand(t *testing.T) {
	err := Run(context.Background(), nil, "sideways", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestSchemaHelpers(t *testing.T) {
	pgutil.RequireDocker(t)
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, CreateSchema(ctx, db, &testDao{}))
	pgutil.AssertTableExists(t, db, "test_table")
	require.NoError(t, CreateSchema(ctx, db, &testDao{}), "second create must be a no-op")

	require.NoError(t, CreateModelIndexes(ctx, db, &testDao{}, "name", "age"))
	pgutil.AssertIndexExists(t, db, "idx_test_table_name")
	pgutil.AssertIndexExists(t, db, "idx_test_table_age")

	_, err := db.NewInsert().Model(&testDao{Name: "a", Age: 1}).Exec(ctx)
	require.NoError(t, err)
	pgutil.AssertRowCount(t, db, "test_table", 1)

	require.NoError(t, DropTables(ctx, db, &testDao{}))
	pgutil.AssertTableNotExists(t, db, "test_table")
	require.NoError(t, DropTables(ctx, db, &testDao{}), "second drop must be a no-op")
}
