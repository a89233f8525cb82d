// Package integration runs the repositories and use cases against a real Postgres
// started with testcontainers and migrated with the embedded SQL migrations.
// Every test is skipped with -short.
package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wimotos/backend/internal/infrastructure/config"
	"github.com/wimotos/backend/internal/infrastructure/migration"
	"github.com/wimotos/backend/internal/infrastructure/persistence"
)

const postgresImage = "postgres:16-alpine"

// TestDB is a migrated Postgres container
type TestDB struct {
	DB        *gorm.DB
	DSN       string
	Container testcontainers.Container
	t         *testing.T
}

// NewTestDB starts a fresh container, applies every migration and terminates the
// container when the test ends
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped with -short")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("wimotos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	opts := []persistence.Option{}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		opts = append(opts, persistence.WithLogger(gormlogger.Default.LogMode(gormlogger.Info)))
	}
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       "postgres",
		URL:          dsn,
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}, opts...)
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(func() { _ = db.Close() })

	tdb := &TestDB{DB: db.DB, DSN: dsn, Container: container, t: t}
	tdb.migrator().Up()
	return tdb
}

// migrator returns a migrator over the embedded migrations
func (tdb *TestDB) migrator() *testMigrator {
	tdb.t.Helper()
	sqlDB, err := tdb.DB.DB()
	require.NoError(tdb.t, err)
	m, err := migration.New(sqlDB, "", zap.NewNop())
	require.NoError(tdb.t, err)
	return &testMigrator{m: m, t: tdb.t}
}

type testMigrator struct {
	m *migration.Migrator
	t *testing.T
}

func (tm *testMigrator) Up() {
	tm.t.Helper()
	require.NoError(tm.t, tm.m.Up(), "Failed to run migrations")
}

func (tm *testMigrator) Down() {
	tm.t.Helper()
	require.NoError(tm.t, tm.m.Down(), "Failed to roll back migrations")
}

func (tm *testMigrator) Version() uint {
	tm.t.Helper()
	v, dirty, err := tm.m.Version()
	require.NoError(tm.t, err)
	require.False(tm.t, dirty)
	return v
}

// TableExists reports whether a public table exists
func (tdb *TestDB) TableExists(name string) bool {
	tdb.t.Helper()
	var n int64
	err := tdb.DB.Raw(`SELECT COUNT(*) FROM pg_tables WHERE schemaname = 'public' AND tablename = ?`, name).Scan(&n).Error
	require.NoError(tdb.t, err)
	return n == 1
}

// Count returns the row count of table
func (tdb *TestDB) Count(table string) int64 {
	tdb.t.Helper()
	var n int64
	require.NoError(tdb.t, tdb.DB.Raw(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n).Error)
	return n
}
