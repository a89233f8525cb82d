package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/partner"
	"github.com/wimotos/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

// newMockPostgres creates a Postgres-dialect GORM DB over sqlmock
func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func seedClient(t *testing.T, db *gorm.DB, name string) *partner.Client {
	t.Helper()
	c, err := partner.NewClient(name, "11999990000", nil, nil, nil, testNow)
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Save(t.Context(), c))
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, chassis string, at time.Time) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductSpec{
		Brand:     "honda",
		Model:     "cg 160",
		Year:      2024,
		Chassis:   chassis,
		Color:     "Preta",
		CostPrice: decimal.NewFromInt(9000),
		SalePrice: decimal.NewFromInt(12000),
	}, at)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(t.Context(), p))
	return p
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }
