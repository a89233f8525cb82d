package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/promissory"
	"github.com/wimotos/backend/internal/domain/shared"
	"github.com/wimotos/backend/tests/testutil"
)

var allTables = []string{
	"users", "clients", "products", "sales",
	"promissories", "installments", "finance_entries", "scheduler_state",
}

func TestMigrations_UpDownUp(t *testing.T) {
	tdb := NewTestDB(t)
	m := tdb.migrator()

	assert.EqualValues(t, 3, m.Version())
	for _, table := range allTables {
		assert.True(t, tdb.TableExists(table), table)
	}

	m.Down()
	for _, table := range allTables {
		assert.False(t, tdb.TableExists(table), table)
	}

	m.Up()
	assert.EqualValues(t, 3, m.Version())
}

func TestSchema_ProductUniqueness(t *testing.T) {
	tdb := NewTestDB(t)
	fx := testutil.NewFixtureWithDB(t, tdb.DB)
	ctx := context.Background()

	// products without plate never collide
	fx.Product("9C2KC2200RR100001")
	fx.Product("9C2KC2200RR100002")

	dup, err := catalog.NewProduct(catalog.ProductSpec{
		Brand: "yamaha", Model: "factor", Year: 2023, Chassis: "9C2KC2200RR100001", Color: "Azul",
	}, fx.Clock.Now())
	require.NoError(t, err)
	err = fx.Repos.Products().Save(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)

	plate := "ABC1D23"
	withPlate := fx.Product("9C2KC2200RR100003")
	withPlate.Plate = &plate
	fx.SaveProduct(withPlate)

	other := fx.Product("9C2KC2200RR100004")
	other.Plate = &plate
	err = fx.Repos.Products().Save(ctx, other)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestSchema_InstallmentsCascadeWithNote(t *testing.T) {
	tdb := NewTestDB(t)
	fx := testutil.NewFixtureWithDB(t, tdb.DB)
	ctx := context.Background()

	client := fx.Client("Joana Lima", "5511977776666")
	note := promissory.NewNote("PN-TEST0001", nil, client.ID, nil, decimal.RequireFromString("900"), decimal.Zero, fx.Clock.Now())
	schedule, err := promissory.BuildSchedule(note.ID, promissory.ScheduleInput{
		Financed:     note.Financed(),
		Count:        3,
		FirstDueDate: testutil.ScenarioDate,
	}, fx.Clock.Now())
	require.NoError(t, err)
	note.Installments = schedule
	require.NoError(t, fx.Repos.Notes().Save(ctx, note))
	assert.EqualValues(t, 3, tdb.Count("installments"))

	require.NoError(t, tdb.DB.Exec("DELETE FROM promissories WHERE id = ?", note.ID).Error)
	assert.EqualValues(t, 0, tdb.Count("installments"))
}
