package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/identity"
	"github.com/wimotos/backend/internal/domain/partner"
	"github.com/wimotos/backend/internal/infrastructure/auth"
	"github.com/wimotos/backend/internal/infrastructure/config"
	"github.com/wimotos/backend/internal/infrastructure/persistence"
)

// TestJWTSecret signs the tokens of NewJWTService
const TestJWTSecret = "test-secret-key-with-at-least-32-chars"

// NewJWTService returns a token service with a fixed secret and a one hour expiry
func NewJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                TestJWTSecret,
		AccessTokenExpiration: time.Hour,
		Issuer:                "wimotos-test",
	})
}

// ScenarioDate is the reference "now" of the end-to-end scenarios: 2026-01-30 12:00 UTC
var ScenarioDate = time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)

// Fixture is a migrated SQLite database with helpers to seed reference rows
type Fixture struct {
	t     *testing.T
	DB    *gorm.DB
	Repos appshared.TransactionalRepositories
	Clock *Clock
}

// NewFixture opens a fresh database with the clock at ScenarioDate
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureWithDB(t, NewSQLiteDB(t))
}

// NewFixtureWithDB wraps an already migrated database, e.g. a Postgres container
func NewFixtureWithDB(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()
	return &Fixture{
		t:     t,
		DB:    db,
		Repos: persistence.NewRepositories(db),
		Clock: NewClock(ScenarioDate),
	}
}

// Scope returns a real transaction scope over the fixture database
func (f *Fixture) Scope() appshared.TransactionScope {
	return persistence.NewGormTransactionScope(f.DB)
}

// User seeds a staff user. The password hash is a placeholder.
func (f *Fixture) User(email string) *identity.User {
	f.t.Helper()
	u, err := identity.NewUser("Vendedor", email, "$2a$10$placeholder", identity.RoleStaff, f.Clock.Now())
	require.NoError(f.t, err)
	require.NoError(f.t, f.Repos.Users().Save(context.Background(), u))
	return u
}

// Client seeds a client
func (f *Fixture) Client(name, phone string) *partner.Client {
	f.t.Helper()
	c, err := partner.NewClient(name, phone, nil, nil, nil, f.Clock.Now())
	require.NoError(f.t, err)
	require.NoError(f.t, f.Repos.Clients().Save(context.Background(), c))
	return c
}

// Product seeds an IN_STOCK motorcycle with the given chassis
func (f *Fixture) Product(chassis string) *catalog.Product {
	f.t.Helper()
	p, err := catalog.NewProduct(catalog.ProductSpec{
		Brand:     "honda",
		Model:     "cg 160",
		Year:      2024,
		Chassis:   chassis,
		Color:     "Preta",
		CostPrice: decimal.RequireFromString("9000"),
		SalePrice: decimal.RequireFromString("12000"),
	}, f.Clock.Now())
	require.NoError(f.t, err)
	require.NoError(f.t, f.Repos.Products().Save(context.Background(), p))
	return p
}

// Save persists a modified product
func (f *Fixture) SaveProduct(p *catalog.Product) {
	f.t.Helper()
	require.NoError(f.t, f.Repos.Products().Save(context.Background(), p))
}
