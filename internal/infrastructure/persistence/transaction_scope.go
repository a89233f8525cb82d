package persistence

import (
	"context"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/finance"
	"github.com/wimotos/backend/internal/domain/identity"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/domain/partner"
	"github.com/wimotos/backend/internal/domain/promissory"
	"github.com/wimotos/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// gormRepositories provides access to all repositories bound to one *gorm.DB,
// either the pool or an open transaction.
type gormRepositories struct {
	tx *gorm.DB
}

// NewRepositories binds every repository to db
func NewRepositories(db *gorm.DB) appshared.TransactionalRepositories {
	return &gormRepositories{tx: db}
}

func (r *gormRepositories) Users() identity.UserRepository { return NewGormUserRepository(r.tx) }

func (r *gormRepositories) Clients() partner.ClientRepository { return NewGormClientRepository(r.tx) }

func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormRepositories) Sales() sales.SaleRepository { return NewGormSaleRepository(r.tx) }

func (r *gormRepositories) Notes() promissory.NoteRepository { return NewGormNoteRepository(r.tx) }

func (r *gormRepositories) Installments() promissory.InstallmentRepository {
	return NewGormInstallmentRepository(r.tx)
}

func (r *gormRepositories) FinanceEntries() finance.EntryRepository {
	return NewGormFinanceEntryRepository(r.tx)
}

func (r *gormRepositories) OffersState() notification.OffersStateRepository {
	return NewGormOffersStateRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)
