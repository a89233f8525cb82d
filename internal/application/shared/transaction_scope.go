// Package shared holds application-layer contracts used by every use case package.
package shared

import (
	"context"

	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/finance"
	"github.com/wimotos/backend/internal/domain/identity"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/domain/partner"
	"github.com/wimotos/backend/internal/domain/promissory"
	"github.com/wimotos/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Notes owns its installments: status changes of a note and its installments are
// saved through Notes. Installments serves reminder selection and single reads.
type TransactionalRepositories interface {
	Users() identity.UserRepository
	Clients() partner.ClientRepository
	Products() catalog.ProductRepository
	Sales() sales.SaleRepository
	Notes() promissory.NoteRepository
	Installments() promissory.InstallmentRepository
	FinanceEntries() finance.EntryRepository
	OffersState() notification.OffersStateRepository
}

// Repositories is a plain TransactionalRepositories value
type Repositories struct {
	UserRepo        identity.UserRepository
	ClientRepo      partner.ClientRepository
	ProductRepo     catalog.ProductRepository
	SaleRepo        sales.SaleRepository
	NoteRepo        promissory.NoteRepository
	InstallmentRepo promissory.InstallmentRepository
	FinanceRepo     finance.EntryRepository
	OffersRepo      notification.OffersStateRepository
}

func (r Repositories) Users() identity.UserRepository                 { return r.UserRepo }
func (r Repositories) Clients() partner.ClientRepository              { return r.ClientRepo }
func (r Repositories) Products() catalog.ProductRepository            { return r.ProductRepo }
func (r Repositories) Sales() sales.SaleRepository                    { return r.SaleRepo }
func (r Repositories) Notes() promissory.NoteRepository               { return r.NoteRepo }
func (r Repositories) Installments() promissory.InstallmentRepository { return r.InstallmentRepo }
func (r Repositories) FinanceEntries() finance.EntryRepository        { return r.FinanceRepo }
func (r Repositories) OffersState() notification.OffersStateRepository {
	return r.OffersRepo
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with mock repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = Repositories{}
)
