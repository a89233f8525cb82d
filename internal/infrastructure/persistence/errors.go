package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wimotos/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint violation
const pgUniqueViolation = "23505"

// sqliteUniqueViolation prefixes SQLite unique errors, which name table.column instead of the index
const sqliteUniqueViolation = "UNIQUE constraint failed:"

var sqliteConstraints = map[string]string{
	"products.chassis":       "uq_products_chassis",
	"products.plate":         "uq_products_plate",
	"users.email":            "uq_users_email",
	"sales.product_id":       "uq_sales_product_id",
	"sales.public_id":        "uq_sales_public_id",
	"promissories.public_id": "uq_promissories_public_id",
	"promissories.sale_id":   "uq_promissories_sale_id",
}

// conflictMessages maps unique constraint names to the conflict reported to callers
var conflictMessages = map[string]*shared.DomainError{
	"uq_products_chassis":       shared.ConflictError("CHASSIS_TAKEN", "chassis already registered"),
	"uq_products_plate":         shared.ConflictError("PLATE_TAKEN", "plate already registered"),
	"uq_users_email":            shared.ConflictError("EMAIL_TAKEN", "email already registered"),
	"uq_sales_product_id":       shared.ConflictError("PRODUCT_UNAVAILABLE", "product already has a sale"),
	"uq_sales_public_id":        shared.ConflictError("PUBLIC_ID_TAKEN", "sale public id already exists"),
	"uq_promissories_public_id": shared.ConflictError("PUBLIC_ID_TAKEN", "promissory public id already exists"),
	"uq_promissories_sale_id":   shared.ConflictError("SALE_HAS_PROMISSORY", "sale already has a promissory note"),
}

// translateError maps driver errors to domain errors. Record-not-found becomes NotFound
// for entity, unique violations become Conflict, anything else is wrapped.
func translateError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NotFoundError(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if c, ok := conflictMessages[pgErr.ConstraintName]; ok {
			return c
		}
		return shared.ConflictError("DUPLICATE", fmt.Sprintf("%s already exists", entity))
	}
	if msg := err.Error(); strings.Contains(msg, sqliteUniqueViolation) {
		column := strings.TrimSpace(msg[strings.Index(msg, sqliteUniqueViolation)+len(sqliteUniqueViolation):])
		if c, ok := conflictMessages[sqliteConstraints[column]]; ok {
			return c
		}
		return shared.ConflictError("DUPLICATE", fmt.Sprintf("%s already exists", entity))
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ConflictError("DUPLICATE", fmt.Sprintf("%s already exists", entity))
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// forUpdate adds a row lock on Postgres. SQLite serializes writers and has no row locks.
// With skipLocked, rows held by another transaction are skipped instead of waited on.
func forUpdate(db *gorm.DB, table string, skipLocked bool) *gorm.DB {
	if db.Dialector.Name() != "postgres" {
		return db
	}
	lock := clause.Locking{Strength: "UPDATE"}
	if table != "" {
		lock.Table = clause.Table{Name: table}
	}
	if skipLocked {
		lock.Options = "SKIP LOCKED"
	}
	return db.Clauses(lock)
}

// window applies a normalized limit/offset
func window(db *gorm.DB, w shared.Window) *gorm.DB {
	w = w.Normalize()
	return db.Limit(w.Limit).Offset(w.Offset)
}

// likeClause returns a case-insensitive match condition for column. ILIKE is Postgres only.
func likeClause(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return column + " ILIKE ?"
	}
	return "LOWER(" + column + ") LIKE LOWER(?)"
}

func containsPattern(q string) string {
	return "%" + q + "%"
}
