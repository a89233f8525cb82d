// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and the TrackingColumns shared by reminder-bearing rows
//   - identity.go: users
//   - partner.go: clients
//   - catalog.go: products
//   - sales.go: sales
//   - promissory.go: promissories and installments
//   - finance.go: finance entries
//   - scheduler.go: scheduler_state
package models
