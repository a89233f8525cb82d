package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/domain/promissory"
	"github.com/wimotos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// eligibleStatuses are the reminder states a send may start from
var eligibleStatuses = []notification.SendStatus{notification.SendStatusPending, notification.SendStatusFailed}

// GormInstallmentRepository implements promissory.InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*promissory.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "installment")
	}
	return model.ToDomain(), nil
}

// List filters installments by note and status, ordered by note then number
func (r *GormInstallmentRepository) List(ctx context.Context, filter promissory.InstallmentFilter) ([]promissory.Installment, error) {
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{})
	if filter.PromissoryID != nil {
		query = query.Where("promissory_id = ?", *filter.PromissoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var rows []models.InstallmentModel
	if err := window(query, filter.Window).
		Order("promissory_id ASC, number ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "installment")
	}
	return installmentsToDomain(rows), nil
}

// FindDueSoon selects installments due exactly on dueDate with an eligible due-soon reminder
func (r *GormInstallmentRepository) FindDueSoon(ctx context.Context, dueDate, now time.Time, limit int) ([]promissory.ReminderCandidate, error) {
	return r.findCandidates(ctx, "due_date = ?", dueDate, "wa_due_", now, limit)
}

// FindOverdue selects installments due before today with an eligible overdue reminder
func (r *GormInstallmentRepository) FindOverdue(ctx context.Context, today, now time.Time, limit int) ([]promissory.ReminderCandidate, error) {
	return r.findCandidates(ctx, "due_date < ?", today, "wa_overdue_", now, limit)
}

// findCandidates claims reminder rows with FOR UPDATE SKIP LOCKED on Postgres, then joins
// the note, client and product data the message needs.
func (r *GormInstallmentRepository) findCandidates(ctx context.Context, dueCond string, day time.Time,
	prefix string, now time.Time, limit int) ([]promissory.ReminderCandidate, error) {
	var rows []models.InstallmentModel
	err := forUpdate(r.db.WithContext(ctx), "", true).
		Where("status = ?", promissory.InstallmentStatusPending).
		Where(dueCond, dateParam(day)).
		Where(prefix+"status IN ?", eligibleStatuses).
		Where("("+prefix+"next_retry_at IS NULL OR "+prefix+"next_retry_at <= ?)", now.UTC()).
		Order("due_date ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "installment")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	noteIDs := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]bool, len(rows))
	for i := range rows {
		if !seen[rows[i].PromissoryID] {
			seen[rows[i].PromissoryID] = true
			noteIDs = append(noteIDs, rows[i].PromissoryID)
		}
	}
	contexts, err := r.loadNoteContexts(ctx, noteIDs)
	if err != nil {
		return nil, err
	}

	out := make([]promissory.ReminderCandidate, len(rows))
	for i := range rows {
		nc := contexts[rows[i].PromissoryID]
		out[i] = promissory.ReminderCandidate{
			Installment:  *rows[i].ToDomain(),
			NotePublicID: nc.PublicID,
			ClientName:   nc.ClientName,
			ClientPhone:  nc.ClientPhone,
			ProductLabel: nc.productLabel(),
		}
	}
	return out, nil
}

type noteContext struct {
	ID           uuid.UUID
	PublicID     string
	ClientName   string
	ClientPhone  string
	ProductBrand *string
	ProductModel *string
	ProductYear  *int
}

func (c noteContext) productLabel() string {
	if c.ProductBrand == nil {
		return ""
	}
	p := catalog.Product{Brand: *c.ProductBrand}
	if c.ProductModel != nil {
		p.Model = *c.ProductModel
	}
	if c.ProductYear != nil {
		p.Year = *c.ProductYear
	}
	return p.DisplayLabel()
}

func (r *GormInstallmentRepository) loadNoteContexts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]noteContext, error) {
	var rows []noteContext
	if err := r.db.WithContext(ctx).
		Table("promissories").
		Select("promissories.id AS id, promissories.public_id AS public_id, "+
			"clients.name AS client_name, clients.phone AS client_phone, "+
			"products.brand AS product_brand, products.model AS product_model, products.year AS product_year").
		Joins("JOIN clients ON clients.id = promissories.client_id").
		Joins("LEFT JOIN products ON products.id = promissories.product_id").
		Where("promissories.id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, translateError(err, "promissory")
	}
	out := make(map[uuid.UUID]noteContext, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// FindStaleSending returns installments with either reminder stuck in SENDING since before cutoff
func (r *GormInstallmentRepository) FindStaleSending(ctx context.Context, cutoff time.Time, limit int) ([]promissory.Installment, error) {
	var rows []models.InstallmentModel
	err := forUpdate(r.db.WithContext(ctx), "", true).
		Where("(wa_due_status = ? AND (wa_due_last_attempt_at IS NULL OR wa_due_last_attempt_at <= ?)) OR "+
			"(wa_overdue_status = ? AND (wa_overdue_last_attempt_at IS NULL OR wa_overdue_last_attempt_at <= ?))",
			notification.SendStatusSending, cutoff.UTC(), notification.SendStatusSending, cutoff.UTC()).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "installment")
	}
	return installmentsToDomain(rows), nil
}

// Save creates or updates an installment
func (r *GormInstallmentRepository) Save(ctx context.Context, installment *promissory.Installment) error {
	return translateError(r.db.WithContext(ctx).Save(models.InstallmentModelFromDomain(installment)).Error, "installment")
}

func installmentsToDomain(rows []models.InstallmentModel) []promissory.Installment {
	out := make([]promissory.Installment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// dateParam binds a civil date as UTC midnight so DATE comparisons hold on both drivers
func dateParam(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ promissory.InstallmentRepository = (*GormInstallmentRepository)(nil)
