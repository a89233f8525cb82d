package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/finance"
	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFinanceEntryRepository implements finance.EntryRepository using GORM
type GormFinanceEntryRepository struct {
	db *gorm.DB
}

// NewGormFinanceEntryRepository creates a new GormFinanceEntryRepository
func NewGormFinanceEntryRepository(db *gorm.DB) *GormFinanceEntryRepository {
	return &GormFinanceEntryRepository{db: db}
}

// FindByID finds an entry by its ID
func (r *GormFinanceEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Entry, error) {
	var model models.FinanceEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "finance entry")
	}
	return model.ToDomain(), nil
}

// List filters by status and company, ordered by due date then id
func (r *GormFinanceEntryRepository) List(ctx context.Context, filter finance.EntryFilter) ([]finance.Entry, error) {
	query := r.db.WithContext(ctx).Model(&models.FinanceEntryModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if c := strings.TrimSpace(filter.Company); c != "" {
		query = query.Where(likeClause(query, "company"), containsPattern(c))
	}
	var rows []models.FinanceEntryModel
	if err := window(query, filter.Window).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "finance entry")
	}
	return entriesToDomain(rows), nil
}

// FindDueForReminder claims PENDING entries due on or before today whose reminder is eligible
func (r *GormFinanceEntryRepository) FindDueForReminder(ctx context.Context, today, now time.Time, limit int) ([]finance.Entry, error) {
	var rows []models.FinanceEntryModel
	err := forUpdate(r.db.WithContext(ctx), "", true).
		Where("status = ?", finance.EntryStatusPending).
		Where("due_date <= ?", dateParam(today)).
		Where("wpp_status IN ?", eligibleStatuses).
		Where("(wpp_next_retry_at IS NULL OR wpp_next_retry_at <= ?)", now.UTC()).
		Order("due_date ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "finance entry")
	}
	return entriesToDomain(rows), nil
}

// FindStaleSending returns entries whose reminder has been SENDING since before cutoff
func (r *GormFinanceEntryRepository) FindStaleSending(ctx context.Context, cutoff time.Time, limit int) ([]finance.Entry, error) {
	var rows []models.FinanceEntryModel
	err := forUpdate(r.db.WithContext(ctx), "", true).
		Where("wpp_status = ?", notification.SendStatusSending).
		Where("(wpp_last_attempt_at IS NULL OR wpp_last_attempt_at <= ?)", cutoff.UTC()).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, "finance entry")
	}
	return entriesToDomain(rows), nil
}

// Save creates or updates an entry
func (r *GormFinanceEntryRepository) Save(ctx context.Context, entry *finance.Entry) error {
	return translateError(r.db.WithContext(ctx).Save(models.FinanceEntryModelFromDomain(entry)).Error, "finance entry")
}

func entriesToDomain(rows []models.FinanceEntryModel) []finance.Entry {
	out := make([]finance.Entry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ finance.EntryRepository = (*GormFinanceEntryRepository)(nil)
