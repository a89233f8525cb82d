package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/wimotos/backend/internal/domain/notification"
	"github.com/wimotos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOffersStateRepository implements notification.OffersStateRepository on scheduler_state
type GormOffersStateRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormOffersStateRepository creates a new GormOffersStateRepository
func NewGormOffersStateRepository(db *gorm.DB) *GormOffersStateRepository {
	return &GormOffersStateRepository{db: db, now: time.Now}
}

// Get locks and returns the row for key. A missing row yields an empty state.
func (r *GormOffersStateRepository) Get(ctx context.Context, key string) (*notification.OffersState, error) {
	var model models.SchedulerStateModel
	err := forUpdate(r.db.WithContext(ctx), "", false).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &notification.OffersState{Key: key}, nil
	}
	if err != nil {
		return nil, translateError(err, "scheduler state")
	}
	return model.ToDomain(), nil
}

// Save upserts the row
func (r *GormOffersStateRepository) Save(ctx context.Context, state *notification.OffersState) error {
	model := models.SchedulerStateModelFromDomain(state, r.now())
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_sent_date", "updated_at"}),
		}).
		Create(model).Error
	return translateError(err, "scheduler state")
}

var _ notification.OffersStateRepository = (*GormOffersStateRepository)(nil)
