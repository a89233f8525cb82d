package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/promissory"
	"github.com/wimotos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNoteRepository implements promissory.NoteRepository using GORM
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a new GormNoteRepository
func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

func preloadInstallments(db *gorm.DB) *gorm.DB {
	return db.Order("number ASC")
}

// FindByID loads a note with its installments ordered by number
func (r *GormNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*promissory.Note, error) {
	var model models.PromissoryModel
	if err := r.db.WithContext(ctx).
		Preload("Installments", preloadInstallments).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "promissory")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a note with its installments and locks the note row.
// Installment writes go through the locked note, so the note lock serializes them.
func (r *GormNoteRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*promissory.Note, error) {
	var model models.PromissoryModel
	if err := forUpdate(r.db.WithContext(ctx), "", false).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "promissory")
	}
	if err := r.db.WithContext(ctx).
		Where("promissory_id = ?", id).
		Order("number ASC").
		Find(&model.Installments).Error; err != nil {
		return nil, translateError(err, "installment")
	}
	return model.ToDomain(), nil
}

// ExistsByPublicID checks whether a public id is taken
func (r *GormNoteRepository) ExistsByPublicID(ctx context.Context, publicID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PromissoryModel{}).
		Where("public_id = ?", publicID).
		Count(&count).Error; err != nil {
		return false, translateError(err, "promissory")
	}
	return count > 0, nil
}

// List returns notes without installments, newest first
func (r *GormNoteRepository) List(ctx context.Context, filter promissory.NoteFilter) ([]promissory.Note, error) {
	query := r.db.WithContext(ctx).Model(&models.PromissoryModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var rows []models.PromissoryModel
	if err := window(query, filter.Window).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "promissory")
	}
	out := make([]promissory.Note, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save upserts the note row and every loaded installment
func (r *GormNoteRepository) Save(ctx context.Context, note *promissory.Note) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(models.PromissoryModelFromDomain(note)).Error; err != nil {
		return translateError(err, "promissory")
	}
	for i := range note.Installments {
		if err := db.Save(models.InstallmentModelFromDomain(&note.Installments[i])).Error; err != nil {
			return translateError(err, "installment")
		}
	}
	return nil
}

var _ promissory.NoteRepository = (*GormNoteRepository)(nil)
