package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/partner"
	"github.com/wimotos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "client")
	}
	return model.ToDomain(), nil
}

// List searches clients by name or phone, newest first
func (r *GormClientRepository) List(ctx context.Context, filter partner.ClientFilter) ([]partner.Client, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		cond := likeClause(query, "name")
		args := []any{containsPattern(q)}
		if digits := partner.OnlyDigits(q); digits != "" {
			cond = "(" + cond + " OR phone LIKE ?)"
			args = append(args, containsPattern(digits))
		}
		query = query.Where(cond, args...)
	}
	var rows []models.ClientModel
	if err := window(query, filter.Window).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "client")
	}
	clients := make([]partner.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	return translateError(r.db.WithContext(ctx).Save(models.ClientModelFromDomain(client)).Error, "client")
}

var _ partner.ClientRepository = (*GormClientRepository)(nil)
