package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a product and locks its row until the transaction ends
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := forUpdate(r.db.WithContext(ctx), "", false).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return model.ToDomain(), nil
}

// List searches brand, model, plate or chassis and filters by status, newest first
func (r *GormProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := containsPattern(q)
		query = query.Where("("+likeClause(query, "brand")+" OR "+likeClause(query, "model")+
			" OR "+likeClause(query, "plate")+" OR "+likeClause(query, "chassis")+")",
			pattern, pattern, pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var rows []models.ProductModel
	if err := window(query, filter.Window).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return productsToDomain(rows), nil
}

// ExistsByChassis checks for another product with the normalized chassis
func (r *GormProductRepository) ExistsByChassis(ctx context.Context, chassis string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "chassis = ?", catalog.NormalizeChassis(chassis), excludeID)
}

// ExistsByPlate checks for another product with the normalized plate
func (r *GormProductRepository) ExistsByPlate(ctx context.Context, plate string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, "plate = ?", catalog.NormalizePlate(plate), excludeID)
}

func (r *GormProductRepository) exists(ctx context.Context, cond string, value string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where(cond, value)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, translateError(err, "product")
	}
	return count > 0, nil
}

// FindOfferCandidates returns IN_STOCK products that have a cover image, newest first
func (r *GormProductRepository) FindOfferCandidates(ctx context.Context, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND image_key IS NOT NULL AND image_key <> ''", catalog.ProductStatusInStock).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return productsToDomain(rows), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translateError(r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error, "product")
}

func productsToDomain(rows []models.ProductModel) []catalog.Product {
	out := make([]catalog.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
