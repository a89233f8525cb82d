package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wimotos/backend/internal/domain/sales"
	"github.com/wimotos/backend/internal/domain/shared/valueobject"
	"github.com/wimotos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "sale")
	}
	return model.ToDomain(), nil
}

// ExistsByPublicID checks whether a public id is taken
func (r *GormSaleRepository) ExistsByPublicID(ctx context.Context, publicID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("public_id = ?", publicID).
		Count(&count).Error; err != nil {
		return false, translateError(err, "sale")
	}
	return count > 0, nil
}

// List applies the conjunctive filters and returns one page plus the total count
func (r *GormSaleRepository) List(ctx context.Context, filter sales.ListFilter) ([]sales.Sale, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "sale")
	}

	var rows []models.SaleModel
	if err := query.
		Order(saleOrderClause(filter.SortBy, filter.SortOrder)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "sale")
	}

	out := make([]sales.Sale, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter sales.ListFilter) *gorm.DB {
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.PaymentType != nil {
		query = query.Where("payment_type = ?", *filter.PaymentType)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", valueobject.DateOf(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		// date_to is inclusive of the whole day
		query = query.Where("created_at < ?", valueobject.DateOf(*filter.DateTo).AddDate(0, 0, 1))
	}
	return query
}

// Save creates or updates a sale
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return translateError(r.db.WithContext(ctx).Save(models.SaleModelFromDomain(sale)).Error, "sale")
}

var _ sales.SaleRepository = (*GormSaleRepository)(nil)
