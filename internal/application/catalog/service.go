// Package catalog implements the vehicle inventory use cases.
package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appshared "github.com/wimotos/backend/internal/application/shared"
	"github.com/wimotos/backend/internal/domain/catalog"
	"github.com/wimotos/backend/internal/domain/shared"
)

var (
	ErrChassisTaken = shared.ConflictError("CHASSIS_TAKEN", "chassis already registered")
	ErrPlateTaken   = shared.ConflictError("PLATE_TAKEN", "plate already registered")
	// ErrUnsupportedImage is returned for uploads that are not JPEG, PNG, WebP or GIF
	ErrUnsupportedImage = shared.InvalidParameterError("UNSUPPORTED_IMAGE",
		"image must be jpeg, png, webp or gif")
	ErrEmptyImage = shared.InvalidParameterError("EMPTY_IMAGE", "image file is empty")
	// ErrImagesDisabled is returned when no image store is configured
	ErrImagesDisabled = shared.NewKindError(shared.KindUnavailable, "STORAGE_DISABLED",
		"image storage is not configured")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageStore keeps product cover images
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// ProductService handles product-related business operations
type ProductService struct {
	txScope appshared.TransactionScope
	images  ImageStore
	clock   appshared.Clock
	logger  *zap.Logger
}

// NewProductService creates a new ProductService. images may be nil.
func NewProductService(txScope appshared.TransactionScope, images ImageStore, clock appshared.Clock, logger *zap.Logger) *ProductService {
	if clock == nil {
		clock = appshared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{txScope: txScope, images: images, clock: clock, logger: logger}
}

// Create registers a vehicle. Chassis and plate must be unique.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	spec := catalog.ProductSpec{
		Brand:     req.Brand,
		Model:     req.Model,
		Year:      req.Year,
		Plate:     req.Plate,
		Chassis:   req.Chassis,
		Km:        req.Km,
		Color:     req.Color,
		CostPrice: req.CostPrice,
		SalePrice: req.SalePrice,
	}
	if req.Status != "" {
		st, err := catalog.ParseProductStatus(req.Status)
		if err != nil {
			return nil, err
		}
		spec.Status = st
	}
	product, err := catalog.NewProduct(spec, s.clock.Now())
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := checkUnique(ctx, repos.Products(), product, nil); err != nil {
			return err
		}
		return repos.Products().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, product)
	return &resp, nil
}

// Get returns one product
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		product, err = repos.Products().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, product)
	return &resp, nil
}

// List searches products by brand, model, plate or chassis
func (s *ProductService) List(ctx context.Context, q ListProductsQuery) ([]ProductResponse, error) {
	filter := catalog.ProductFilter{Query: strings.TrimSpace(q.Q), Window: q.Window()}
	if q.Status != "" {
		st, err := catalog.ParseProductStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	var items []catalog.Product
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		items, err = repos.Products().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, len(items))
	for i := range items {
		out[i] = s.toResponse(ctx, &items[i])
	}
	return out, nil
}

// Update applies a partial update. Duplicate checks exclude the product itself.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	patch, err := req.patch()
	if err != nil {
		return nil, err
	}

	var product *catalog.Product
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		product, err = repos.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := product.Apply(patch, s.clock.Now()); err != nil {
			return err
		}
		if err := checkUnique(ctx, repos.Products(), product, &product.ID); err != nil {
			return err
		}
		return repos.Products().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, product)
	return &resp, nil
}

// UploadImage stores a new cover image under products/{id}/{uuid}{ext} and points
// the product at it. The previous object is removed afterwards.
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, req UploadImageRequest) (*ProductResponse, error) {
	if s.images == nil {
		return nil, ErrImagesDisabled
	}
	if len(req.Data) == 0 {
		return nil, ErrEmptyImage
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(req.ContentType, ";")[0]))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}
	if e := strings.ToLower(path.Ext(req.Filename)); e == ".jpeg" || e == ext {
		ext = e
	}

	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		product, err = repos.Products().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	key := ImageKey(id, uuid.NewString(), ext)
	if err := s.images.Upload(ctx, key, req.Data, contentType); err != nil {
		return nil, err
	}

	var previous *string
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		var err error
		product, err = repos.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		previous = product.ImageKey
		product.SetImage(key, s.clock.Now())
		return repos.Products().Save(ctx, product)
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	if previous != nil && *previous != key {
		s.discard(ctx, *previous)
	}

	s.logger.Info("product image uploaded", zap.String("product_id", id.String()), zap.String("key", key))
	resp := s.toResponse(ctx, product)
	return &resp, nil
}

// ImageKey builds the object key of a product image
func ImageKey(productID uuid.UUID, name, ext string) string {
	return fmt.Sprintf("products/%s/%s%s", productID, strings.ReplaceAll(name, "-", ""), ext)
}

func (s *ProductService) discard(ctx context.Context, key string) {
	if err := s.images.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("failed to delete product image", zap.String("key", key), zap.Error(err))
	}
}

func (s *ProductService) toResponse(ctx context.Context, p *catalog.Product) ProductResponse {
	resp := ToProductResponse(p)
	if s.images != nil && p.HasImage() {
		url, err := s.images.DownloadURL(ctx, *p.ImageKey)
		if err != nil {
			s.logger.Warn("failed to sign image url", zap.String("key", *p.ImageKey), zap.Error(err))
		} else {
			resp.ImageURL = url
		}
	}
	return resp
}

func checkUnique(ctx context.Context, repo catalog.ProductRepository, p *catalog.Product, exclude *uuid.UUID) error {
	taken, err := repo.ExistsByChassis(ctx, p.Chassis, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrChassisTaken
	}
	if p.Plate == nil {
		return nil
	}
	taken, err = repo.ExistsByPlate(ctx, *p.Plate, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrPlateTaken
	}
	return nil
}
