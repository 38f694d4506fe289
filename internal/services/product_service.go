package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nandakumarbm26/Products-RestAPI/internal/models"
	"github.com/nandakumarbm26/Products-RestAPI/pkg/validator"
)

const defaultQueryTimeout = 5 * time.Second

// MaxListOffset bounds the row offset a listing page may start at.
const MaxListOffset = math.MaxInt32

var (
	// ErrProductNotFound indicates the requested product does not exist or was deleted.
	ErrProductNotFound = errors.New("product service: product not found")
	// ErrInvalidProduct indicates the supplied product fields failed validation.
	ErrInvalidProduct = errors.New("product service: invalid product")
	// ErrInvalidQuery indicates malformed pagination or filter parameters.
	ErrInvalidQuery = errors.New("product service: invalid query")
	// ErrConstraintViolation indicates the database rejected a row that passed validation.
	// It is a storage failure, not a client error.
	ErrConstraintViolation = errors.New("product service: storage constraint violated")
)

// ProductValidationError carries the individual validation failures of a product payload.
type ProductValidationError struct {
	Messages []string
}

func (e *ProductValidationError) Error() string {
	return ErrInvalidProduct.Error() + ": " + strings.Join(e.Messages, "; ")
}

// Is lets errors.Is(err, ErrInvalidProduct) match.
func (e *ProductValidationError) Is(target error) bool {
	return target == ErrInvalidProduct
}

// CreateProductInput captures the client-settable fields of a new product.
type CreateProductInput struct {
	Name         string `json:"name" validate:"required,notblank,max=30"`
	Price        *int64 `json:"price" validate:"required,gte=0"`
	Category     string `json:"category" validate:"required,notblank,max=50"`
	Availability *bool  `json:"availability"`
}

// UpdateProductInput describes mutable product fields. A nil pointer indicates no change.
type UpdateProductInput struct {
	Name         *string `json:"name" validate:"omitnil,notblank,max=30"`
	Price        *int64  `json:"price" validate:"omitnil,gte=0"`
	Category     *string `json:"category" validate:"omitnil,notblank,max=50"`
	Availability *bool   `json:"availability"`
}

// ProductFilter is the closed set of filter criteria. Its JSON encoding is the canonical cache key form.
type ProductFilter struct {
	Category string `json:"category,omitempty"`
	PriceMin *int64 `json:"price_min,omitempty"`
	PriceMax *int64 `json:"price_max,omitempty"`
}

// Normalized returns the filter with surrounding whitespace removed from the category.
func (f ProductFilter) Normalized() ProductFilter {
	f.Category = strings.TrimSpace(f.Category)
	return f
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	Rows      []models.Product `json:"rows"`
	Count     int64            `json:"count"`
	Page      int              `json:"page"`
	TotalPage int              `json:"totalPage"`
	PerPage   int              `json:"perPage"`
}

// ProductService persists products through gorm.
type ProductService struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

// ProductServiceOption customises the ProductService.
type ProductServiceOption func(*ProductService)

// WithQueryTimeout bounds every storage call.
func WithQueryTimeout(timeout time.Duration) ProductServiceOption {
	return func(s *ProductService) {
		if timeout > 0 {
			s.queryTimeout = timeout
		}
	}
}

// NewProductService constructs a product service once a database handle is supplied.
func NewProductService(db *gorm.DB, opts ...ProductServiceOption) (*ProductService, error) {
	if db == nil {
		return nil, errors.New("product service: db is required")
	}
	svc := &ProductService{db: db, queryTimeout: defaultQueryTimeout}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func (s *ProductService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ensuredContext(ctx), s.queryTimeout)
}

// Create validates and persists a new product.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	product := models.Product{
		Name:         strings.TrimSpace(input.Name),
		Price:        *input.Price,
		Category:     strings.TrimSpace(input.Category),
		Availability: true,
	}
	if input.Availability != nil {
		product.Availability = *input.Availability
	}

	// Select keeps an explicit availability=false from being replaced by the column default.
	if err := s.db.WithContext(ctx).
		Select("Name", "Price", "Category", "Availability", "CreatedAt", "UpdatedAt").
		Create(&product).Error; err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("%w: create product: %w", ErrConstraintViolation, err)
		}
		return nil, fmt.Errorf("product service: create product: %w", err)
	}

	return &product, nil
}

// Get fetches a live product by identifier.
func (s *ProductService) Get(ctx context.Context, id uint64) (*models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("product service: get product: %w", err)
	}
	return &product, nil
}

// List returns one page of products, newest first.
func (s *ProductService) List(ctx context.Context, page, perPage int) (*ProductPage, error) {
	if page < 1 || perPage < 1 {
		return nil, fmt.Errorf("%w: page and perPage must be positive", ErrInvalidQuery)
	}
	if page-1 > MaxListOffset/perPage {
		return nil, fmt.Errorf("%w: page %d is out of range", ErrInvalidQuery, page)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("product service: count products: %w", err)
	}

	rows := make([]models.Product, 0, perPage)
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("product service: list products: %w", err)
	}

	return &ProductPage{
		Rows:      rows,
		Count:     count,
		Page:      page,
		TotalPage: int(math.Ceil(float64(count) / float64(perPage))),
		PerPage:   perPage,
	}, nil
}

// Filter returns every live product matching the criteria, newest first.
func (s *ProductService) Filter(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	filter = filter.Normalized()
	query := s.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", *filter.PriceMax)
	}

	products := make([]models.Product, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("product service: filter products: %w", err)
	}
	return products, nil
}

// Update applies the supplied fields to an existing product.
func (s *ProductService) Update(ctx context.Context, id uint64, input UpdateProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			product.Name = strings.TrimSpace(*input.Name)
			updates["name"] = product.Name
		}
		if input.Price != nil {
			product.Price = *input.Price
			updates["price"] = product.Price
		}
		if input.Category != nil {
			product.Category = strings.TrimSpace(*input.Category)
			updates["category"] = product.Category
		}
		if input.Availability != nil {
			product.Availability = *input.Availability
			updates["availability"] = product.Availability
		}
		if len(updates) == 0 {
			return nil
		}

		return tx.Model(&product).Updates(updates).Error
	})
	if errors.Is(err, ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if isConstraintViolation(err) {
		return nil, fmt.Errorf("%w: update product: %w", ErrConstraintViolation, err)
	}
	if err != nil {
		return nil, fmt.Errorf("product service: update product: %w", err)
	}

	return &product, nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id uint64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("product service: delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// PurgeDeleted permanently removes products whose tombstone is older than before.
func (s *ProductService) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := s.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
		Delete(&models.Product{})
	if result.Error != nil {
		return 0, fmt.Errorf("product service: purge deleted products: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Ping checks that the database answers.
func (s *ProductService) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func validateProductInput(input interface{}) error {
	err := validator.ValidateStruct(input)
	if err == nil {
		return nil
	}
	var failures validator.ValidationErrors
	if errors.As(err, &failures) {
		return &ProductValidationError{Messages: failures.Messages()}
	}
	return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
}
