package services

import (
	"context"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/domain"
	"marketplace/internal/infra/cache"
	"marketplace/internal/repository"
)

var ErrProductNotFound = apperr.NotFound("product not found")

type ProductInput struct {
	Name          string
	Description   string
	Price         float64
	Image         string
	CategoryID    *uint64
	Stock         int
	ColorVariants []domain.ColorVariant
}

type CatalogService struct {
	products repository.ProductRepository
	cache    cache.ProductCache
}

func NewCatalogService(p repository.ProductRepository, c cache.ProductCache) *CatalogService {
	if c == nil {
		c = cache.NopProductCache{}
	}
	return &CatalogService{products: p, cache: c}
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	s.cache.Set(ctx, p)
	return p, nil
}

// CreateProduct stores a store product when an admin calls it and a product
// owned by the caller when an approved seller does.
func (s *CatalogService) CreateProduct(ctx context.Context, who domain.Principal, in ProductInput) (*domain.Product, error) {
	var sellerID *uint64
	switch {
	case who.IsAdmin():
	case who.IsApprovedSeller():
		id := who.UserID
		sellerID = &id
	default:
		return nil, apperr.Authorization("only admins and approved sellers can create products")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Price < 0 {
		return nil, apperr.Validation("price must not be negative")
	}

	p := &domain.Product{
		Name:          name,
		Description:   in.Description,
		Price:         in.Price,
		Image:         strings.TrimSpace(in.Image),
		CategoryID:    in.CategoryID,
		SellerID:      sellerID,
		Stock:         in.Stock,
		ColorVariants: in.ColorVariants,
	}
	if p.HasNegativeStock() {
		return nil, apperr.Validation("stock must not be negative")
	}
	p.RecomputeStock()

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
