package services

import (
	"context"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"go.uber.org/zap"
)

type ReviewInput struct {
	ProductID uint64
	OrderID   uint64
	Rating    int
	Comment   string
}

type ReviewService struct {
	reviews  repository.ReviewRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
}

func NewReviewService(r repository.ReviewRepository, o repository.OrderRepository, p repository.ProductRepository) *ReviewService {
	return &ReviewService{reviews: r, orders: o, products: p}
}

// Create accepts one review per product per delivered order of the reviewer,
// then recomputes the product's rating from all of its reviews.
func (s *ReviewService) Create(ctx context.Context, who domain.Principal, in ReviewInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != who.UserID {
		return nil, apperr.Authorization("you can only review your own orders")
	}
	if order.Status != domain.StatusDelivered {
		return nil, apperr.Validation("you can only review products from delivered orders")
	}
	if !order.HasProduct(in.ProductID) {
		return nil, apperr.Validation("product %d is not part of order %d", in.ProductID, in.OrderID)
	}

	exists, err := s.reviews.Exists(ctx, in.ProductID, who.UserID, in.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("you have already reviewed this product for this order")
	}

	review := &domain.Review{
		ProductID:  in.ProductID,
		UserID:     who.UserID,
		OrderID:    in.OrderID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		IsVerified: true,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	stats, err := s.reviews.Stats(ctx, in.ProductID)
	if err != nil {
		zap.L().Error("reviews: rating recompute failed", zap.Uint64("product_id", in.ProductID), zap.Error(err))
		return review, nil
	}
	if err := s.products.UpdateRating(ctx, in.ProductID, stats); err != nil {
		zap.L().Error("reviews: rating update failed", zap.Uint64("product_id", in.ProductID), zap.Error(err))
	}
	return review, nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID uint64) ([]domain.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}
