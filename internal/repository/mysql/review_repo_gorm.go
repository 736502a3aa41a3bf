package mysql

import (
	"context"

	"marketplace/internal/apperr"
	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type reviewRepo struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Exists(ctx context.Context, productID, userID, orderID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("product_id = ? AND user_id = ? AND order_id = ?", productID, userID, orderID).
		Count(&n).Error
	return n > 0, errors.Wrap(err, "review exists")
}

func (r *reviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	if err := r.db.WithContext(ctx).Create(rv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("you have already reviewed this product for this order")
		}
		return errors.Wrap(err, "create review")
	}
	return nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID uint64) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC").Find(&out).Error
	return out, errors.Wrap(err, "list reviews")
}

// Stats recomputes the average over every review of the product.
func (r *reviewRepo) Stats(ctx context.Context, productID uint64) (domain.RatingStats, error) {
	var row struct {
		Average float64
		Count   int
	}
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).Scan(&row).Error
	if err != nil {
		return domain.RatingStats{}, errors.Wrap(err, "review stats")
	}
	return domain.RatingStats{Average: row.Average, Count: row.Count}, nil
}
