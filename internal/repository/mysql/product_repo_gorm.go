package mysql

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(p).Error, "create product")
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find product")
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	return out, nil
}

// ApplySale locks the product row for the duration of the read-modify-write
// so concurrent settlements of the same product serialise.
func (r *productRepo) ApplySale(ctx context.Context, id uint64, sel domain.VariantSelector, qty int) (*domain.Product, domain.SaleOutcome, error) {
	var (
		p   domain.Product
		out domain.SaleOutcome
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
			return err
		}
		out = p.ApplySale(sel, qty)
		return tx.Model(&p).Select("stock", "sold", "color_variants").Updates(&p).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.SaleOutcome{}, nil
		}
		zap.L().Error("products: apply sale failed", zap.Uint64("product_id", id), zap.Error(err))
		return nil, domain.SaleOutcome{}, errors.Wrap(err, "apply sale")
	}
	return &p, out, nil
}

func (r *productRepo) UpdateRating(ctx context.Context, id uint64, stats domain.RatingStats) error {
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).
		Updates(map[string]any{"rating": stats.Average, "num_reviews": stats.Count}).Error
	return errors.Wrap(err, "update product rating")
}

func (r *productRepo) LowStock(ctx context.Context, below int, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.WithContext(ctx).Where("stock < ?", below).Order("stock ASC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "low stock products")
	}
	return out, nil
}

func (r *productRepo) CategoryNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	names := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var cats []domain.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, errors.Wrap(err, "category names")
	}
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}
