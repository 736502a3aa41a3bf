package mysql

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *userRepo) find(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, "email = ?", email)
}

func (r *userRepo) AdminIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "admin ids")
	}
	return ids, nil
}

func (r *userRepo) Approve(ctx context.Context, id uint64, passwordHash string) error {
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]any{"approved": true, "password_hash": passwordHash}).Error
	return errors.Wrap(err, "approve user")
}

func (r *userRepo) ListPendingSellers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.db.WithContext(ctx).Where("role = ? AND approved = ?", domain.RoleSeller, false).
		Order("created_at ASC").Find(&out).Error
	return out, errors.Wrap(err, "pending sellers")
}

func (r *userRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", role).Count(&n).Error
	return n, errors.Wrap(err, "count users")
}

func (r *userRepo) CountApprovedSellers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("role = ? AND approved = ?", domain.RoleSeller, true).Count(&n).Error
	return n, errors.Wrap(err, "count sellers")
}
