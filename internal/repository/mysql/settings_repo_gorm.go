package mysql

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	if err := r.db.WithContext(ctx).First(&s, domain.SettingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get settings")
	}
	return &s, nil
}

// Create inserts the singleton row. A row that already exists is left as is.
func (r *settingsRepo) Create(ctx context.Context, s *domain.Settings) error {
	s.ID = domain.SettingsID
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(s).Error
	return errors.Wrap(err, "create settings")
}

func (r *settingsRepo) Save(ctx context.Context, s *domain.Settings) error {
	s.ID = domain.SettingsID
	return errors.Wrap(r.db.WithContext(ctx).Save(s).Error, "save settings")
}
