package services

import (
	"context"
	"errors"

	"marketplace/internal/apperr"
	"marketplace/internal/commission"
	"marketplace/internal/domain"
	"marketplace/internal/repository"
)

type SettingsInput struct {
	ShippingFee           float64
	FreeShippingThreshold float64
	FeePerAdditionalItem  float64
}

type SettingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(r repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: r}
}

// Get returns the settings row, creating it with zero values on first use.
// Concurrent first reads all insert the same key, so one row survives and
// every caller re-reads it.
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	cur, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cur != nil {
		return cur, nil
	}
	if err := s.repo.Create(ctx, &domain.Settings{ID: domain.SettingsID}); err != nil {
		return nil, err
	}
	cur, err = s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, errors.New("settings row missing after create")
	}
	return cur, nil
}

func (s *SettingsService) Update(ctx context.Context, who domain.Principal, in SettingsInput) (*domain.Settings, error) {
	if !who.IsAdmin() {
		return nil, apperr.Authorization("only admins can change settings")
	}
	if in.ShippingFee < 0 || in.FreeShippingThreshold < 0 || in.FeePerAdditionalItem < 0 {
		return nil, apperr.Validation("shipping values must not be negative")
	}
	cur, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	cur.ShippingFee = in.ShippingFee
	cur.FreeShippingThreshold = in.FreeShippingThreshold
	cur.FeePerAdditionalItem = in.FeePerAdditionalItem
	if err := s.repo.Save(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// ShippingFee is free at or above the threshold (when one is set); otherwise
// the base fee plus the per-item fee for every unit after the first.
func (s *SettingsService) ShippingFee(ctx context.Context, subtotal float64, totalQty int) (float64, error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return shippingFee(cur, subtotal, totalQty), nil
}

func shippingFee(cur *domain.Settings, subtotal float64, totalQty int) float64 {
	if cur.FreeShippingThreshold > 0 && subtotal >= cur.FreeShippingThreshold {
		return 0
	}
	extra := totalQty - 1
	if extra < 0 {
		extra = 0
	}
	return commission.Sum(cur.ShippingFee, commission.LineTotal(cur.FeePerAdditionalItem, extra))
}
