package repository

import (
	"context"

	"github.com/smallbiznis/invoicedesk/internal/taxrate/domain"
	"gorm.io/gorm"
)

type gormRepository struct{}

// Provide returns the gorm-backed tax-rate repository.
func Provide() domain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, rate *domain.TaxRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	return db.WithContext(ctx).Create(rate).Error
}

func (gormRepository) ListEnabled(ctx context.Context, db *gorm.DB) ([]domain.TaxRate, error) {
	var rates []domain.TaxRate
	err := db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("code ASC").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (gormRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.TaxRate{}).Count(&count).Error
	return count, err
}
