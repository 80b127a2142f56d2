package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rate *TaxRate) error
	ListEnabled(ctx context.Context, db *gorm.DB) ([]TaxRate, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
