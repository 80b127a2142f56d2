package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]TaxRate, error)
	Table(ctx context.Context) (Table, error)
}

var (
	ErrInvalidCode = errors.New("invalid_tax_code")
	ErrInvalidRate = errors.New("invalid_tax_rate")
	ErrNotFound    = errors.New("tax_rate_not_found")
)
