// Package seed bootstraps the static tax-rate table.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/invoicedesk/internal/taxrate/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// defaultTaxRates is the stock jurisdiction set for a fresh install. Rates
// are fractions; amendments belong in the tax_rates table, not here.
var defaultTaxRates = []struct {
	code string
	name string
	rate string
}{
	{"CA", "California Sales Tax", "0.0725"},
	{"NY", "New York Sales Tax", "0.04"},
	{"TX", "Texas Sales Tax", "0.0625"},
	{"WA", "Washington Sales Tax", "0.065"},
	{"FL", "Florida Sales Tax", "0.06"},
	{"OR", "Oregon (no sales tax)", "0"},
}

// EnsureDefaultTaxRates seeds the rate table when it is empty.
func EnsureDefaultTaxRates(db *gorm.DB, repo taxdomain.Repository) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := repo.Count(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, entry := range defaultTaxRates {
			rate, err := decimal.NewFromString(entry.rate)
			if err != nil {
				return err
			}
			record := taxdomain.TaxRate{
				ID:        node.Generate(),
				Code:      entry.code,
				Name:      entry.name,
				Rate:      rate,
				IsEnabled: true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.Insert(ctx, tx, &record); err != nil {
				return err
			}
		}
		return nil
	})
}
