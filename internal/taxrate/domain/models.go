// Package domain contains the jurisdiction tax-rate model and lookup table.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TaxRate maps a jurisdiction code to its sales tax rate. Rates are
// fractions in [0,1), stored to four decimal places.
type TaxRate struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	Code      string          `gorm:"type:text;not null;uniqueIndex:ux_tax_rates_code" json:"code"`
	Name      string          `gorm:"type:text;not null" json:"name"`
	Rate      decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"rate"`
	IsEnabled bool            `gorm:"not null;default:true" json:"is_enabled"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TaxRate) TableName() string { return "tax_rates" }

// Validate checks the rate definition before it is stored.
func (t *TaxRate) Validate() error {
	if strings.TrimSpace(t.Code) == "" {
		return ErrInvalidCode
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}
	return nil
}

// Table is an immutable jurisdiction → rate snapshot. It satisfies the
// invoice engine's RateTable contract: unknown codes read as zero tax.
type Table struct {
	rates map[string]decimal.Decimal
}

// NewTable builds a snapshot from enabled rates.
func NewTable(rates []TaxRate) Table {
	byCode := make(map[string]decimal.Decimal, len(rates))
	for _, r := range rates {
		code := strings.TrimSpace(r.Code)
		if code == "" || !r.IsEnabled {
			continue
		}
		byCode[code] = r.Rate
	}
	return Table{rates: byCode}
}

// Lookup returns the rate for a jurisdiction code and whether it is known.
func (t Table) Lookup(jurisdiction string) (decimal.Decimal, bool) {
	rate, ok := t.rates[strings.TrimSpace(jurisdiction)]
	if !ok {
		return decimal.Zero, false
	}
	return rate, true
}

// Len reports the number of known jurisdictions.
func (t Table) Len() int { return len(t.rates) }
