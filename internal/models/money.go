package models

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is the exact-decimal amount type backing every monetary field so
// that ascending-tuple summation order is bit-for-bit reproducible rather
// than subject to binary floating-point drift.
type Money struct {
	decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{decimal.Zero}

// NewMoney wraps a decimal.Decimal.
func NewMoney(d decimal.Decimal) Money { return Money{d} }

// MoneyFromFloat builds a Money from a float64 (used by code paths that
// already have a float, e.g. averaging results).
func MoneyFromFloat(f float64) Money { return Money{decimal.NewFromFloat(f)} }

var moneyCleaner = regexp.MustCompile(`[¥,\s]`)

// ParseMoney implements the Normaliser's money-parsing contract:
// "¥1,234.56", "1,234.56", "1234", and blank all parse; anything else
// blank/non-numeric becomes 0.
func ParseMoney(raw string) Money {
	cleaned := moneyCleaner.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Zero
	}
	return Money{d}
}

// Add returns the sum, matching decimal.Decimal.Add's immutability.
func (m Money) Add(other Money) Money { return Money{m.Decimal.Add(other.Decimal)} }

// Value implements driver.Valuer for sqlx/database-sql writes.
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.String(), nil
}

// Scan implements sql.Scanner for sqlx/database-sql reads.
func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		m.Decimal = decimal.Zero
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("scan money %q: %w", v, err)
		}
		m.Decimal = d
		return nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("scan money %q: %w", string(v), err)
		}
		m.Decimal = d
		return nil
	case float64:
		m.Decimal = decimal.NewFromFloat(v)
		return nil
	case int64:
		m.Decimal = decimal.NewFromInt(v)
		return nil
	default:
		return fmt.Errorf("unsupported money scan type %T", src)
	}
}

// MarshalJSON renders as a plain numeric string-free float for API clients.
func (m Money) MarshalJSON() ([]byte, error) {
	f, _ := m.Decimal.Float64()
	return []byte(fmt.Sprintf("%.2f", f)), nil
}
