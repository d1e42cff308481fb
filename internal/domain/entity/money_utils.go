package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the number of decimal places money amounts are rounded to
const MaxDecimalPlaces = 2

// RoundMoney rounds an amount half away from zero to two decimal places
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MaxDecimalPlaces)
}

// MoneyEqual compares two amounts after rounding both to two decimal places
func MoneyEqual(a, b decimal.Decimal) bool {
	return RoundMoney(a).Equal(RoundMoney(b))
}

// MoneyToFloat converts a rounded amount to a float64 for JSON payloads
func MoneyToFloat(amount decimal.Decimal) float64 {
	f, _ := RoundMoney(amount).Float64()
	return f
}

// FormatMoney renders an amount with exactly two decimal places
func FormatMoney(amount decimal.Decimal) string {
	return RoundMoney(amount).StringFixed(MaxDecimalPlaces)
}

// ParseMoney parses a decimal string such as "100.5" into an amount
func ParseMoney(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return d, nil
}

// MoneyFromAny converts a loosely typed provider value (number or numeric string)
// into an amount. The second return is false when the value is not numeric.
func MoneyFromAny(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := ParseMoney(v)
		return d, err == nil
	case decimal.Decimal:
		return v, true
	default:
		return decimal.Zero, false
	}
}
