package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentRecord is a provider response decoded into a loose key/value shape.
// Providers report status, ids, references and amounts under varying keys,
// so accessors probe a fixed list of candidate paths in order.
type PaymentRecord map[string]any

var successStates = map[string]struct{}{
	"AUTHORIZED":      {},
	"CAPTURED":        {},
	"COMPLETED":       {},
	"PAID":            {},
	"SUCCESS":         {},
	"PAYMENT_SUCCESS": {},
}

var (
	statusPaths = [][]string{
		{"status"},
		{"paymentStatus"},
		{"state"},
		{"checkoutStatus"},
		{"results", "status"},
		{"results", "paymentStatus"},
		{"payments", "status"},
		{"payments", "paymentStatus"},
	}
	paymentIDPaths = [][]string{
		{"id"},
		{"paymentId"},
		{"payments", "id"},
		{"results", "id"},
	}
	referencePaths = [][]string{
		{"rrn"},
		{"referenceNumber"},
		{"requestReferenceNumber"},
		{"payments", "rrn"},
		{"results", "rrn"},
	}
	amountPaths = [][]string{
		{"amount"},
		{"totalAmount"},
		{"results", "amount"},
		{"results", "totalAmount"},
	}
)

// NewPaymentRecord converts a decoded JSON document into a record. A JSON
// array yields its first object element. Anything else yields nil.
func NewPaymentRecord(decoded any) PaymentRecord {
	switch v := decoded.(type) {
	case map[string]any:
		return PaymentRecord(v)
	case PaymentRecord:
		return v
	case []any:
		if len(v) == 0 {
			return nil
		}
		return NewPaymentRecord(v[0])
	default:
		return nil
	}
}

// lookup walks a candidate path. The second segment of a two-segment path
// is read from the first element of the array found at the first segment.
func (r PaymentRecord) lookup(path []string) (any, bool) {
	if r == nil {
		return nil, false
	}
	value, ok := r[path[0]]
	if !ok || value == nil {
		return nil, false
	}
	if len(path) == 1 {
		return value, true
	}

	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return nil, false
	}
	return PaymentRecord(first).lookup(path[1:])
}

// firstValue returns the first non-nil value among the paths
func (r PaymentRecord) firstValue(paths [][]string) (any, bool) {
	for _, path := range paths {
		if value, ok := r.lookup(path); ok {
			return value, true
		}
	}
	return nil, false
}

// Statuses returns every non-empty status string the record carries
func (r PaymentRecord) Statuses() []string {
	var statuses []string
	for _, path := range statusPaths {
		value, ok := r.lookup(path)
		if !ok {
			continue
		}
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// Status returns the first status string, or "" when none is present
func (r PaymentRecord) Status() string {
	statuses := r.Statuses()
	if len(statuses) == 0 {
		return ""
	}
	return statuses[0]
}

// IsSuccessful reports whether any status candidate is in the success vocabulary
func (r PaymentRecord) IsSuccessful() bool {
	for _, status := range r.Statuses() {
		if _, ok := successStates[strings.ToUpper(strings.TrimSpace(status))]; ok {
			return true
		}
	}
	return false
}

// PaymentID extracts the provider payment id
func (r PaymentRecord) PaymentID() string {
	return r.stringAt(paymentIDPaths)
}

// Reference extracts the correlation reference echoed by the provider
func (r PaymentRecord) Reference() string {
	return r.stringAt(referencePaths)
}

func (r PaymentRecord) stringAt(paths [][]string) string {
	value, ok := r.firstValue(paths)
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return decimal.NewFromFloat(v).String()
	default:
		return fmt.Sprint(v)
	}
}

// Amount extracts the {value} amount. The second return is false when the
// record carries no amount object with a numeric value.
func (r PaymentRecord) Amount() (decimal.Decimal, bool) {
	value, ok := r.firstValue(amountPaths)
	if !ok {
		return decimal.Zero, false
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return decimal.Zero, false
	}
	raw, ok := obj["value"]
	if !ok {
		return decimal.Zero, false
	}
	amount, ok := MoneyFromAny(raw)
	if !ok {
		// a present but non-numeric value compares as zero
		return decimal.Zero, true
	}
	return amount, true
}

// BelongsTo reports whether the record was issued for the given reference and
// total. A record without an amount matches on reference alone.
func (r PaymentRecord) BelongsTo(reference string, total decimal.Decimal) bool {
	if r == nil {
		return false
	}
	ref := r.Reference()
	if ref == "" || ref != reference {
		return false
	}
	amount, ok := r.Amount()
	if !ok {
		return true
	}
	return MoneyEqual(amount, total)
}

// AmountMatches reports whether the record's amount, when present, equals total
func (r PaymentRecord) AmountMatches(total decimal.Decimal) bool {
	amount, ok := r.Amount()
	if !ok {
		return true
	}
	return MoneyEqual(amount, total)
}
