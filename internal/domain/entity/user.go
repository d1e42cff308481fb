package entity

import (
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
)

// Buyer defaults sent to the payment provider when the cashier has no profile
const (
	DefaultBuyerName  = "POS"
	DefaultBuyerEmail = "cashier@example.com"
)

// User is the cashier operating the register
type User struct {
	ID    uint64 // Unique identifier for the cashier
	Name  string // Display name, sent as the provider buyer name
	Email string // Contact email, sent as the provider buyer contact
}

// NewUser creates a cashier identity for a checkout
func NewUser(id uint64, name, email string) (*User, error) {
	if id == 0 {
		return nil, errs.ErrInvalidUserID
	}
	return &User{ID: id, Name: name, Email: email}, nil
}

// BuyerName returns the name reported to the payment provider
func (u *User) BuyerName() string {
	if u == nil || u.Name == "" {
		return DefaultBuyerName
	}
	return u.Name
}

// BuyerEmail returns the contact email reported to the payment provider
func (u *User) BuyerEmail() string {
	if u == nil || u.Email == "" {
		return DefaultBuyerEmail
	}
	return u.Email
}
