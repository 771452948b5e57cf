package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found or disabled.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountOwnerMismatch indicates that the account belongs to another user.
	ErrAccountOwnerMismatch = errors.New("account does not belong to the user")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrInsufficientBalance indicates that the account does not hold enough energy.
	ErrInsufficientBalance = errors.New("insufficient energy balance")
	// ErrInvalidAmount indicates a non-positive or unparsable energy amount.
	ErrInvalidAmount = errors.New("invalid energy amount")
)

// Account holds a participant's current energy balance in kWh.
//
// The balance never goes negative: every debit is checked and applied in the
// same atomic statement, backed by the accounts_balance_check constraint.
type Account struct {
	ID         int32      `json:"id"`
	Owner      string     `json:"owner"`
	Balance    string     `json:"balance"`
	DisabledAt *time.Time `json:"disabled_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
