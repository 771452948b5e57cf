package domain

import (
	"errors"
	"time"
)

var (
	// ErrInsufficientPoolEnergy indicates that the pool holds less energy
	// than the requested release amount.
	ErrInsufficientPoolEnergy = errors.New("insufficient energy in community pool")
	// ErrPoolNotFound indicates that the community pool row is missing.
	ErrPoolNotFound = errors.New("community pool not found")
)

// Pool transaction kinds.
const (
	PoolTxDeposit = "deposit"
	PoolTxRelease = "release"
)

// Pool is the singleton community reservoir. TotalStoredKwh always equals the
// running sum of deposits minus releases.
type Pool struct {
	TotalStoredKwh string    `json:"total_stored_kwh"`
	UnitPrice      string    `json:"unit_price"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PoolTransaction is one append-only deposit or release record. The price is
// captured at execution time and never rewritten.
type PoolTransaction struct {
	ID          int64     `json:"id"`
	AccountID   int32     `json:"account_id"`
	Kind        string    `json:"kind"`
	AmountKwh   string    `json:"amount_kwh"`
	PricePerKwh string    `json:"price_per_kwh"`
	TotalValue  string    `json:"total_value"`
	CreatedAt   time.Time `json:"created_at"`
}

// PoolTxResult is the result of a deposit or release transaction.
type PoolTxResult struct {
	Transaction PoolTransaction `json:"transaction"`
	Account     Account         `json:"account"`
	Pool        Pool            `json:"pool"`
}

// ListPoolTransactionsParams is the input data to page through pool history.
type ListPoolTransactionsParams struct {
	Kind   string `json:"kind"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}
