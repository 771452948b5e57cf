package domain

import (
	"errors"
	"time"
)

var (
	// ErrOrderNotFound indicates that the order is not found.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotAvailable indicates a transition attempt from a non-open
	// state or by a caller other than the recorded seller.
	ErrOrderNotAvailable = errors.New("order is not available")
	// ErrOrderExpired indicates that the order's expiry has passed.
	ErrOrderExpired = errors.New("order has expired")
	// ErrInvalidPrice indicates a negative or unparsable unit price.
	ErrInvalidPrice = errors.New("invalid price")
)

// Order statuses. An order leaves the open state exactly once.
const (
	OrderStatusOpen      = "open"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
	OrderStatusExpired   = "expired"
)

// Order roles used to query a participant's orders.
const (
	OrderRoleSeller = "seller"
	OrderRoleBuyer  = "buyer"
	OrderRoleAny    = "any"
)

// Order holds a sell offer. While the status is open the energy amount is
// locked: it has already been debited from the seller and is credited back to
// exactly one party on the terminal transition.
type Order struct {
	ID              int64      `json:"id"`
	SellerAccountID int32      `json:"seller_account_id"`
	BuyerAccountID  *int32     `json:"buyer_account_id,omitempty"`
	EnergyAmount    string     `json:"energy_amount"`
	PricePerUnit    string     `json:"price_per_unit"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// CreateOrderParams is the input data for the order creation transaction.
type CreateOrderParams struct {
	SellerAccountID int32     `json:"seller_account_id"`
	EnergyAmount    string    `json:"energy_amount"`
	PricePerUnit    string    `json:"price_per_unit"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// ListOrdersParams is the input data to query a participant's orders.
type ListOrdersParams struct {
	AccountID int32  `json:"account_id"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

// OrderTxResult is the result of an order settlement transaction. Account is
// the mutated side: the seller on create/cancel/expire, the buyer on buy.
type OrderTxResult struct {
	Order   Order   `json:"order"`
	Account Account `json:"account"`
}

// TradeStats summarizes a participant's completed trades.
type TradeStats struct {
	TotalEarned      string `json:"total_earned"`
	TotalSpent       string `json:"total_spent"`
	NetProfit        string `json:"net_profit"`
	TransactionCount int64  `json:"transaction_count"`
}
