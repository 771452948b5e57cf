// Package orderservice manages business logic layer of sell orders.
package orderservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wattshare/energy-exchange/internal/accountdelivery"
	"github.com/wattshare/energy-exchange/internal/domain"
)

// Repo provides data access layer interface needed by order service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package orderservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateOrderParams) (domain.OrderTxResult, error)
	Buy(ctx context.Context, orderID int64, buyerAccountID int32) (domain.OrderTxResult, error)
	Cancel(ctx context.Context, orderID int64, sellerAccountID int32) (domain.OrderTxResult, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
	ListOpen(ctx context.Context) ([]domain.Order, error)
	List(ctx context.Context, arg domain.ListOrdersParams) ([]domain.Order, error)
	ListRecentCompleted(ctx context.Context, limit int32) ([]domain.Order, error)
	TradeStats(ctx context.Context, accountID int32) (domain.TradeStats, error)
}

// Service facilitates order service layer logic.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
	ttl            time.Duration
}

// New returns order service struct to manage order business logic.
// ttl is the fixed time to live of a new sell order.
func New(or Repo, as accountdelivery.Service, ttl time.Duration) *Service {
	return &Service{
		repo:           or,
		accountService: as,
		ttl:            ttl,
	}
}

func (s *Service) validCreateRequest(ctx context.Context, sellerOwner, amount, price string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil || amountDecimal.LessThanOrEqual(decimal.Zero) {
		l.Info().Str("amount", amount).Msg("invalid order amount")
		return domain.Account{}, domain.ErrInvalidAmount
	}

	priceDecimal, err := decimal.NewFromString(price)
	if err != nil || priceDecimal.IsNegative() {
		l.Info().Str("price", price).Msg("invalid order price")
		return domain.Account{}, domain.ErrInvalidPrice
	}

	seller, err := s.accountService.GetByOwner(ctx, sellerOwner)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, err
	}

	balance, err := decimal.NewFromString(seller.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, err
	}

	if balance.LessThan(amountDecimal) {
		return domain.Account{}, domain.ErrInsufficientBalance
	}

	return seller, nil
}

// Create validates a sell request and locks the seller's energy into a new
// open order. The balance pre-check here is advisory; the repo re-enforces it
// inside the settlement transaction.
func (s *Service) Create(ctx context.Context, sellerOwner, amount, price string) (domain.OrderTxResult, error) {
	seller, err := s.validCreateRequest(ctx, sellerOwner, amount, price)
	if err != nil {
		return domain.OrderTxResult{}, err
	}

	arg := domain.CreateOrderParams{
		SellerAccountID: seller.ID,
		EnergyAmount:    amount,
		PricePerUnit:    price,
		ExpiresAt:       time.Now().Add(s.ttl),
	}

	return s.repo.Create(ctx, arg)
}

// Buy completes an open order for the caller, crediting the energy to their
// account.
func (s *Service) Buy(ctx context.Context, buyerOwner string, orderID int64) (domain.OrderTxResult, error) {
	buyer, err := s.accountService.GetByOwner(ctx, buyerOwner)
	if err != nil {
		return domain.OrderTxResult{}, err
	}

	return s.repo.Buy(ctx, orderID, buyer.ID)
}

// Cancel cancels the caller's open order and refunds the locked energy.
func (s *Service) Cancel(ctx context.Context, sellerOwner string, orderID int64) (domain.OrderTxResult, error) {
	seller, err := s.accountService.GetByOwner(ctx, sellerOwner)
	if err != nil {
		return domain.OrderTxResult{}, err
	}

	return s.repo.Cancel(ctx, orderID, seller.ID)
}

// ListOpen returns all open, unexpired orders, newest first.
func (s *Service) ListOpen(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListOpen(ctx)
}

// ListForOwner returns the caller's orders filtered by role and status.
func (s *Service) ListForOwner(ctx context.Context, owner, role, status string, pageSize, pageID int32) ([]domain.Order, error) {
	account, err := s.accountService.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = domain.OrderRoleAny
	}

	arg := domain.ListOrdersParams{
		AccountID: account.ID,
		Role:      role,
		Status:    status,
		Limit:     pageSize,
		Offset:    (pageID - 1) * pageSize,
	}

	return s.repo.List(ctx, arg)
}

// ListRecentCompleted returns the latest completed trades.
func (s *Service) ListRecentCompleted(ctx context.Context, limit int32) ([]domain.Order, error) {
	return s.repo.ListRecentCompleted(ctx, limit)
}

// StatsForOwner summarizes the caller's completed trades.
func (s *Service) StatsForOwner(ctx context.Context, owner string) (domain.TradeStats, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.accountService.GetByOwner(ctx, owner)
	if err != nil {
		return domain.TradeStats{}, err
	}

	stats, err := s.repo.TradeStats(ctx, account.ID)
	if err != nil {
		return domain.TradeStats{}, err
	}

	earned, err := decimal.NewFromString(stats.TotalEarned)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.TradeStats{}, err
	}

	spent, err := decimal.NewFromString(stats.TotalSpent)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.TradeStats{}, err
	}

	stats.NetProfit = earned.Sub(spent).String()

	return stats, nil
}
