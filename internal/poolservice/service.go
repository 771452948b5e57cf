// Package poolservice manages business logic layer of the community pool.
package poolservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wattshare/energy-exchange/internal/accountdelivery"
	"github.com/wattshare/energy-exchange/internal/domain"
)

// Repo provides data access layer interface needed by pool service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package poolservice
type Repo interface {
	GetOrCreate(ctx context.Context) (domain.Pool, error)
	Deposit(ctx context.Context, accountID int32, amount string) (domain.PoolTxResult, error)
	Release(ctx context.Context, accountID int32, amount string) (domain.PoolTxResult, error)
	SetUnitPrice(ctx context.Context, price string) (domain.Pool, error)
	ListTransactions(ctx context.Context, arg domain.ListPoolTransactionsParams) ([]domain.PoolTransaction, int64, error)
}

// Service facilitates pool service layer logic.
type Service struct {
	repo           Repo
	accountService accountdelivery.Service
}

// New returns pool service struct to manage community pool business logic.
func New(pr Repo, as accountdelivery.Service) *Service {
	return &Service{
		repo:           pr,
		accountService: as,
	}
}

// Status returns the singleton pool, lazily creating it on first access.
func (s *Service) Status(ctx context.Context) (domain.Pool, error) {
	return s.repo.GetOrCreate(ctx)
}

func validAmount(ctx context.Context, amount string) error {
	l := zerolog.Ctx(ctx)

	d, err := decimal.NewFromString(amount)
	if err != nil || d.LessThanOrEqual(decimal.Zero) {
		l.Info().Str("amount", amount).Msg("invalid pool amount")
		return domain.ErrInvalidAmount
	}

	return nil
}

// Deposit moves energy from the caller's account into the pool, valued at
// the pool's current unit price.
func (s *Service) Deposit(ctx context.Context, owner, amount string) (domain.PoolTxResult, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.PoolTxResult{}, err
	}

	account, err := s.accountService.GetByOwner(ctx, owner)
	if err != nil {
		return domain.PoolTxResult{}, err
	}

	return s.repo.Deposit(ctx, account.ID, amount)
}

// Release moves energy from the pool into the caller's account, valued at
// the pool's current unit price.
func (s *Service) Release(ctx context.Context, owner, amount string) (domain.PoolTxResult, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.PoolTxResult{}, err
	}

	account, err := s.accountService.GetByOwner(ctx, owner)
	if err != nil {
		return domain.PoolTxResult{}, err
	}

	return s.repo.Release(ctx, account.ID, amount)
}

// SetUnitPrice changes the pool's unit price for future deposits and
// releases. Historical records keep the price captured at their time.
func (s *Service) SetUnitPrice(ctx context.Context, price string) (domain.Pool, error) {
	l := zerolog.Ctx(ctx)

	d, err := decimal.NewFromString(price)
	if err != nil || d.IsNegative() {
		l.Info().Str("price", price).Msg("invalid pool price")
		return domain.Pool{}, domain.ErrInvalidPrice
	}

	return s.repo.SetUnitPrice(ctx, price)
}

// ListTransactions pages through the merged deposit and release history,
// newest first. It returns the page and the total record count.
func (s *Service) ListTransactions(ctx context.Context, kind string, pageSize, pageID int32) ([]domain.PoolTransaction, int64, error) {
	arg := domain.ListPoolTransactionsParams{
		Kind:   kind,
		Limit:  pageSize,
		Offset: (pageID - 1) * pageSize,
	}

	return s.repo.ListTransactions(ctx, arg)
}
