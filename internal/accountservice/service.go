// Package accountservice manages business logic layer of energy accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wattshare/energy-exchange/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	AddBalance(ctx context.Context, amount string, id int32) (domain.Account, error)
	Get(ctx context.Context, id int32) (domain.Account, error)
	GetByOwner(ctx context.Context, owner string) (domain.Account, error)
	Disable(ctx context.Context, id int32) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account business logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// ParseAmount parses a positive decimal energy amount.
func ParseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return d, domain.ErrInvalidAmount
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return d, domain.ErrInvalidAmount
	}

	return d, nil
}

// Credit adds the given positive amount of energy to the account. It is the
// posting point for externally computed production yield; the source of the
// amount is not validated here, only its positivity.
func (s *Service) Credit(ctx context.Context, id int32, amount string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if _, err := ParseAmount(amount); err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, err
	}

	return s.repo.AddBalance(ctx, amount, id)
}

// Debit removes the given positive amount of energy from the account. The
// sufficiency check happens in the same atomic statement as the mutation.
func (s *Service) Debit(ctx context.Context, id int32, amount string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if _, err := ParseAmount(amount); err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, err
	}

	return s.repo.AddBalance(ctx, "-"+amount, id)
}

// Get returns the account for the given account ID.
func (s *Service) Get(ctx context.Context, id int32) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByOwner returns the account owned by the given user.
func (s *Service) GetByOwner(ctx context.Context, owner string) (domain.Account, error) {
	return s.repo.GetByOwner(ctx, owner)
}

// Disable soft-disables the account; its rows survive but settlement
// operations refuse it from then on.
func (s *Service) Disable(ctx context.Context, id int32) (domain.Account, error) {
	return s.repo.Disable(ctx, id)
}
