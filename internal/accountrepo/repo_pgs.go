// Package accountrepo manages repository layer of energy accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/wattshare/energy-exchange/internal/domain"
	"github.com/wattshare/energy-exchange/pkg/dbpkg"
	"github.com/wattshare/energy-exchange/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (owner, balance)
VALUES
    ($1, 0)
RETURNING id, owner, balance, disabled_at, created_at
`

// Create creates a zero-balance account for the owner and then returns it.
func (r *RepoPGS) Create(ctx context.Context, owner string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, owner)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.DisabledAt,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_owner_fkey" {
				return a, domain.ErrOwnerNotFound
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2 AND disabled_at IS NULL
RETURNING id, owner, balance, disabled_at, created_at
`

// AddBalance changes the account's balance and returns the changed account.
//
// The balance check and the mutation are one statement: a debit below zero
// trips the accounts_balance_check constraint and no row is changed.
func (r *RepoPGS) AddBalance(ctx context.Context, amount string, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, id)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.DisabledAt,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const refundQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING id, owner, balance, disabled_at, created_at
`

// Refund returns previously locked energy to the account. Unlike AddBalance
// it lands on disabled accounts too: the energy was locked before the disable
// and still belongs to the owner, so a refund is not a new settlement request.
func (r *RepoPGS) Refund(ctx context.Context, amount string, id int32) (domain.Account, error) {
	return r.scanOne(ctx, refundQuery, amount, id)
}

const getQuery = `
SELECT
	id, owner, balance, disabled_at, created_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int32) (domain.Account, error) {
	return r.scanOne(ctx, getQuery, id)
}

const getByOwnerQuery = `
SELECT
	id, owner, balance, disabled_at, created_at
FROM accounts
WHERE owner = $1
`

// GetByOwner returns the account owned by the given user.
func (r *RepoPGS) GetByOwner(ctx context.Context, owner string) (domain.Account, error) {
	return r.scanOne(ctx, getByOwnerQuery, owner)
}

const disableQuery = `
UPDATE accounts
SET disabled_at = now()
WHERE id = $1 AND disabled_at IS NULL
RETURNING id, owner, balance, disabled_at, created_at
`

// Disable soft-disables the account. Accounts are never hard-deleted.
func (r *RepoPGS) Disable(ctx context.Context, id int32) (domain.Account, error) {
	return r.scanOne(ctx, disableQuery, id)
}

func (r *RepoPGS) scanOne(ctx context.Context, query string, args ...any) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, query, args...)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&a.DisabledAt,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}
