// Package poolrepo manages repository layer of the community pool.
//
// The pool is a single row. Deposits and releases lock that row before
// mutating it, so concurrent calls serialize and total_stored_kwh always
// equals the running sum of the transaction history.
package poolrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wattshare/energy-exchange/internal/accountrepo"
	"github.com/wattshare/energy-exchange/internal/domain"
	"github.com/wattshare/energy-exchange/pkg/dbpkg"
	"github.com/wattshare/energy-exchange/pkg/errorspkg"
)

// RepoPGS facilitates community pool repository layer logic.
type RepoPGS struct {
	db           dbpkg.SQLInterface
	conn         *sql.DB
	defaultPrice string
}

// NewRepoPGS returns pool RepoPGS with a connection to start transactions.
// defaultPrice is the unit price a lazily created pool starts with.
func NewRepoPGS(db *sql.DB, defaultPrice string) *RepoPGS {
	return &RepoPGS{
		db:           db,
		conn:         db,
		defaultPrice: defaultPrice,
	}
}

const insertPoolQuery = `
INSERT INTO community_pool (id, total_stored_kwh, unit_price)
VALUES (true, 0, $1)
ON CONFLICT (id) DO NOTHING
`

const getPoolQuery = `
SELECT total_stored_kwh, unit_price, created_at, updated_at
FROM community_pool
WHERE id
`

// GetOrCreate returns the singleton pool, creating it with a zero store and
// the default price if absent. Concurrent first accesses race on the insert
// but only one row can ever exist.
func (r *RepoPGS) GetOrCreate(ctx context.Context) (domain.Pool, error) {
	l := zerolog.Ctx(ctx)

	var p domain.Pool

	if _, err := r.db.ExecContext(ctx, insertPoolQuery, r.defaultPrice); err != nil {
		l.Error().Err(err).Send()
		return p, errorspkg.ErrInternal
	}

	row := r.db.QueryRowContext(ctx, getPoolQuery)

	err := row.Scan(&p.TotalStoredKwh, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		l.Error().Err(err).Send()
		return p, errorspkg.ErrInternal
	}

	return p, nil
}

const lockPoolQuery = `
SELECT total_stored_kwh, unit_price, created_at, updated_at
FROM community_pool
WHERE id
FOR UPDATE
`

func lockPool(ctx context.Context, tx *sql.Tx, defaultPrice string) (domain.Pool, error) {
	var p domain.Pool

	if _, err := tx.ExecContext(ctx, insertPoolQuery, defaultPrice); err != nil {
		return p, err
	}

	row := tx.QueryRowContext(ctx, lockPoolQuery)

	err := row.Scan(&p.TotalStoredKwh, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt)

	return p, err
}

const addStoredQuery = `
UPDATE community_pool
SET total_stored_kwh = total_stored_kwh + $1, updated_at = now()
WHERE id
RETURNING total_stored_kwh, unit_price, created_at, updated_at
`

const insertTransactionQuery = `
INSERT INTO
    pool_transactions (account_id, kind, amount_kwh, price_per_kwh, total_value)
VALUES
    ($1, $2, $3, $4, $3::numeric * $4::numeric)
RETURNING id, account_id, kind, amount_kwh, price_per_kwh, total_value, created_at
`

// Deposit debits the account, increments the pool store and appends a deposit
// record valued at the pool's current unit price, all as one atomic unit.
func (r *RepoPGS) Deposit(ctx context.Context, accountID int32, amount string) (domain.PoolTxResult, error) {
	return r.settle(ctx, accountID, amount, domain.PoolTxDeposit)
}

// Release decrements the pool store, credits the account and appends a
// release record valued at the current unit price, all as one atomic unit.
// A release larger than the pool's store fails with ErrInsufficientPoolEnergy
// and leaves both the pool and the account untouched.
func (r *RepoPGS) Release(ctx context.Context, accountID int32, amount string) (domain.PoolTxResult, error) {
	return r.settle(ctx, accountID, amount, domain.PoolTxRelease)
}

func (r *RepoPGS) settle(ctx context.Context, accountID int32, amount, kind string) (domain.PoolTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.PoolTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	pool, err := lockPool(ctx, tx, r.defaultPrice)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	accountDelta, poolDelta := amount, "-"+amount
	if kind == domain.PoolTxDeposit {
		accountDelta, poolDelta = "-"+amount, amount
	}

	if kind == domain.PoolTxRelease {
		stored, err := decimal.NewFromString(pool.TotalStoredKwh)
		if err != nil {
			l.Error().Err(err).Send()
			return result, errorspkg.ErrInternal
		}

		requested, err := decimal.NewFromString(amount)
		if err != nil {
			return result, domain.ErrInvalidAmount
		}

		if stored.LessThan(requested) {
			return result, domain.ErrInsufficientPoolEnergy
		}
	}

	accountRepo := accountrepo.NewRepoPGS(tx)

	result.Account, err = accountRepo.AddBalance(ctx, accountDelta, accountID)
	if err != nil {
		return result, err
	}

	row := tx.QueryRowContext(ctx, addStoredQuery, poolDelta)

	err = row.Scan(
		&result.Pool.TotalStoredKwh,
		&result.Pool.UnitPrice,
		&result.Pool.CreatedAt,
		&result.Pool.UpdatedAt,
	)
	if err != nil {
		l.Error().Err(err).Send()

		// Backstop behind the locked-read check above.
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "community_pool_total_stored_kwh_check" {
				return result, domain.ErrInsufficientPoolEnergy
			}
		}

		return result, errorspkg.ErrInternal
	}

	row = tx.QueryRowContext(ctx, insertTransactionQuery, accountID, kind, amount, pool.UnitPrice)

	err = row.Scan(
		&result.Transaction.ID,
		&result.Transaction.AccountID,
		&result.Transaction.Kind,
		&result.Transaction.AmountKwh,
		&result.Transaction.PricePerKwh,
		&result.Transaction.TotalValue,
		&result.Transaction.CreatedAt,
	)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "pool_transactions_account_id_fkey":
				return result, domain.ErrAccountNotFound
			case "pool_transactions_amount_kwh_check":
				return result, domain.ErrInvalidAmount
			}
		}

		return result, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

const insertPriceEventQuery = `
INSERT INTO pool_price_events (price)
VALUES ($1)
`

const setUnitPriceQuery = `
UPDATE community_pool
SET unit_price = $1, updated_at = now()
WHERE id
RETURNING total_stored_kwh, unit_price, created_at, updated_at
`

// SetUnitPrice records a price change as an append-only event and applies it
// to the pool row in one transaction. Future deposits and releases are valued
// at the new price; historical records keep the price captured at their time.
func (r *RepoPGS) SetUnitPrice(ctx context.Context, price string) (domain.Pool, error) {
	l := zerolog.Ctx(ctx)

	var p domain.Pool

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return p, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := lockPool(ctx, tx, price); err != nil {
		l.Error().Err(err).Send()
		return p, errorspkg.ErrInternal
	}

	if _, err := tx.ExecContext(ctx, insertPriceEventQuery, price); err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "pool_price_events_price_check" {
				return p, domain.ErrInvalidPrice
			}
		}

		return p, errorspkg.ErrInternal
	}

	row := tx.QueryRowContext(ctx, setUnitPriceQuery, price)

	err = row.Scan(&p.TotalStoredKwh, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "community_pool_unit_price_check" {
				return p, domain.ErrInvalidPrice
			}
		}

		return p, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return p, errorspkg.ErrInternal
	}

	return p, nil
}

const listTransactionsQuery = `
SELECT
	id, account_id, kind, amount_kwh, price_per_kwh, total_value, created_at
FROM pool_transactions
WHERE $1 = '' OR kind = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

const countTransactionsQuery = `
SELECT count(*)
FROM pool_transactions
WHERE $1 = '' OR kind = $1
`

// ListTransactions returns the merged deposit and release history, newest
// first, along with the total record count for pagination.
func (r *RepoPGS) ListTransactions(ctx context.Context, arg domain.ListPoolTransactionsParams) ([]domain.PoolTransaction, int64, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listTransactionsQuery, arg.Kind, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, 0, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.PoolTransaction{}

	for rows.Next() {
		var pt domain.PoolTransaction
		if err := rows.Scan(
			&pt.ID,
			&pt.AccountID,
			&pt.Kind,
			&pt.AmountKwh,
			&pt.PricePerKwh,
			&pt.TotalValue,
			&pt.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, 0, errorspkg.ErrInternal
		}

		items = append(items, pt)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, 0, errorspkg.ErrInternal
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countTransactionsQuery, arg.Kind).Scan(&total); err != nil {
		l.Error().Err(err).Send()
		return nil, 0, errorspkg.ErrInternal
	}

	return items, total, nil
}
