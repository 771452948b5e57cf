// Package orderrepo manages repository layer of sell orders.
//
// Every lifecycle mutation runs inside a single database transaction and
// transitions the order with a conditional update guarded by the current
// status. Two concurrent buys of the same order therefore settle exactly once:
// the loser's update matches zero rows and is rejected.
package orderrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/wattshare/energy-exchange/internal/accountrepo"
	"github.com/wattshare/energy-exchange/internal/domain"
	"github.com/wattshare/energy-exchange/pkg/dbpkg"
	"github.com/wattshare/energy-exchange/pkg/errorspkg"
)

// RepoPGS facilitates order repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns order RepoPGS bound to an open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns order RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const orderColumns = `
id, seller_account_id, buyer_account_id, energy_amount, price_per_unit,
status, created_at, expires_at, completed_at
`

func scanOrder(row *sql.Row) (domain.Order, error) {
	var o domain.Order

	err := row.Scan(
		&o.ID,
		&o.SellerAccountID,
		&o.BuyerAccountID,
		&o.EnergyAmount,
		&o.PricePerUnit,
		&o.Status,
		&o.CreatedAt,
		&o.ExpiresAt,
		&o.CompletedAt,
	)

	return o, err
}

const insertQuery = `
INSERT INTO
    orders (seller_account_id, energy_amount, price_per_unit, expires_at)
VALUES
    ($1, $2, $3, $4)
RETURNING ` + orderColumns

// Create locks the seller's energy and inserts an open order as one atomic
// unit. The debit and the insert both happen or neither happens.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateOrderParams) (domain.OrderTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.OrderTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)

	result.Account, err = accountRepo.AddBalance(ctx, "-"+arg.EnergyAmount, arg.SellerAccountID)
	if err != nil {
		return result, err
	}

	row := tx.QueryRowContext(ctx, insertQuery,
		arg.SellerAccountID,
		arg.EnergyAmount,
		arg.PricePerUnit,
		arg.ExpiresAt,
	)

	result.Order, err = scanOrder(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "orders_seller_account_id_fkey":
				return result, domain.ErrAccountNotFound
			case "orders_energy_amount_check":
				return result, domain.ErrInvalidAmount
			case "orders_price_per_unit_check":
				return result, domain.ErrInvalidPrice
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

const buyQuery = `
UPDATE orders
SET status = 'completed', buyer_account_id = $2, completed_at = now()
WHERE id = $1 AND status = 'open' AND expires_at > now()
RETURNING ` + orderColumns

// Buy completes an open, unexpired order and credits the buyer as one atomic
// unit. Expiry is re-evaluated here by wall clock, not left to the sweeper:
// an order that is still marked open but past its expiry fails with
// ErrOrderExpired.
func (r *RepoPGS) Buy(ctx context.Context, orderID int64, buyerAccountID int32) (domain.OrderTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.OrderTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, buyQuery, orderID, buyerAccountID)

	result.Order, err = scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return result, r.transitionError(ctx, tx, orderID)
		}

		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "orders_buyer_account_id_fkey" {
				return result, domain.ErrAccountNotFound
			}
		}

		return result, errorspkg.ErrInternal
	}

	accountRepo := accountrepo.NewRepoPGS(tx)

	result.Account, err = accountRepo.AddBalance(ctx, result.Order.EnergyAmount, buyerAccountID)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

const cancelQuery = `
UPDATE orders
SET status = 'cancelled'
WHERE id = $1 AND seller_account_id = $2 AND status = 'open'
RETURNING ` + orderColumns

// Cancel cancels an open order of the given seller and refunds the locked
// energy as one atomic unit.
func (r *RepoPGS) Cancel(ctx context.Context, orderID int64, sellerAccountID int32) (domain.OrderTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.OrderTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, cancelQuery, orderID, sellerAccountID)

	result.Order, err = scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			// A cancel attempt on an open-but-expired order is a wrong-state
			// transition, not an expiry failure; the sweep owns the refund.
			err = r.transitionError(ctx, tx, orderID)
			if err == domain.ErrOrderExpired {
				err = domain.ErrOrderNotAvailable
			}

			return result, err
		}

		l.Error().Err(err).Send()

		return result, errorspkg.ErrInternal
	}

	accountRepo := accountrepo.NewRepoPGS(tx)

	result.Account, err = accountRepo.AddBalance(ctx, result.Order.EnergyAmount, sellerAccountID)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	return result, nil
}

// transitionError explains why a conditional transition matched no rows.
func (r *RepoPGS) transitionError(ctx context.Context, tx *sql.Tx, orderID int64) error {
	l := zerolog.Ctx(ctx)

	o, err := scanOrder(tx.QueryRowContext(ctx, getQuery, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrOrderNotFound
		}

		l.Error().Err(err).Send()

		return errorspkg.ErrInternal
	}

	if o.Status == domain.OrderStatusOpen && !o.ExpiresAt.After(time.Now()) {
		return domain.ErrOrderExpired
	}

	return domain.ErrOrderNotAvailable
}

const getQuery = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

// Get returns the order with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Order, error) {
	l := zerolog.Ctx(ctx)

	o, err := scanOrder(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return o, domain.ErrOrderNotFound
		}

		return o, errorspkg.ErrInternal
	}

	return o, nil
}

const listOpenQuery = `
SELECT ` + orderColumns + `
FROM orders
WHERE status = 'open' AND expires_at > now()
ORDER BY created_at DESC
`

// ListOpen returns all open, unexpired orders, newest first.
func (r *RepoPGS) ListOpen(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, listOpenQuery)
}

const listForAccountQuery = `
SELECT ` + orderColumns + `
FROM orders
WHERE
    (
        ($2 IN ('seller', 'any') AND seller_account_id = $1)
        OR ($2 IN ('buyer', 'any') AND buyer_account_id = $1)
    )
    AND ($3 = '' OR status = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`

// List returns the participant's orders filtered by role and status.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListOrdersParams) ([]domain.Order, error) {
	return r.list(ctx, listForAccountQuery,
		arg.AccountID,
		arg.Role,
		arg.Status,
		arg.Limit,
		arg.Offset,
	)
}

const listRecentCompletedQuery = `
SELECT ` + orderColumns + `
FROM orders
WHERE status = 'completed' AND completed_at IS NOT NULL
ORDER BY completed_at DESC
LIMIT $1
`

// ListRecentCompleted returns the latest completed trades.
func (r *RepoPGS) ListRecentCompleted(ctx context.Context, limit int32) ([]domain.Order, error) {
	return r.list(ctx, listRecentCompletedQuery, limit)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Order{}

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.SellerAccountID,
			&o.BuyerAccountID,
			&o.EnergyAmount,
			&o.PricePerUnit,
			&o.Status,
			&o.CreatedAt,
			&o.ExpiresAt,
			&o.CompletedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, o)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const tradeStatsQuery = `
SELECT
	COALESCE(SUM(CASE WHEN seller_account_id = $1 THEN energy_amount * price_per_unit ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN buyer_account_id = $1 THEN energy_amount * price_per_unit ELSE 0 END), 0),
	COUNT(*)
FROM orders
WHERE status = 'completed' AND (seller_account_id = $1 OR buyer_account_id = $1)
`

// TradeStats returns totals earned and spent over completed trades.
func (r *RepoPGS) TradeStats(ctx context.Context, accountID int32) (domain.TradeStats, error) {
	l := zerolog.Ctx(ctx)

	var s domain.TradeStats

	row := r.db.QueryRowContext(ctx, tradeStatsQuery, accountID)
	if err := row.Scan(&s.TotalEarned, &s.TotalSpent, &s.TransactionCount); err != nil {
		l.Error().Err(err).Send()
		return s, errorspkg.ErrInternal
	}

	return s, nil
}

const listDueQuery = `
SELECT id
FROM orders
WHERE status = 'open' AND expires_at <= now()
`

const expireQuery = `
UPDATE orders
SET status = 'expired'
WHERE id = $1 AND status = 'open' AND expires_at <= now()
RETURNING seller_account_id, energy_amount
`

// ExpireDue transitions every overdue open order to expired and refunds the
// locked energy to its seller. Each order is its own transaction: a failing
// order is logged and skipped so it cannot hold up the rest of the pass, and
// the status guard makes the sweep idempotent, so no seller is credited
// twice. Returns the number of orders expired.
func (r *RepoPGS) ExpireDue(ctx context.Context) (int, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listDueQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}
	defer rows.Close()

	due := []int64{}

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			l.Error().Err(err).Send()
			return 0, errorspkg.ErrInternal
		}

		due = append(due, id)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	swept := 0

	for _, id := range due {
		expired, err := r.expireOne(ctx, id)
		if err != nil {
			l.Error().Err(err).Int64("order_id", id).Msg("cannot expire order")
			continue
		}

		if expired {
			swept++
		}
	}

	return swept, nil
}

// expireOne expires a single order and refunds its seller as one atomic unit.
// An order that raced into a terminal state since listing matches no rows and
// is reported as not expired.
func (r *RepoPGS) expireOne(ctx context.Context, orderID int64) (bool, error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	defer func() {
		_ = tx.Rollback()
	}()

	var (
		sellerAccountID int32
		amount          string
	)

	err = tx.QueryRowContext(ctx, expireQuery, orderID).Scan(&sellerAccountID, &amount)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}

		l.Error().Err(err).Send()

		return false, errorspkg.ErrInternal
	}

	// Refund rather than AddBalance: the seller may have been disabled while
	// the order was open, and the locked energy must still come back.
	if _, err := accountrepo.NewRepoPGS(tx).Refund(ctx, amount, sellerAccountID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return true, nil
}
