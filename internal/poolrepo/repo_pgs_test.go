package poolrepo

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wattshare/energy-exchange/internal/accountrepo"
	"github.com/wattshare/energy-exchange/internal/domain"
	"github.com/wattshare/energy-exchange/internal/userrepo"
	"github.com/wattshare/energy-exchange/pkg/configpkg"
	"github.com/wattshare/energy-exchange/pkg/passpkg"
	"github.com/wattshare/energy-exchange/pkg/randompkg"
)

var (
	testRepo        *RepoPGS
	testAccountRepo *accountrepo.RepoPGS
	testUserRepo    *userrepo.RepoPGS
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	testDB, err := sql.Open(config.DBDriver, config.DBSource)
	if err != nil {
		log.Fatal("cannot connect to db:", err)
	}

	testRepo = NewRepoPGS(testDB, config.PoolDefaultPrice)
	testAccountRepo = accountrepo.NewRepoPGS(testDB)
	testUserRepo = userrepo.NewRepoPGS(testDB)

	os.Exit(m.Run())
}

func createFundedAccount(t *testing.T, balance string) domain.Account {
	ctx := context.Background()

	hashedPassword, err := passpkg.Hash(randompkg.String(10))
	require.NoError(t, err)

	arg := domain.CreateUserParams{
		Username:       randompkg.Owner(),
		HashedPassword: hashedPassword,
		FullName:       randompkg.Owner(),
		Email:          randompkg.Email(),
	}

	result, err := testUserRepo.Register(ctx, arg)
	require.NoError(t, err)

	account, err := testAccountRepo.AddBalance(ctx, balance, result.Account.ID)
	require.NoError(t, err)

	return account
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func TestGetOrCreate(t *testing.T) {
	pool, err := testRepo.GetOrCreate(context.Background())
	require.NoError(t, err)

	require.False(t, dec(t, pool.TotalStoredKwh).IsNegative())
	require.False(t, dec(t, pool.UnitPrice).IsNegative())
	require.NotZero(t, pool.CreatedAt)

	// A second call returns the same singleton.
	again, err := testRepo.GetOrCreate(context.Background())
	require.NoError(t, err)
	require.Equal(t, pool.CreatedAt, again.CreatedAt)
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()
	account := createFundedAccount(t, "100")

	before, err := testRepo.GetOrCreate(ctx)
	require.NoError(t, err)

	result, err := testRepo.Deposit(ctx, account.ID, "30")
	require.NoError(t, err)

	// The energy left the account and entered the pool.
	require.True(t, dec(t, result.Account.Balance).Equal(dec(t, "70")))
	require.True(t, dec(t, result.Pool.TotalStoredKwh).
		Equal(dec(t, before.TotalStoredKwh).Add(dec(t, "30"))))

	// The record captured the price in force at execution time.
	require.Equal(t, domain.PoolTxDeposit, result.Transaction.Kind)
	require.True(t, dec(t, result.Transaction.PricePerKwh).Equal(dec(t, before.UnitPrice)))
	require.True(t, dec(t, result.Transaction.TotalValue).
		Equal(dec(t, "30").Mul(dec(t, before.UnitPrice))))
}

func TestDepositInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	account := createFundedAccount(t, "10")

	before, err := testRepo.GetOrCreate(ctx)
	require.NoError(t, err)

	result, err := testRepo.Deposit(ctx, account.ID, "30")
	require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
	require.Empty(t, result.Transaction)

	// Neither side moved.
	after, err := testRepo.GetOrCreate(ctx)
	require.NoError(t, err)
	require.True(t, dec(t, after.TotalStoredKwh).Equal(dec(t, before.TotalStoredKwh)))

	got, err := testAccountRepo.Get(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, dec(t, got.Balance).Equal(dec(t, "10")))
}

func TestRelease(t *testing.T) {
	ctx := context.Background()
	account := createFundedAccount(t, "100")

	_, err := testRepo.Deposit(ctx, account.ID, "40")
	require.NoError(t, err)

	before, err := testRepo.GetOrCreate(ctx)
	require.NoError(t, err)

	result, err := testRepo.Release(ctx, account.ID, "25")
	require.NoError(t, err)

	require.True(t, dec(t, result.Account.Balance).Equal(dec(t, "85")))
	require.True(t, dec(t, result.Pool.TotalStoredKwh).
		Equal(dec(t, before.TotalStoredKwh).Sub(dec(t, "25"))))
	require.Equal(t, domain.PoolTxRelease, result.Transaction.Kind)
}

func TestReleaseInsufficientPoolEnergy(t *testing.T) {
	ctx := context.Background()
	account := createFundedAccount(t, "0")

	before, err := testRepo.GetOrCreate(ctx)
	require.NoError(t, err)

	requested := dec(t, before.TotalStoredKwh).Add(dec(t, "1000"))

	result, err := testRepo.Release(ctx, account.ID, requested.String())
	require.EqualError(t, err, domain.ErrInsufficientPoolEnergy.Error())
	require.Empty(t, result.Transaction)

	// The failed release left the pool untouched.
	after, err := testRepo.GetOrCreate(ctx)
	require.NoError(t, err)
	require.True(t, dec(t, after.TotalStoredKwh).Equal(dec(t, before.TotalStoredKwh)))
}

func TestSetUnitPrice(t *testing.T) {
	ctx := context.Background()

	pool, err := testRepo.SetUnitPrice(ctx, "0.33")
	require.NoError(t, err)
	require.True(t, dec(t, pool.UnitPrice).Equal(dec(t, "0.33")))

	// New settlements are valued at the new price.
	account := createFundedAccount(t, "20")

	result, err := testRepo.Deposit(ctx, account.ID, "10")
	require.NoError(t, err)
	require.True(t, dec(t, result.Transaction.PricePerKwh).Equal(dec(t, "0.33")))
	require.True(t, dec(t, result.Transaction.TotalValue).Equal(dec(t, "3.3")))
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	account := createFundedAccount(t, "50")

	deposited, err := testRepo.Deposit(ctx, account.ID, "15")
	require.NoError(t, err)

	items, total, err := testRepo.ListTransactions(ctx, domain.ListPoolTransactionsParams{
		Kind:  domain.PoolTxDeposit,
		Limit: 10,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, total, int64(1))
	require.NotEmpty(t, items)

	// Newest first: the fresh deposit leads the page.
	require.Equal(t, deposited.Transaction.ID, items[0].ID)

	for _, item := range items {
		require.Equal(t, domain.PoolTxDeposit, item.Kind)
	}
}
