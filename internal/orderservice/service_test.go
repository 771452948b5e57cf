package orderservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/wattshare/energy-exchange/internal/accountdelivery"
	"github.com/wattshare/energy-exchange/internal/domain"
	"github.com/wattshare/energy-exchange/pkg/errorspkg"
	"github.com/wattshare/energy-exchange/pkg/randompkg"
)

const testTTL = 24 * time.Hour

func randomAccount(id int32, balance string) domain.Account {
	return domain.Account{
		ID:        id,
		Owner:     randompkg.Owner(),
		Balance:   balance,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreate(t *testing.T) {
	testSeller := randomAccount(1, "1000")
	testAmount := "100"
	testPrice := "0.20"

	testCases := []struct {
		name          string
		amount        string
		price         string
		buildStubs    func(repo *MockRepo, accountService *accountdelivery.MockService)
		checkResponse func(res domain.OrderTxResult, err error)
	}{
		{
			name:   "InvalidAmount",
			amount: "!@#$",
			price:  testPrice,
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidAmount.Error())
			},
		},
		{
			name:   "NegativeAmount",
			amount: "-100",
			price:  testPrice,
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidAmount.Error())
			},
		},
		{
			name:   "NegativePrice",
			amount: testAmount,
			price:  "-0.20",
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidPrice.Error())
			},
		},
		{
			name:   "AccountServiceError",
			amount: testAmount,
			price:  testPrice,
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testSeller.Owner)).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrInternal.Error())
			},
		},
		{
			name:   "InsufficientBalance",
			amount: "10000",
			price:  testPrice,
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testSeller.Owner)).
					Times(1).
					Return(testSeller, nil)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
			},
		},
		{
			name:   "OK",
			amount: testAmount,
			price:  testPrice,
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testSeller.Owner)).
					Times(1).
					Return(testSeller, nil)

				repo.EXPECT().
					Create(gomock.Any(), createOrderParamsMatcher{
						sellerAccountID: testSeller.ID,
						energyAmount:    testAmount,
						pricePerUnit:    testPrice,
						wantTTL:         testTTL,
					}).
					Times(1).
					Return(domain.OrderTxResult{
						Order: domain.Order{
							ID:              1,
							SellerAccountID: testSeller.ID,
							EnergyAmount:    testAmount,
							PricePerUnit:    testPrice,
							Status:          domain.OrderStatusOpen,
						},
					}, nil)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.OrderStatusOpen, res.Order.Status)
				require.Equal(t, testSeller.ID, res.Order.SellerAccountID)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			accountService := accountdelivery.NewMockService(ctrl)
			orderService := New(repo, accountService, testTTL)

			tc.buildStubs(repo, accountService)

			res, err := orderService.Create(context.Background(), testSeller.Owner, tc.amount, tc.price)
			tc.checkResponse(res, err)
		})
	}
}

// createOrderParamsMatcher checks the order params and that the expiry was
// stamped roughly one ttl into the future.
type createOrderParamsMatcher struct {
	sellerAccountID int32
	energyAmount    string
	pricePerUnit    string
	wantTTL         time.Duration
}

func (m createOrderParamsMatcher) Matches(x interface{}) bool {
	arg, ok := x.(domain.CreateOrderParams)
	if !ok {
		return false
	}

	if arg.SellerAccountID != m.sellerAccountID ||
		arg.EnergyAmount != m.energyAmount ||
		arg.PricePerUnit != m.pricePerUnit {
		return false
	}

	ttl := time.Until(arg.ExpiresAt)

	return ttl > m.wantTTL-time.Minute && ttl <= m.wantTTL
}

func (m createOrderParamsMatcher) String() string {
	return "matches order params with expiry stamped one ttl ahead"
}

func TestBuy(t *testing.T) {
	testBuyer := randomAccount(2, "500")
	testOrderID := int64(10)

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo, accountService *accountdelivery.MockService)
		checkResponse func(res domain.OrderTxResult, err error)
	}{
		{
			name: "AccountNotFound",
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				repo.EXPECT().Buy(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testBuyer.Owner)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountNotFound.Error())
			},
		},
		{
			name: "OrderNotAvailable",
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testBuyer.Owner)).
					Times(1).
					Return(testBuyer, nil)

				repo.EXPECT().
					Buy(gomock.Any(), gomock.Eq(testOrderID), gomock.Eq(testBuyer.ID)).
					Times(1).
					Return(domain.OrderTxResult{}, domain.ErrOrderNotAvailable)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrOrderNotAvailable.Error())
			},
		},
		{
			name: "OrderExpired",
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testBuyer.Owner)).
					Times(1).
					Return(testBuyer, nil)

				repo.EXPECT().
					Buy(gomock.Any(), gomock.Eq(testOrderID), gomock.Eq(testBuyer.ID)).
					Times(1).
					Return(domain.OrderTxResult{}, domain.ErrOrderExpired)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrOrderExpired.Error())
			},
		},
		{
			name: "OK",
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testBuyer.Owner)).
					Times(1).
					Return(testBuyer, nil)

				repo.EXPECT().
					Buy(gomock.Any(), gomock.Eq(testOrderID), gomock.Eq(testBuyer.ID)).
					Times(1).
					Return(domain.OrderTxResult{
						Order: domain.Order{
							ID:             testOrderID,
							BuyerAccountID: &testBuyer.ID,
							Status:         domain.OrderStatusCompleted,
						},
						Account: testBuyer,
					}, nil)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.OrderStatusCompleted, res.Order.Status)
				require.Equal(t, testBuyer.ID, *res.Order.BuyerAccountID)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			accountService := accountdelivery.NewMockService(ctrl)
			orderService := New(repo, accountService, testTTL)

			tc.buildStubs(repo, accountService)

			res, err := orderService.Buy(context.Background(), testBuyer.Owner, testOrderID)
			tc.checkResponse(res, err)
		})
	}
}

func TestCancel(t *testing.T) {
	testSeller := randomAccount(1, "1000")
	testOrderID := int64(10)

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo, accountService *accountdelivery.MockService)
		checkResponse func(res domain.OrderTxResult, err error)
	}{
		{
			name: "OrderNotFound",
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testSeller.Owner)).
					Times(1).
					Return(testSeller, nil)

				repo.EXPECT().
					Cancel(gomock.Any(), gomock.Eq(testOrderID), gomock.Eq(testSeller.ID)).
					Times(1).
					Return(domain.OrderTxResult{}, domain.ErrOrderNotFound)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrOrderNotFound.Error())
			},
		},
		{
			name: "OK",
			buildStubs: func(repo *MockRepo, accountService *accountdelivery.MockService) {
				accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testSeller.Owner)).
					Times(1).
					Return(testSeller, nil)

				repo.EXPECT().
					Cancel(gomock.Any(), gomock.Eq(testOrderID), gomock.Eq(testSeller.ID)).
					Times(1).
					Return(domain.OrderTxResult{
						Order: domain.Order{
							ID:     testOrderID,
							Status: domain.OrderStatusCancelled,
						},
						Account: testSeller,
					}, nil)
			},
			checkResponse: func(res domain.OrderTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.OrderStatusCancelled, res.Order.Status)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			accountService := accountdelivery.NewMockService(ctrl)
			orderService := New(repo, accountService, testTTL)

			tc.buildStubs(repo, accountService)

			res, err := orderService.Cancel(context.Background(), testSeller.Owner, testOrderID)
			tc.checkResponse(res, err)
		})
	}
}

func TestListForOwner(t *testing.T) {
	testAccount := randomAccount(1, "1000")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	accountService := accountdelivery.NewMockService(ctrl)
	orderService := New(repo, accountService, testTTL)

	accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testAccount.Owner)).
		Times(1).
		Return(testAccount, nil)

	// Empty role defaults to any; the offset is computed from the page.
	arg := domain.ListOrdersParams{
		AccountID: testAccount.ID,
		Role:      domain.OrderRoleAny,
		Status:    domain.OrderStatusOpen,
		Limit:     10,
		Offset:    10,
	}

	repo.EXPECT().List(gomock.Any(), gomock.Eq(arg)).
		Times(1).
		Return([]domain.Order{{ID: 1}}, nil)

	orders, err := orderService.ListForOwner(context.Background(), testAccount.Owner, "", domain.OrderStatusOpen, 10, 2)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestStatsForOwner(t *testing.T) {
	testAccount := randomAccount(1, "1000")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	accountService := accountdelivery.NewMockService(ctrl)
	orderService := New(repo, accountService, testTTL)

	accountService.EXPECT().GetByOwner(gomock.Any(), gomock.Eq(testAccount.Owner)).
		Times(1).
		Return(testAccount, nil)

	repo.EXPECT().TradeStats(gomock.Any(), gomock.Eq(testAccount.ID)).
		Times(1).
		Return(domain.TradeStats{
			TotalEarned:      "150.5",
			TotalSpent:       "50.5",
			TransactionCount: 3,
		}, nil)

	stats, err := orderService.StatsForOwner(context.Background(), testAccount.Owner)
	require.NoError(t, err)
	require.Equal(t, "100", stats.NetProfit)
	require.Equal(t, int64(3), stats.TransactionCount)
}
