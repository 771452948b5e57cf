package pooldelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/wattshare/energy-exchange/internal/accountdelivery"
	"github.com/wattshare/energy-exchange/internal/domain"
	"github.com/wattshare/energy-exchange/internal/middleware"
	"github.com/wattshare/energy-exchange/pkg/randompkg"
	"github.com/wattshare/energy-exchange/pkg/tokenpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("kwh", accountdelivery.ValidKwh); err != nil {
			os.Exit(1)
		}
	}

	os.Exit(m.Run())
}

func newTestServer(t *testing.T, poolService *MockService) (*gin.Engine, tokenpkg.Maker) {
	tokenMaker, err := tokenpkg.New("paseto", randompkg.String(32))
	require.NoError(t, err)

	poolHandler := NewHandler(poolService)

	server := gin.New()

	server.GET("/pool", poolHandler.Status)
	server.GET("/pool/transactions", poolHandler.ListTransactions)

	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(tokenMaker))
	authRoutes.POST("/pool/deposits", poolHandler.Deposit)
	authRoutes.POST("/pool/releases", poolHandler.Release)
	authRoutes.PUT("/pool/price", poolHandler.SetPrice)

	return server, tokenMaker
}

func TestStatusAPI(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	poolService := NewMockService(ctrl)
	server, _ := newTestServer(t, poolService)

	poolService.EXPECT().Status(gomock.Any()).
		Times(1).
		Return(domain.Pool{TotalStoredKwh: "120.5", UnitPrice: "0.15"}, nil)

	recorder := httptest.NewRecorder()

	req, err := http.NewRequest(http.MethodGet, "/pool", nil)
	require.NoError(t, err)

	server.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestDepositAPI(t *testing.T) {
	testUsername := randompkg.Owner()
	testAmount := "25"

	testCases := []struct {
		name          string
		requestBody   gin.H
		setupAuth     func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs    func(poolService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "NoAuthorization",
			requestBody: gin.H{"amount": testAmount},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
			},
			buildStubs: func(poolService *MockService) {
				poolService.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name:        "InvalidBindAmount",
			requestBody: gin.H{"amount": "abc"},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, testUsername, time.Minute)
			},
			buildStubs: func(poolService *MockService) {
				poolService.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "InsufficientBalance",
			requestBody: gin.H{"amount": testAmount},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, testUsername, time.Minute)
			},
			buildStubs: func(poolService *MockService) {
				poolService.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(testUsername), gomock.Eq(testAmount)).
					Times(1).
					Return(domain.PoolTxResult{}, domain.ErrInsufficientBalance)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "OK",
			requestBody: gin.H{"amount": testAmount},
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthorizationTypeBearer, testUsername, time.Minute)
			},
			buildStubs: func(poolService *MockService) {
				poolService.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(testUsername), gomock.Eq(testAmount)).
					Times(1).
					Return(domain.PoolTxResult{
						Transaction: domain.PoolTransaction{
							Kind:      domain.PoolTxDeposit,
							AmountKwh: testAmount,
						},
					}, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusCreated, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			poolService := NewMockService(ctrl)
			server, tokenMaker := newTestServer(t, poolService)

			tc.buildStubs(poolService)

			recorder := httptest.NewRecorder()

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/pool/deposits", bytes.NewReader(body))
			require.NoError(t, err)

			tc.setupAuth(t, req, tokenMaker)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}

func TestReleaseAPI(t *testing.T) {
	testUsername := randompkg.Owner()
	testAmount := "25"

	testCases := []struct {
		name          string
		buildStubs    func(poolService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "InsufficientPoolEnergy",
			buildStubs: func(poolService *MockService) {
				poolService.EXPECT().
					Release(gomock.Any(), gomock.Eq(testUsername), gomock.Eq(testAmount)).
					Times(1).
					Return(domain.PoolTxResult{}, domain.ErrInsufficientPoolEnergy)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "OK",
			buildStubs: func(poolService *MockService) {
				poolService.EXPECT().
					Release(gomock.Any(), gomock.Eq(testUsername), gomock.Eq(testAmount)).
					Times(1).
					Return(domain.PoolTxResult{
						Transaction: domain.PoolTransaction{
							Kind:      domain.PoolTxRelease,
							AmountKwh: testAmount,
						},
					}, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusCreated, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			poolService := NewMockService(ctrl)
			server, tokenMaker := newTestServer(t, poolService)

			tc.buildStubs(poolService)

			recorder := httptest.NewRecorder()

			body, err := json.Marshal(gin.H{"amount": testAmount})
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/pool/releases", bytes.NewReader(body))
			require.NoError(t, err)

			middleware.AddAuthorization(t, req, tokenMaker, middleware.AuthorizationTypeBearer, testUsername, time.Minute)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}

func TestSetPriceAPI(t *testing.T) {
	testUsername := randompkg.Owner()

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(poolService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "InvalidPrice",
			requestBody: gin.H{"unit_price": "-0.15"},
			buildStubs: func(poolService *MockService) {
				poolService.EXPECT().
					SetUnitPrice(gomock.Any(), gomock.Eq("-0.15")).
					Times(1).
					Return(domain.Pool{}, domain.ErrInvalidPrice)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "OK",
			requestBody: gin.H{"unit_price": "0.25"},
			buildStubs: func(poolService *MockService) {
				poolService.EXPECT().
					SetUnitPrice(gomock.Any(), gomock.Eq("0.25")).
					Times(1).
					Return(domain.Pool{UnitPrice: "0.25"}, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			poolService := NewMockService(ctrl)
			server, tokenMaker := newTestServer(t, poolService)

			tc.buildStubs(poolService)

			recorder := httptest.NewRecorder()

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPut, "/pool/price", bytes.NewReader(body))
			require.NoError(t, err)

			middleware.AddAuthorization(t, req, tokenMaker, middleware.AuthorizationTypeBearer, testUsername, time.Minute)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}

func TestListTransactionsAPI(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	poolService := NewMockService(ctrl)
	server, _ := newTestServer(t, poolService)

	poolService.EXPECT().
		ListTransactions(gomock.Any(), gomock.Eq("deposit"), gomock.Eq(int32(10)), gomock.Eq(int32(1))).
		Times(1).
		Return([]domain.PoolTransaction{{ID: 1, Kind: domain.PoolTxDeposit}}, int64(1), nil)

	recorder := httptest.NewRecorder()

	req, err := http.NewRequest(http.MethodGet, "/pool/transactions?type=deposit&page_id=1&page_size=10", nil)
	require.NoError(t, err)

	server.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)
}
