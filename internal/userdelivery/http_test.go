package userdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/wattshare/energy-exchange/internal/domain"
	"github.com/wattshare/energy-exchange/pkg/randompkg"
	"github.com/wattshare/energy-exchange/pkg/tokenpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, userService *MockService) *gin.Engine {
	tokenMaker, err := tokenpkg.New("paseto", randompkg.String(32))
	require.NoError(t, err)

	userHandler := NewHandler(userService, tokenMaker, time.Minute)

	server := gin.New()
	server.POST("/users", userHandler.Create)
	server.POST("/users/login", userHandler.Login)

	return server
}

func randomUser() domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		Username:  randompkg.Owner(),
		FullName:  randompkg.Owner(),
		Email:     randompkg.Email(),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreateUserAPI(t *testing.T) {
	testUser := randomUser()
	testPassword := randompkg.String(10)

	testAccount := domain.Account{
		ID:      1,
		Owner:   testUser.Username,
		Balance: "0",
	}

	testCases := []struct {
		name          string
		requestBody   gin.H
		buildStubs    func(userService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "InvalidEmail",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  testPassword,
				"full_name": testUser.FullName,
				"email":     "not-an-email",
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "ShortPassword",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  "123",
				"full_name": testUser.FullName,
				"email":     testUser.Email,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "UsernameAlreadyExists",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  testPassword,
				"full_name": testUser.FullName,
				"email":     testUser.Email,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Register(gomock.Any(), gomock.Eq(testUser.Username), gomock.Eq(testPassword),
						gomock.Eq(testUser.FullName), gomock.Eq(testUser.Email)).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.Account{}, domain.ErrUsernameAlreadyExists)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name: "OK",
			requestBody: gin.H{
				"username":  testUser.Username,
				"password":  testPassword,
				"full_name": testUser.FullName,
				"email":     testUser.Email,
			},
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					Register(gomock.Any(), gomock.Eq(testUser.Username), gomock.Eq(testPassword),
						gomock.Eq(testUser.FullName), gomock.Eq(testUser.Email)).
					Times(1).
					Return(testUser, testAccount, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Contains(t, recorder.Body.String(), "access_token")
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userService := NewMockService(ctrl)
			server := newTestServer(t, userService)

			tc.buildStubs(userService)

			recorder := httptest.NewRecorder()

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
			require.NoError(t, err)

			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}

func TestLoginAPI(t *testing.T) {
	testUser := randomUser()
	testPassword := randompkg.String(10)

	testCases := []struct {
		name          string
		buildStubs    func(userService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "UserNotFound",
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(testUser.Username), gomock.Eq(testPassword)).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrUserNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "WrongPassword",
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(testUser.Username), gomock.Eq(testPassword)).
					Times(1).
					Return(domain.UserWithoutPassword{}, domain.ErrWrongPassword)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "OK",
			buildStubs: func(userService *MockService) {
				userService.EXPECT().
					CheckPassword(gomock.Any(), gomock.Eq(testUser.Username), gomock.Eq(testPassword)).
					Times(1).
					Return(testUser, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Contains(t, recorder.Body.String(), "access_token")
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userService := NewMockService(ctrl)
			server := newTestServer(t, userService)

			tc.buildStubs(userService)

			recorder := httptest.NewRecorder()

			body, err := json.Marshal(gin.H{
				"username": testUser.Username,
				"password": testPassword,
			})
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(body))
			require.NoError(t, err)

			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}
