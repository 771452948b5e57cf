// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/wattshare/energy-exchange/internal/accountdelivery"
	"github.com/wattshare/energy-exchange/internal/accountrepo"
	"github.com/wattshare/energy-exchange/internal/accountservice"
	"github.com/wattshare/energy-exchange/internal/middleware"
	"github.com/wattshare/energy-exchange/internal/orderdelivery"
	"github.com/wattshare/energy-exchange/internal/orderrepo"
	"github.com/wattshare/energy-exchange/internal/orderservice"
	"github.com/wattshare/energy-exchange/internal/pooldelivery"
	"github.com/wattshare/energy-exchange/internal/poolrepo"
	"github.com/wattshare/energy-exchange/internal/poolservice"
	"github.com/wattshare/energy-exchange/internal/userdelivery"
	"github.com/wattshare/energy-exchange/internal/userrepo"
	"github.com/wattshare/energy-exchange/internal/userservice"
	"github.com/wattshare/energy-exchange/pkg/configpkg"
	"github.com/wattshare/energy-exchange/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)
	orderRepo := orderrepo.NewRepoPGS(conn)
	poolRepo := poolrepo.NewRepoPGS(conn, config.PoolDefaultPrice)

	tokenMaker, err := tokenpkg.New(config.TokenScheme, config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo)
	orderService := orderservice.New(orderRepo, accountService, config.OrderTTL)
	poolService := poolservice.New(poolRepo, accountService)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	accountHandler := accountdelivery.NewHandler(accountService)
	orderHandler := orderdelivery.NewHandler(orderService)
	poolHandler := pooldelivery.NewHandler(poolService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Metrics())
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	engine.GET("/orders", orderHandler.ListOpen)
	engine.GET("/orders/recent", orderHandler.ListRecent)

	engine.GET("/pool", poolHandler.Status)
	engine.GET("/pool/transactions", poolHandler.ListTransactions)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.POST("/accounts/:id/credit", accountHandler.Credit)
	authRoutes.POST("/accounts/:id/disable", accountHandler.Disable)

	authRoutes.POST("/orders", orderHandler.Create)
	authRoutes.GET("/orders/mine", orderHandler.ListMine)
	authRoutes.GET("/orders/stats", orderHandler.Stats)
	authRoutes.POST("/orders/:id/buy", orderHandler.Buy)
	authRoutes.POST("/orders/:id/cancel", orderHandler.Cancel)

	authRoutes.POST("/pool/deposits", poolHandler.Deposit)
	authRoutes.POST("/pool/releases", poolHandler.Release)
	authRoutes.PUT("/pool/price", poolHandler.SetPrice)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("kwh", accountdelivery.ValidKwh)
		if err != nil {
			return nil, errors.New("cannot register kwh validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
