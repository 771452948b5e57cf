// Package pooldelivery manages delivery layer of the community pool.
package pooldelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/wattshare/energy-exchange/internal/domain"
	"github.com/wattshare/energy-exchange/internal/middleware"
	"github.com/wattshare/energy-exchange/pkg/errorspkg"
	"github.com/wattshare/energy-exchange/pkg/tokenpkg"
	"github.com/wattshare/energy-exchange/pkg/web"
)

// Service provides service layer interface needed by pool delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package pooldelivery
type Service interface {
	Status(ctx context.Context) (domain.Pool, error)
	Deposit(ctx context.Context, owner, amount string) (domain.PoolTxResult, error)
	Release(ctx context.Context, owner, amount string) (domain.PoolTxResult, error)
	SetUnitPrice(ctx context.Context, price string) (domain.Pool, error)
	ListTransactions(ctx context.Context, kind string, pageSize, pageID int32) ([]domain.PoolTransaction, int64, error)
}

// Handler facilitates pool delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns pool handler.
func NewHandler(ps Service) *Handler {
	return &Handler{
		service: ps,
	}
}

type dataPool struct {
	Pool domain.Pool `json:"pool"`
}

type dataSettlement struct {
	Settlement domain.PoolTxResult `json:"settlement"`
}

// Status handles http request for the pool status, lazily creating the pool.
func (h *Handler) Status(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	pool, err := h.service.Status(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataPool{pool}})
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,kwh"`
}

// Deposit handles http request to deposit energy into the pool.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.settle(gctx, h.service.Deposit)
}

// Release handles http request to release energy from the pool.
func (h *Handler) Release(gctx *gin.Context) {
	h.settle(gctx, h.service.Release)
}

func (h *Handler) settle(gctx *gin.Context, op func(context.Context, string, string) (domain.PoolTxResult, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	result, err := op(ctx, authPayload.Username, req.Amount)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case
			domain.ErrInvalidAmount,
			domain.ErrInsufficientBalance,
			domain.ErrInsufficientPoolEnergy:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: dataSettlement{result}})
}

type setPriceRequest struct {
	UnitPrice string `json:"unit_price" binding:"required"`
}

// SetPrice handles http request to change the pool's unit price.
func (h *Handler) SetPrice(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req setPriceRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	pool, err := h.service.SetUnitPrice(ctx, req.UnitPrice)
	if err != nil {
		if err == domain.ErrInvalidPrice {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataPool{pool}})
}

type listTransactionsRequest struct {
	Kind     string `form:"type" binding:"omitempty,oneof=deposit release"`
	PageID   int32  `form:"page_id" binding:"required,min=1"`
	PageSize int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type dataTransactions struct {
	Transactions []domain.PoolTransaction `json:"transactions"`
	TotalRecords int64                    `json:"total_records"`
	Page         int32                    `json:"page"`
}

// ListTransactions handles http request for the pool's merged history.
func (h *Handler) ListTransactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listTransactionsRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	transactions, total, err := h.service.ListTransactions(ctx, req.Kind, req.PageSize, req.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	res := dataTransactions{
		Transactions: transactions,
		TotalRecords: total,
		Page:         req.PageID,
	}

	gctx.JSON(http.StatusOK, web.Response{Data: res})
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return err.Error()
}
