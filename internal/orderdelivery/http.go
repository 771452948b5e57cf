// Package orderdelivery manages delivery layer of sell orders.
package orderdelivery

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

// Service provides service layer interface needed by order delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package orderdelivery
type Service interface {
	Create(ctx context.Context, sellerOwner, amount, price string) (domain.OrderTxResult, error)
	Buy(ctx context.Context, buyerOwner string, orderID int64) (domain.OrderTxResult, error)
	Cancel(ctx context.Context, sellerOwner string, orderID int64) (domain.OrderTxResult, error)
	ListOpen(ctx context.Context) ([]domain.Order, error)
	ListForOwner(ctx context.Context, owner, role, status string, pageSize, pageID int32) ([]domain.Order, error)
	ListRecentCompleted(ctx context.Context, limit int32) ([]domain.Order, error)
	StatsForOwner(ctx context.Context, owner string) (domain.TradeStats, error)
}

// Handler facilitates order delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns order handler.
func NewHandler(os Service) *Handler {
	return &Handler{
		service: os,
	}
}

type data struct {
	Order domain.OrderTxResult `json:"order"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type dataOrders struct {
	Orders []domain.Order `json:"orders"`
}

type responseOrders struct {
	Data dataOrders `json:"data,omitempty"`
}

type createRequest struct {
	EnergyAmount string `json:"energy_amount" binding:"required,kwh"`
	PricePerUnit string `json:"price_per_unit" binding:"required"`
}

// Create handles http request to create a sell order.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	result, err := h.service.Create(ctx, authPayload.Username, req.EnergyAmount, req.PricePerUnit)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case
			domain.ErrInvalidAmount,
			domain.ErrInvalidPrice,
			domain.ErrInsufficientBalance:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusCreated, response{Data: data{result}})
}

type orderURIRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Buy handles http request to buy an open order.
func (h *Handler) Buy(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri orderURIRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	result, err := h.service.Buy(ctx, authPayload.Username, uri.ID)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrOrderNotFound, domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrOrderNotAvailable:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrOrderExpired:
			gctx.JSON(http.StatusGone, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{result}})
}

// Cancel handles http request to cancel the caller's open order.
func (h *Handler) Cancel(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri orderURIRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	result, err := h.service.Cancel(ctx, authPayload.Username, uri.ID)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case domain.ErrOrderNotFound, domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrOrderNotAvailable:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{result}})
}

// ListOpen handles http request to list all open orders.
func (h *Handler) ListOpen(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	orders, err := h.service.ListOpen(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseOrders{Data: dataOrders{orders}})
}

type listMineRequest struct {
	Role     string `form:"role" binding:"omitempty,oneof=seller buyer any"`
	Status   string `form:"status" binding:"omitempty,oneof=open completed cancelled expired"`
	PageID   int32  `form:"page_id" binding:"required,min=1"`
	PageSize int32  `form:"page_size" binding:"required,min=1,max=100"`
}

// ListMine handles http request to list the caller's orders.
func (h *Handler) ListMine(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listMineRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	orders, err := h.service.ListForOwner(ctx, authPayload.Username, req.Role, req.Status, req.PageSize, req.PageID)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, responseOrders{Data: dataOrders{orders}})
}

type listRecentRequest struct {
	Limit int32 `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
}

// ListRecent handles http request to list recent completed trades.
func (h *Handler) ListRecent(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRecentRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	orders, err := h.service.ListRecentCompleted(ctx, req.Limit)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseOrders{Data: dataOrders{orders}})
}

type dataStats struct {
	Stats domain.TradeStats `json:"stats"`
}

// Stats handles http request for the caller's earned/spent totals.
func (h *Handler) Stats(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	stats, err := h.service.StatsForOwner(ctx, authPayload.Username)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataStats{stats}})
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return err.Error()
}
