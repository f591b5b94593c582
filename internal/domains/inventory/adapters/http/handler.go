// Package http exposes stock levels over gin routes.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Apurer/go-market-api-server/internal/domains/inventory/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/inventory/ports"
	sharederrors "github.com/Apurer/go-market-api-server/internal/shared/errors"
)

// Handler serves the stock endpoints.
type Handler struct {
	service   ports.Service
	responder *sharederrors.ChainedResponder
}

func NewHandler(service ports.Service, responder *sharederrors.ChainedResponder) *Handler {
	if responder == nil {
		responder = sharederrors.NewChainedResponder("", ErrorMapper)
	}
	return &Handler{service: service, responder: responder}
}

// Register mounts the stock routes on the router.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/stock", h.createStock)
	router.GET("/stock", h.listStock)
	router.GET("/stock/:idProduct", h.getStock)
	router.PUT("/stock/:idProduct", h.setStock)
	router.DELETE("/stock/:idProduct", h.deleteStock)
}

// ErrorMapper translates inventory errors into problem details.
func ErrorMapper(err error) (sharederrors.ProblemDetail, bool) {
	var insufficient domain.InsufficientStockError
	var missing domain.StockRecordMissingError
	switch {
	case errors.Is(err, ports.ErrStockNotFound):
		return sharederrors.NewNotFoundProblem("stock", nil), true
	case errors.Is(err, ports.ErrStockExists):
		return sharederrors.ErrConflict.WithDetail(err.Error()), true
	case errors.As(err, &insufficient):
		return sharederrors.ErrUnprocessable.
			WithDetail(err.Error()).
			WithExtension("productId", insufficient.ProductID.String()), true
	case errors.As(err, &missing):
		return sharederrors.ErrUnprocessable.
			WithDetail(err.Error()).
			WithExtension("productId", missing.ProductID.String()), true
	case errors.Is(err, domain.ErrNegativeQuantity):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return sharederrors.ProblemDetail{}, false
	}
}

type stockPayload struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int64     `json:"quantity"`
}

type stockResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toStockResponse(stock *domain.Stock) stockResponse {
	return stockResponse{
		ProductID: stock.ProductID,
		Quantity:  stock.Quantity,
		UpdatedAt: stock.UpdatedAt,
	}
}

func (h *Handler) createStock(c *gin.Context) {
	var payload stockPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	stock, err := h.service.CreateStock(c.Request.Context(), payload.ProductID, payload.Quantity)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStockResponse(stock))
}

func (h *Handler) listStock(c *gin.Context) {
	levels, err := h.service.ListStock(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	responses := make([]stockResponse, 0, len(levels))
	for _, stock := range levels {
		responses = append(responses, toStockResponse(stock))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) getStock(c *gin.Context) {
	productID, ok := h.productIDParam(c)
	if !ok {
		return
	}
	stock, err := h.service.GetStock(c.Request.Context(), productID)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStockResponse(stock))
}

// setStock overwrites the level with a counted quantity, for recounts
// and corrections outside the ledger.
func (h *Handler) setStock(c *gin.Context) {
	productID, ok := h.productIDParam(c)
	if !ok {
		return
	}
	var payload stockPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	stock, err := h.service.SetStock(c.Request.Context(), productID, payload.Quantity)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStockResponse(stock))
}

func (h *Handler) deleteStock(c *gin.Context) {
	productID, ok := h.productIDParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteStock(c.Request.Context(), productID); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) productIDParam(c *gin.Context) (uuid.UUID, bool) {
	productID, err := uuid.Parse(c.Param("idProduct"))
	if err != nil {
		h.responder.BadRequest(c, "invalid product id")
		return uuid.Nil, false
	}
	return productID, true
}
