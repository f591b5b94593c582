// Package http exposes invoices and line items over gin routes.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-market-api-server/internal/domains/billing/application"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/billing/ports"
	sharederrors "github.com/Apurer/go-market-api-server/internal/shared/errors"
)

// Handler serves the invoice and line item endpoints. Confirmation goes
// through the orchestrator so it can run durably when a workflow engine
// is configured.
type Handler struct {
	service      ports.Service
	orchestrator ports.ConfirmationOrchestrator
	responder    *sharederrors.ChainedResponder
}

func NewHandler(service ports.Service, orchestrator ports.ConfirmationOrchestrator, responder *sharederrors.ChainedResponder) *Handler {
	if responder == nil {
		responder = sharederrors.NewChainedResponder("", ErrorMapper)
	}
	return &Handler{service: service, orchestrator: orchestrator, responder: responder}
}

// Register mounts the invoice routes on the router.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/invoice/header", h.createInvoice)
	router.GET("/invoice/header", h.listInvoices)
	router.GET("/invoice/header/:invoiceNumber", h.getInvoice)
	router.PUT("/invoice/header/:invoiceNumber", h.updateInvoice)
	router.DELETE("/invoice/header/:invoiceNumber", h.deleteInvoice)
	router.PUT("/invoice/header/:invoiceNumber/payment/:paymentMethod", h.changePaymentMethod)
	router.PUT("/invoice/header/:invoiceNumber/confirm", h.confirmInvoice)

	router.POST("/invoice/item", h.addLineItem)
	router.GET("/invoice/item", h.listAllLineItems)
	router.GET("/invoice/items/:invoiceNumber", h.listLineItems)
	router.GET("/invoice/item/:sequence/:invoiceNumber", h.getLineItem)
	router.DELETE("/invoice/item/:sequence/:invoiceNumber", h.removeLineItem)
}

// ErrorMapper translates billing errors into problem details.
func ErrorMapper(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrInvoiceNotFound):
		return sharederrors.NewNotFoundProblem("invoice", nil), true
	case errors.Is(err, ports.ErrLineItemNotFound):
		return sharederrors.NewNotFoundProblem("line item", nil), true
	case errors.Is(err, domain.ErrAlreadyConfirmed), errors.Is(err, domain.ErrInvoiceNotOpen):
		return sharederrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, domain.ErrNonPositiveTotal), errors.Is(err, domain.ErrPaymentMethodRequired):
		return sharederrors.ErrUnprocessable.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return sharederrors.ProblemDetail{}, false
	}
}

type invoicePayload struct {
	OperationTypeID int64   `json:"operationTypeId"`
	CustomerCPF     *string `json:"customerCpf"`
	PaymentMethodID *int64  `json:"paymentMethodId"`
}

type invoiceResponse struct {
	Number          int64           `json:"number"`
	CustomerCPF     *string         `json:"customerCpf,omitempty"`
	PaymentMethodID *int64          `json:"paymentMethodId,omitempty"`
	OperationTypeID int64           `json:"operationTypeId"`
	Confirmed       bool            `json:"confirmed"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func toInvoiceResponse(invoice *domain.Invoice) invoiceResponse {
	return invoiceResponse{
		Number:          invoice.Number,
		CustomerCPF:     invoice.CustomerCPF,
		PaymentMethodID: invoice.PaymentMethodID,
		OperationTypeID: invoice.OperationTypeID,
		Confirmed:       invoice.Confirmed,
		TotalAmount:     invoice.TotalAmount,
		CreatedAt:       invoice.CreatedAt,
	}
}

func (h *Handler) createInvoice(c *gin.Context) {
	var payload invoicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	invoice, err := h.service.CreateInvoice(c.Request.Context(), ports.InvoiceInput{
		OperationTypeID: payload.OperationTypeID,
		CustomerCPF:     payload.CustomerCPF,
		PaymentMethodID: payload.PaymentMethodID,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toInvoiceResponse(invoice))
}

func (h *Handler) listInvoices(c *gin.Context) {
	invoices, err := h.service.ListInvoices(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	responses := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		responses = append(responses, toInvoiceResponse(invoice))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) getInvoice(c *gin.Context) {
	number, ok := h.int64Param(c, "invoiceNumber")
	if !ok {
		return
	}
	invoice, err := h.service.GetInvoice(c.Request.Context(), number)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

func (h *Handler) updateInvoice(c *gin.Context) {
	number, ok := h.int64Param(c, "invoiceNumber")
	if !ok {
		return
	}
	var payload invoicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	invoice, err := h.service.UpdateInvoice(c.Request.Context(), number, ports.InvoiceInput{
		OperationTypeID: payload.OperationTypeID,
		CustomerCPF:     payload.CustomerCPF,
		PaymentMethodID: payload.PaymentMethodID,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	number, ok := h.int64Param(c, "invoiceNumber")
	if !ok {
		return
	}
	if err := h.service.DeleteInvoice(c.Request.Context(), number); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) changePaymentMethod(c *gin.Context) {
	number, ok := h.int64Param(c, "invoiceNumber")
	if !ok {
		return
	}
	paymentMethodID, ok := h.int64Param(c, "paymentMethod")
	if !ok {
		return
	}
	invoice, err := h.service.ChangePaymentMethod(c.Request.Context(), number, paymentMethodID)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

func (h *Handler) confirmInvoice(c *gin.Context) {
	number, ok := h.int64Param(c, "invoiceNumber")
	if !ok {
		return
	}
	invoice, err := h.orchestrator.ConfirmInvoice(c.Request.Context(), number)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

type lineItemPayload struct {
	InvoiceNumber int64           `json:"invoiceNumber"`
	BarCode       int64           `json:"barCode"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type lineItemResponse struct {
	InvoiceNumber int64           `json:"invoiceNumber"`
	Sequence      int64           `json:"sequence"`
	ProductID     uuid.UUID       `json:"productId"`
	Quantity      decimal.Decimal `json:"quantity"`
}

func toLineItemResponse(item *domain.LineItem) lineItemResponse {
	return lineItemResponse{
		InvoiceNumber: item.InvoiceNumber,
		Sequence:      item.Sequence,
		ProductID:     item.ProductID,
		Quantity:      item.Quantity,
	}
}

func (h *Handler) addLineItem(c *gin.Context) {
	var payload lineItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	item, err := h.service.AddLineItem(c.Request.Context(), payload.InvoiceNumber, ports.LineItemInput{
		BarCode:  payload.BarCode,
		Quantity: payload.Quantity,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLineItemResponse(item))
}

func (h *Handler) listAllLineItems(c *gin.Context) {
	items, err := h.service.ListAllLineItems(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLineItemResponses(items))
}

func (h *Handler) listLineItems(c *gin.Context) {
	number, ok := h.int64Param(c, "invoiceNumber")
	if !ok {
		return
	}
	items, err := h.service.ListLineItems(c.Request.Context(), number)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLineItemResponses(items))
}

func (h *Handler) getLineItem(c *gin.Context) {
	number, ok := h.int64Param(c, "invoiceNumber")
	if !ok {
		return
	}
	sequence, ok := h.int64Param(c, "sequence")
	if !ok {
		return
	}
	item, err := h.service.GetLineItem(c.Request.Context(), number, sequence)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLineItemResponse(item))
}

func (h *Handler) removeLineItem(c *gin.Context) {
	number, ok := h.int64Param(c, "invoiceNumber")
	if !ok {
		return
	}
	sequence, ok := h.int64Param(c, "sequence")
	if !ok {
		return
	}
	if err := h.service.RemoveLineItem(c.Request.Context(), number, sequence); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toLineItemResponses(items []*domain.LineItem) []lineItemResponse {
	responses := make([]lineItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toLineItemResponse(item))
	}
	return responses
}

func (h *Handler) int64Param(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		h.responder.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return value, true
}
