// Package http exposes the catalog reference data over gin routes.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-market-api-server/internal/domains/catalog/application"
	"github.com/Apurer/go-market-api-server/internal/domains/catalog/domain"
	"github.com/Apurer/go-market-api-server/internal/domains/catalog/ports"
	sharederrors "github.com/Apurer/go-market-api-server/internal/shared/errors"
)

// Handler serves the catalog CRUD endpoints.
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

// Register mounts the catalog routes on the router.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/products", h.createProduct)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.PUT("/products/:id", h.updateProduct)
	router.DELETE("/products/:id", h.deleteProduct)

	router.POST("/opts", h.createOperationType)
	router.GET("/opts", h.listOperationTypes)
	router.GET("/opts/:id", h.getOperationType)
	router.PUT("/opts/:id", h.updateOperationType)
	router.DELETE("/opts/:id", h.deleteOperationType)

	router.POST("/paymentMethod", h.createPaymentMethod)
	router.GET("/paymentMethod", h.listPaymentMethods)
	router.GET("/paymentMethod/:id", h.getPaymentMethod)
	router.PUT("/paymentMethod/:id", h.updatePaymentMethod)
	router.DELETE("/paymentMethod/:id", h.deletePaymentMethod)

	router.POST("/customers", h.createCustomer)
	router.GET("/customers", h.listCustomers)
	router.GET("/customers/:cpf", h.getCustomer)
	router.PUT("/customers/:cpf", h.updateCustomer)
	router.DELETE("/customers/:cpf", h.deleteCustomer)
}

// ErrorMapper translates catalog errors into problem details.
func ErrorMapper(err error) (sharederrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrProductNotFound):
		return sharederrors.NewNotFoundProblem("product", nil), true
	case errors.Is(err, ports.ErrOperationTypeNotFound):
		return sharederrors.NewNotFoundProblem("operation type", nil), true
	case errors.Is(err, ports.ErrPaymentMethodNotFound):
		return sharederrors.NewNotFoundProblem("payment method", nil), true
	case errors.Is(err, ports.ErrCustomerNotFound):
		return sharederrors.NewNotFoundProblem("customer", nil), true
	case errors.Is(err, ports.ErrCustomerExists):
		return sharederrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, domain.ErrProductInactive), errors.Is(err, domain.ErrOperationTypeInactive):
		return sharederrors.ErrUnprocessable.WithDetail(err.Error()), true
	default:
		return sharederrors.ProblemDetail{}, false
	}
}

type productPayload struct {
	Name      string          `json:"name"`
	BarCode   int64           `json:"barCode"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Weight    decimal.Decimal `json:"weight"`
	Active    bool            `json:"active"`
}

type productResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	BarCode   int64           `json:"barCode"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Weight    decimal.Decimal `json:"weight"`
	Active    bool            `json:"active"`
}

func toProductResponse(product *domain.Product) productResponse {
	return productResponse{
		ID:        product.ID,
		Name:      product.Name,
		BarCode:   product.BarCode,
		UnitPrice: product.UnitPrice,
		Weight:    product.Weight,
		Active:    product.Active,
	}
}

func (h *Handler) createProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	product, err := h.service.CreateProduct(c.Request.Context(), ports.ProductInput{
		Name:      payload.Name,
		BarCode:   payload.BarCode,
		UnitPrice: payload.UnitPrice,
		Weight:    payload.Weight,
		Active:    payload.Active,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	responses := make([]productResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, toProductResponse(product))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.responder.BadRequest(c, "invalid product id")
		return
	}
	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.responder.BadRequest(c, "invalid product id")
		return
	}
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	product, err := h.service.UpdateProduct(c.Request.Context(), id, ports.ProductInput{
		Name:      payload.Name,
		BarCode:   payload.BarCode,
		UnitPrice: payload.UnitPrice,
		Weight:    payload.Weight,
		Active:    payload.Active,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.responder.BadRequest(c, "invalid product id")
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type operationTypePayload struct {
	Kind         string `json:"kind"`
	UpdatesStock bool   `json:"updatesStock"`
	Active       bool   `json:"active"`
}

type operationTypeResponse struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	UpdatesStock bool   `json:"updatesStock"`
	Active       bool   `json:"active"`
}

func toOperationTypeResponse(operationType *domain.OperationType) operationTypeResponse {
	return operationTypeResponse{
		ID:           operationType.ID,
		Kind:         string(operationType.Kind),
		UpdatesStock: operationType.UpdatesStock,
		Active:       operationType.Active,
	}
}

func (h *Handler) createOperationType(c *gin.Context) {
	var payload operationTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	operationType, err := h.service.CreateOperationType(c.Request.Context(), ports.OperationTypeInput{
		Kind:         domain.OperationKind(payload.Kind),
		UpdatesStock: payload.UpdatesStock,
		Active:       payload.Active,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOperationTypeResponse(operationType))
}

func (h *Handler) listOperationTypes(c *gin.Context) {
	operationTypes, err := h.service.ListOperationTypes(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	responses := make([]operationTypeResponse, 0, len(operationTypes))
	for _, operationType := range operationTypes {
		responses = append(responses, toOperationTypeResponse(operationType))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) getOperationType(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	operationType, err := h.service.GetOperationType(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOperationTypeResponse(operationType))
}

func (h *Handler) updateOperationType(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var payload operationTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	operationType, err := h.service.UpdateOperationType(c.Request.Context(), id, ports.OperationTypeInput{
		Kind:         domain.OperationKind(payload.Kind),
		UpdatesStock: payload.UpdatesStock,
		Active:       payload.Active,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOperationTypeResponse(operationType))
}

func (h *Handler) deleteOperationType(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteOperationType(c.Request.Context(), id); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type paymentMethodPayload struct {
	Type       string   `json:"type"`
	CardBrands []string `json:"cardBrands"`
}

type paymentMethodResponse struct {
	ID         int64    `json:"id"`
	Type       string   `json:"type"`
	CardBrands []string `json:"cardBrands"`
}

func toPaymentMethodResponse(paymentMethod *domain.PaymentMethod) paymentMethodResponse {
	return paymentMethodResponse{
		ID:         paymentMethod.ID,
		Type:       paymentMethod.Type,
		CardBrands: paymentMethod.CardBrands,
	}
}

func (h *Handler) createPaymentMethod(c *gin.Context) {
	var payload paymentMethodPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	paymentMethod, err := h.service.CreatePaymentMethod(c.Request.Context(), ports.PaymentMethodInput{
		Type:       payload.Type,
		CardBrands: payload.CardBrands,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPaymentMethodResponse(paymentMethod))
}

func (h *Handler) listPaymentMethods(c *gin.Context) {
	paymentMethods, err := h.service.ListPaymentMethods(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	responses := make([]paymentMethodResponse, 0, len(paymentMethods))
	for _, paymentMethod := range paymentMethods {
		responses = append(responses, toPaymentMethodResponse(paymentMethod))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) getPaymentMethod(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	paymentMethod, err := h.service.GetPaymentMethod(c.Request.Context(), id)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentMethodResponse(paymentMethod))
}

func (h *Handler) updatePaymentMethod(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	var payload paymentMethodPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	paymentMethod, err := h.service.UpdatePaymentMethod(c.Request.Context(), id, ports.PaymentMethodInput{
		Type:       payload.Type,
		CardBrands: payload.CardBrands,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentMethodResponse(paymentMethod))
}

func (h *Handler) deletePaymentMethod(c *gin.Context) {
	id, ok := h.int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePaymentMethod(c.Request.Context(), id); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type customerPayload struct {
	CPF       string    `json:"cpf"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birthDate"`
}

type customerResponse struct {
	CPF          string    `json:"cpf"`
	Name         string    `json:"name"`
	BirthDate    time.Time `json:"birthDate"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func toCustomerResponse(customer *domain.Customer) customerResponse {
	return customerResponse{
		CPF:          customer.CPF,
		Name:         customer.Name,
		BirthDate:    customer.BirthDate,
		RegisteredAt: customer.RegisteredAt,
	}
}

func (h *Handler) createCustomer(c *gin.Context) {
	var payload customerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	customer, err := h.service.CreateCustomer(c.Request.Context(), ports.CustomerInput{
		CPF:       payload.CPF,
		Name:      payload.Name,
		BirthDate: payload.BirthDate,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(customer))
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.service.ListCustomers(c.Request.Context())
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	responses := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, toCustomerResponse(customer))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) getCustomer(c *gin.Context) {
	customer, err := h.service.GetCustomer(c.Request.Context(), c.Param("cpf"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func (h *Handler) updateCustomer(c *gin.Context) {
	var payload customerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	customer, err := h.service.UpdateCustomer(c.Request.Context(), c.Param("cpf"), ports.CustomerInput{
		CPF:       c.Param("cpf"),
		Name:      payload.Name,
		BirthDate: payload.BirthDate,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	if err := h.service.DeleteCustomer(c.Request.Context(), c.Param("cpf")); err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) int64Param(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		h.responder.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return value, true
}
