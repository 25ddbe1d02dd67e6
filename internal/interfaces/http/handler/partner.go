package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/erpsync/backend/internal/application/partner"
)

// PartnerHandler serves the trading-partner endpoints: customers,
// salespeople and payment methods.
type PartnerHandler struct {
	BaseHandler
	customers    *partnerapp.CustomerService
	salespeople  *partnerapp.SalespersonService
	methods      *partnerapp.PaymentMethodService
	maxBatchSize int
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(
	customers *partnerapp.CustomerService,
	salespeople *partnerapp.SalespersonService,
	methods *partnerapp.PaymentMethodService,
	maxBatchSize int,
) *PartnerHandler {
	return &PartnerHandler{
		customers:    customers,
		salespeople:  salespeople,
		methods:      methods,
		maxBatchSize: maxBatchSize,
	}
}

// RegisterRoutes registers the partner routes
func (h *PartnerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	syncGroup := rg.Group("/sync")
	{
		syncGroup.POST("/customers", h.SyncCustomers)
		syncGroup.POST("/salespeople", h.SyncSalespeople)
		syncGroup.POST("/payment-methods", h.SyncPaymentMethods)
	}

	customers := rg.Group("/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.GET("/:code", h.GetCustomer)
		customers.DELETE("/:code", h.DeleteCustomer)
	}

	salespeople := rg.Group("/salespeople")
	{
		salespeople.GET("", h.ListSalespeople)
		salespeople.GET("/:code", h.GetSalesperson)
		salespeople.DELETE("/:code", h.DeleteSalesperson)
	}

	methods := rg.Group("/payment-methods")
	{
		methods.GET("", h.ListPaymentMethods)
		methods.GET("/:code", h.GetPaymentMethod)
		methods.DELETE("/:code", h.DeletePaymentMethod)
	}
}

type customerBatchRequest struct {
	Customers []partnerapp.CustomerInput `json:"CLIENTES"`
}

// SyncCustomers handles POST /sync/customers
func (h *PartnerHandler) SyncCustomers(c *gin.Context) {
	var req customerBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !h.checkBatch(c, len(req.Customers), h.maxBatchSize) {
		return
	}

	result, err := h.customers.Sync(c.Request.Context(), req.Customers)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "customers synchronized", result)
}

type salespersonBatchRequest struct {
	Salespeople []partnerapp.SalespersonInput `json:"VENDEDORES"`
}

// SyncSalespeople handles POST /sync/salespeople
func (h *PartnerHandler) SyncSalespeople(c *gin.Context) {
	var req salespersonBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !h.checkBatch(c, len(req.Salespeople), h.maxBatchSize) {
		return
	}

	result, err := h.salespeople.Sync(c.Request.Context(), req.Salespeople)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "salespeople synchronized", result)
}

type paymentMethodBatchRequest struct {
	PaymentMethods []partnerapp.PaymentMethodInput `json:"FORMASPAGO"`
}

// SyncPaymentMethods handles POST /sync/payment-methods
func (h *PartnerHandler) SyncPaymentMethods(c *gin.Context) {
	var req paymentMethodBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !h.checkBatch(c, len(req.PaymentMethods), h.maxBatchSize) {
		return
	}

	result, err := h.methods.Sync(c.Request.Context(), req.PaymentMethods)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "payment methods synchronized", result)
}

// GetCustomer handles GET /customers/:code
func (h *PartnerHandler) GetCustomer(c *gin.Context) {
	code, ok := h.pathInt(c, "code")
	if !ok {
		return
	}

	view, err := h.customers.Get(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "customer retrieved", view)
}

// ListCustomers handles GET /customers
func (h *PartnerHandler) ListCustomers(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "customers retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteCustomer handles DELETE /customers/:code
func (h *PartnerHandler) DeleteCustomer(c *gin.Context) {
	code, ok := h.pathInt(c, "code")
	if !ok {
		return
	}

	if err := h.customers.Delete(c.Request.Context(), code); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "customer deleted", nil)
}

// GetSalesperson handles GET /salespeople/:code
func (h *PartnerHandler) GetSalesperson(c *gin.Context) {
	code, ok := h.pathInt(c, "code")
	if !ok {
		return
	}

	view, err := h.salespeople.Get(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "salesperson retrieved", view)
}

// ListSalespeople handles GET /salespeople
func (h *PartnerHandler) ListSalespeople(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.salespeople.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "salespeople retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteSalesperson handles DELETE /salespeople/:code
func (h *PartnerHandler) DeleteSalesperson(c *gin.Context) {
	code, ok := h.pathInt(c, "code")
	if !ok {
		return
	}

	if err := h.salespeople.Delete(c.Request.Context(), code); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "salesperson deleted", nil)
}

// GetPaymentMethod handles GET /payment-methods/:code
func (h *PartnerHandler) GetPaymentMethod(c *gin.Context) {
	code, ok := h.pathInt(c, "code")
	if !ok {
		return
	}

	view, err := h.methods.Get(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "payment method retrieved", view)
}

// ListPaymentMethods handles GET /payment-methods
func (h *PartnerHandler) ListPaymentMethods(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.methods.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "payment methods retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeletePaymentMethod handles DELETE /payment-methods/:code
func (h *PartnerHandler) DeletePaymentMethod(c *gin.Context) {
	code, ok := h.pathInt(c, "code")
	if !ok {
		return
	}

	if err := h.methods.Delete(c.Request.Context(), code); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "payment method deleted", nil)
}
