package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/erpsync/backend/internal/application/billing"
)

// BillingHandler serves the sales invoice endpoints.
type BillingHandler struct {
	BaseHandler
	invoices *billingapp.InvoiceService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(invoices *billingapp.InvoiceService) *BillingHandler {
	return &BillingHandler{invoices: invoices}
}

// RegisterRoutes registers the billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync/invoices/full", h.SyncInvoice)

	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:series/:number/:n", h.GetInvoice)
		invoices.DELETE("/:series/:number/:n", h.DeleteInvoice)
	}
}

// SyncInvoice handles POST /sync/invoices/full, the full invoice
// aggregate: header, lines and payment schedule in one payload
func (h *BillingHandler) SyncInvoice(c *gin.Context) {
	var req billingapp.InvoiceAggregateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.invoices.Sync(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "invoice synchronized", result)
}

// GetInvoice handles GET /invoices/:series/:number/:n
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	series := c.Param("series")
	number, ok := h.pathInt(c, "number")
	if !ok {
		return
	}
	suffix, ok := h.pathInt(c, "n")
	if !ok {
		return
	}

	view, err := h.invoices.Get(c.Request.Context(), series, number, suffix)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "invoice retrieved", view)
}

// ListInvoices handles GET /invoices
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, "invoices retrieved", page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteInvoice handles DELETE /invoices/:series/:number/:n. Lines and
// payments of the invoice are removed in the same transaction.
func (h *BillingHandler) DeleteInvoice(c *gin.Context) {
	series := c.Param("series")
	number, ok := h.pathInt(c, "number")
	if !ok {
		return
	}
	suffix, ok := h.pathInt(c, "n")
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), series, number, suffix); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "invoice deleted", nil)
}
