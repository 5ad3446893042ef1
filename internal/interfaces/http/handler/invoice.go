package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/hesabdar/backend/internal/application/ledger"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(ledgerService *ledgerapp.LedgerService) *InvoiceHandler {
	return &InvoiceHandler{ledgerService: ledgerService}
}

// Create godoc
// @Summary      Issue an invoice
// @Description  Records a new invoice against a representative. The amount is a
// @Description  positive decimal string in rial.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Success      201 {object} APIResponse[ledgerapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := bindingDetails(err); len(details) > 0 {
			h.ValidationError(c, details)
			return
		}
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.ledgerService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get an invoice by ID
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[ledgerapp.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(&h.BaseHandler, c, "id")
	if !ok {
		return
	}

	resp, err := h.ledgerService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List invoices
// @Description  Filters by representative, status and overdue flag
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[[]ledgerapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ledgerapp.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.ledgerService.ListInvoices(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
