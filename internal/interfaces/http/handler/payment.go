package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/hesabdar/backend/internal/application/ledger"
)

// PaymentHandler handles payment and allocation API endpoints
type PaymentHandler struct {
	BaseHandler
	ledgerService    *ledgerapp.LedgerService
	allocatorService *ledgerapp.AllocatorService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	ledgerService *ledgerapp.LedgerService,
	allocatorService *ledgerapp.AllocatorService,
) *PaymentHandler {
	return &PaymentHandler{
		ledgerService:    ledgerService,
		allocatorService: allocatorService,
	}
}

// Create godoc
// @Summary      Record a received payment
// @Description  Registers a payment in unallocated state. Allocation to invoices
// @Description  happens through the auto-allocate operation.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      201 {object} APIResponse[ledgerapp.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req ledgerapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := bindingDetails(err); len(details) > 0 {
			h.ValidationError(c, details)
			return
		}
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.ledgerService.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get a payment by ID
// @Description  Includes the payment's allocation entries
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[ledgerapp.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(&h.BaseHandler, c, "id")
	if !ok {
		return
	}

	resp, err := h.ledgerService.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[[]ledgerapp.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var req ledgerapp.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.ledgerService.ListPayments(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AutoAllocate godoc
// @Summary      Run FIFO allocation for a representative
// @Description  Consumes the representative's unallocated payments oldest first
// @Description  against open invoices oldest first, inside one transaction.
// @Description  Concurrent runs for the same representative are rejected.
// @Tags         allocation
// @Produce      json
// @Success      200 {object} APIResponse[ledgerapp.AutoAllocateResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /payments/auto-allocate/{id} [post]
func (h *PaymentHandler) AutoAllocate(c *gin.Context) {
	id, ok := parseUUIDParam(&h.BaseHandler, c, "id")
	if !ok {
		return
	}

	resp, err := h.allocatorService.AutoAllocate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListUnallocated godoc
// @Summary      List payments with remaining unallocated amount
// @Tags         allocation
// @Produce      json
// @Success      200 {object} APIResponse[[]ledgerapp.UnallocatedPaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /payments/unallocated [get]
func (h *PaymentHandler) ListUnallocated(c *gin.Context) {
	var req ledgerapp.ListUnallocatedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	payments, err := h.allocatorService.ListUnallocatedPayments(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// AllocationSummary godoc
// @Summary      Get the allocation summary for a representative
// @Tags         allocation
// @Produce      json
// @Success      200 {object} APIResponse[ledgerapp.AllocationSummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /payments/allocation-summary [get]
func (h *PaymentHandler) AllocationSummary(c *gin.Context) {
	idStr := c.Query("representative_id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.BadRequest(c, "Invalid representative_id parameter: must be a UUID")
		return
	}

	resp, err := h.allocatorService.GetAllocationSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
