package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	ledgerapp "github.com/hesabdar/backend/internal/application/ledger"
	"github.com/hesabdar/backend/internal/interfaces/http/dto"
)

// RepresentativeHandler handles representative and reconciliation API endpoints
type RepresentativeHandler struct {
	BaseHandler
	ledgerService     *ledgerapp.LedgerService
	reconcilerService *ledgerapp.ReconcilerService
}

// NewRepresentativeHandler creates a new RepresentativeHandler
func NewRepresentativeHandler(
	ledgerService *ledgerapp.LedgerService,
	reconcilerService *ledgerapp.ReconcilerService,
) *RepresentativeHandler {
	return &RepresentativeHandler{
		ledgerService:     ledgerService,
		reconcilerService: reconcilerService,
	}
}

// parseUUIDParam reads a UUID path parameter, replying 400 on failure.
// The bool reports whether parsing succeeded.
func parseUUIDParam(h *BaseHandler, c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" parameter: must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// bindingDetails converts validator errors into per-field details
func bindingDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   fe.Field(),
			Message: "failed on the '" + fe.Tag() + "' rule",
		})
	}
	return details
}

// Create godoc
// @Summary      Register a representative
// @Tags         representatives
// @Accept       json
// @Produce      json
// @Success      201 {object} APIResponse[ledgerapp.RepresentativeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /representatives [post]
func (h *RepresentativeHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateRepresentativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := bindingDetails(err); len(details) > 0 {
			h.ValidationError(c, details)
			return
		}
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.ledgerService.CreateRepresentative(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID godoc
// @Summary      Get a representative by ID
// @Tags         representatives
// @Produce      json
// @Success      200 {object} APIResponse[ledgerapp.RepresentativeResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /representatives/{id} [get]
func (h *RepresentativeHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(&h.BaseHandler, c, "id")
	if !ok {
		return
	}

	resp, err := h.ledgerService.GetRepresentative(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List representatives
// @Tags         representatives
// @Produce      json
// @Success      200 {object} APIResponse[[]ledgerapp.RepresentativeResponse]
// @Router       /representatives [get]
func (h *RepresentativeHandler) List(c *gin.Context) {
	var req ledgerapp.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.ledgerService.ListRepresentatives(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Reconcile godoc
// @Summary      Reconcile a representative's debt aggregates
// @Description  Recomputes true debt from invoices and net allocations, corrects
// @Description  the stored aggregates and records an audit entry when they drifted
// @Tags         reconciliation
// @Produce      json
// @Success      200 {object} APIResponse[ledgerapp.ReconcileResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /reconcile/{id} [post]
func (h *RepresentativeHandler) Reconcile(c *gin.Context) {
	id, ok := parseUUIDParam(&h.BaseHandler, c, "id")
	if !ok {
		return
	}

	resp, err := h.reconcilerService.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListDebtAudits godoc
// @Summary      List reconciliation audit records for a representative
// @Tags         reconciliation
// @Produce      json
// @Success      200 {object} APIResponse[[]ledgerapp.DebtAuditResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /reconcile/{id}/audits [get]
func (h *RepresentativeHandler) ListDebtAudits(c *gin.Context) {
	id, ok := parseUUIDParam(&h.BaseHandler, c, "id")
	if !ok {
		return
	}

	var req ledgerapp.ListAuditsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	audits, err := h.reconcilerService.ListDebtAudits(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, audits)
}
