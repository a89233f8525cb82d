package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wimotos/backend/internal/application/finance"
)

// FinanceHandler handles payables
type FinanceHandler struct {
	BaseHandler
	entryService *finance.EntryService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(entryService *finance.EntryService) *FinanceHandler {
	return &FinanceHandler{entryService: entryService}
}

// Create godoc
// @Summary      Register payable
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        request body finance.CreateEntryRequest true "Entry"
// @Success      201 {object} APIResponse[finance.EntryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance [post]
func (h *FinanceHandler) Create(c *gin.Context) {
	var req finance.CreateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.entryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// List godoc
// @Summary      List payables
// @Tags         finance
// @Produce      json
// @Param        status  query string false "PENDING, PAID or CANCELED"
// @Param        company query string false "Company name contains"
// @Param        limit   query int    false "Page size (max 200)"
// @Param        offset  query int    false "Offset"
// @Success      200 {object} APIResponse[[]finance.EntryResponse]
// @Security     BearerAuth
// @Router       /finance [get]
func (h *FinanceHandler) List(c *gin.Context) {
	var q finance.ListEntriesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	entries, err := h.entryService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Window(c, entries, len(entries), q.ListQuery)
}

// Get godoc
// @Summary      Get payable
// @Tags         finance
// @Produce      json
// @Param        id path string true "Entry ID"
// @Success      200 {object} APIResponse[finance.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/{id} [get]
func (h *FinanceHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	entry, err := h.entryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Update godoc
// @Summary      Update payable
// @Description  Partial update. Moving the due date rearms the reminder.
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Entry ID"
// @Param        request body finance.UpdateEntryRequest true "Changes"
// @Success      200 {object} APIResponse[finance.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/{id} [put]
func (h *FinanceHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req finance.UpdateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.entryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Pay godoc
// @Summary      Pay payable
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        id      path string                  true  "Entry ID"
// @Param        request body finance.PayEntryRequest false "Payment"
// @Success      200 {object} APIResponse[finance.EntryResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/{id}/pay [post]
func (h *FinanceHandler) Pay(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req finance.PayEntryRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.entryService.Pay(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
