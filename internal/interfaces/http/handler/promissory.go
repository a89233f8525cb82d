package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wimotos/backend/internal/application/promissory"
)

// PromissoryHandler handles promissory notes and their installments
type PromissoryHandler struct {
	BaseHandler
	noteService *promissory.Service
}

// NewPromissoryHandler creates a new promissory handler
func NewPromissoryHandler(noteService *promissory.Service) *PromissoryHandler {
	return &PromissoryHandler{noteService: noteService}
}

// List godoc
// @Summary      List promissory notes
// @Tags         promissories
// @Produce      json
// @Param        status query string false "DRAFT, ISSUED, PAID or CANCELED"
// @Param        limit  query int    false "Page size (max 200)"
// @Param        offset query int    false "Offset"
// @Success      200 {object} APIResponse[[]promissory.NoteResponse]
// @Security     BearerAuth
// @Router       /promissories [get]
func (h *PromissoryHandler) List(c *gin.Context) {
	var q promissory.ListNotesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	notes, err := h.noteService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Window(c, notes, len(notes), q.ListQuery)
}

// Get godoc
// @Summary      Get promissory note
// @Description  The note with its installments ordered by number
// @Tags         promissories
// @Produce      json
// @Param        id path string true "Note ID"
// @Success      200 {object} APIResponse[promissory.NoteResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promissories/{id} [get]
func (h *PromissoryHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	note, err := h.noteService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, note)
}

// Issue godoc
// @Summary      Issue promissory note
// @Description  DRAFT to ISSUED. Issuing an ISSUED note is a no-op.
// @Tags         promissories
// @Produce      json
// @Param        id path string true "Note ID"
// @Success      200 {object} APIResponse[promissory.NoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /promissories/{id}/issue [post]
func (h *PromissoryHandler) Issue(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	note, err := h.noteService.Issue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, note)
}

// Cancel godoc
// @Summary      Cancel promissory note
// @Description  Cancels the note and its pending installments. Refused once any installment is paid.
// @Tags         promissories
// @Produce      json
// @Param        id path string true "Note ID"
// @Success      200 {object} APIResponse[promissory.NoteResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Note has paid installments"
// @Security     BearerAuth
// @Router       /promissories/{id}/cancel [patch]
func (h *PromissoryHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	note, err := h.noteService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, note)
}

// Booklet godoc
// @Summary      Payment booklet
// @Description  PDF with one coupon per installment
// @Tags         promissories
// @Produce      application/pdf
// @Param        id path string true "Note ID"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse "Printing not configured"
// @Security     BearerAuth
// @Router       /promissories/{id}/booklet [get]
func (h *PromissoryHandler) Booklet(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	pdf, err := h.noteService.RenderBooklet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"carne-%s.pdf\"", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ListInstallments godoc
// @Summary      List installments
// @Tags         installments
// @Produce      json
// @Param        promissory_id query string false "Note"
// @Param        status        query string false "PENDING, PAID or CANCELED"
// @Param        limit         query int    false "Page size (max 200)"
// @Param        offset        query int    false "Offset"
// @Success      200 {object} APIResponse[[]promissory.InstallmentResponse]
// @Security     BearerAuth
// @Router       /installments [get]
func (h *PromissoryHandler) ListInstallments(c *gin.Context) {
	var q promissory.ListInstallmentsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	items, err := h.noteService.ListInstallments(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Window(c, items, len(items), q.ListQuery)
}

// GetInstallment godoc
// @Summary      Get installment
// @Tags         installments
// @Produce      json
// @Param        id path string true "Installment ID"
// @Success      200 {object} APIResponse[promissory.InstallmentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /installments/{id} [get]
func (h *PromissoryHandler) GetInstallment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	item, err := h.noteService.GetInstallment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// PayInstallment godoc
// @Summary      Pay installment
// @Description  Marks the installment PAID. The note becomes PAID with its last installment.
// @Description  Paying a PAID installment is a no-op.
// @Tags         installments
// @Accept       json
// @Produce      json
// @Param        id      path string                           true  "Installment ID"
// @Param        request body promissory.PayInstallmentRequest false "Payment"
// @Success      200 {object} APIResponse[promissory.PayInstallmentResult]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /installments/{id}/pay [post]
func (h *PromissoryHandler) PayInstallment(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req promissory.PayInstallmentRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.noteService.PayInstallment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
