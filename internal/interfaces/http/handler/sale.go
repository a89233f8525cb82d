package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wimotos/backend/internal/application/sales"
	"github.com/wimotos/backend/internal/interfaces/http/dto"
)

// SaleHandler handles sales
type SaleHandler struct {
	BaseHandler
	salesService *sales.Service
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(salesService *sales.Service) *SaleHandler {
	return &SaleHandler{salesService: salesService}
}

// Create godoc
// @Summary      Create sale
// @Description  Registers a sale and marks the product SOLD. PROMISSORY sales also get a
// @Description  note with its installment schedule. user_id defaults to the caller.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body sales.CreateSaleRequest true "Sale"
// @Success      201 {object} APIResponse[sales.CreateSaleResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Product already sold"
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req sales.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.UserID == uuid.Nil {
		caller, ok := h.callerID(c)
		if !ok {
			return
		}
		req.UserID = caller
	}
	result, err := h.salesService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        page         query int    false "Page" default(1)
// @Param        page_size    query int    false "Page size" default(20)
// @Param        client_id    query string false "Client"
// @Param        user_id      query string false "Seller"
// @Param        product_id   query string false "Product"
// @Param        payment_type query string false "CASH, PIX, CARD or PROMISSORY"
// @Param        date_from    query string false "YYYY-MM-DD"
// @Param        date_to      query string false "YYYY-MM-DD"
// @Success      200 {object} APIResponse[[]sales.SaleResponse]
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var q sales.ListSalesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.salesService.ListSales(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(page.Items, len(page.Items), page.Total, page.Page, page.PageSize))
}

// Get godoc
// @Summary      Get sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} APIResponse[sales.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	sale, err := h.salesService.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// UpdateStatus godoc
// @Summary      Change sale status
// @Description  DRAFT to CONFIRMED or CANCELED. Same-status updates are no-ops.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Sale ID"
// @Param        request body sales.UpdateSaleStatusRequest true "Status"
// @Success      200 {object} APIResponse[sales.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Transition not allowed"
// @Security     BearerAuth
// @Router       /sales/{id}/status [patch]
func (h *SaleHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req sales.UpdateSaleStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.salesService.UpdateSaleStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}
