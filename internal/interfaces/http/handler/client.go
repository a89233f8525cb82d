package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wimotos/backend/internal/application/partner"
)

// ClientHandler handles dealership clients
type ClientHandler struct {
	BaseHandler
	clientService *partner.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *partner.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create godoc
// @Summary      Register client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body partner.CreateClientRequest true "Client"
// @Success      201 {object} APIResponse[partner.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req partner.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// List godoc
// @Summary      List clients
// @Description  Search by name, phone or CPF
// @Tags         clients
// @Produce      json
// @Param        q      query string false "Search text"
// @Param        limit  query int    false "Page size (max 200)"
// @Param        offset query int    false "Offset"
// @Success      200 {object} APIResponse[[]partner.ClientResponse]
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var q partner.ListClientsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	clients, err := h.clientService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Window(c, clients, len(clients), q.ListQuery)
}

// Get godoc
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID"
// @Success      200 {object} APIResponse[partner.ClientResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}
