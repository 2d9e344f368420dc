package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/service"
)

type ClientHandler struct {
	clients *service.ClientService
}

func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// Create godoc
// @Summary  Register a client
// @Tags     clients
// @Accept   json
// @Produce  json
// @Param    request body dto.CreateClientRequest true "Client"
// @Success  201 {object} dto.ClientResponse
// @Security BearerAuth
// @Router   /v1/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.clients.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List clients
// @Tags     clients
// @Produce  json
// @Success  200 {object} dto.ClientListResponse
// @Security BearerAuth
// @Router   /v1/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var filter dto.ClientFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.clients.FindAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Fetch one client
// @Tags     clients
// @Produce  json
// @Param    id path string true "Client external id"
// @Success  200 {object} dto.ClientResponse
// @Failure  404 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	resp, err := h.clients.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary  Update a client
// @Tags     clients
// @Accept   json
// @Produce  json
// @Param    id path string true "Client external id"
// @Param    request body dto.UpdateClientRequest true "Client"
// @Success  200 {object} dto.ClientResponse
// @Security BearerAuth
// @Router   /v1/clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	var req dto.UpdateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.clients.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary  Soft-delete a client without sales history
// @Tags     clients
// @Accept   json
// @Param    id path string true "Client external id"
// @Success  204
// @Failure  409 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	var req dto.DeleteClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.clients.Remove(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
