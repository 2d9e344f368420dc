package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/service"
)

type SaleHandler struct {
	sales *service.SaleService
}

func NewSaleHandler(sales *service.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// Create godoc
// @Summary  Create a sale (regular or layaway)
// @Tags     sales
// @Accept   json
// @Produce  json
// @Param    request body dto.CreateSaleRequest true "Sale"
// @Success  201 {object} dto.SaleResponse
// @Failure  409 {object} apierror.APIError "Insufficient stock"
// @Security BearerAuth
// @Router   /v1/sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.CreateSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List sales
// @Tags     sales
// @Produce  json
// @Success  200 {object} dto.SaleListResponse
// @Security BearerAuth
// @Router   /v1/sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.sales.FindAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Fetch one sale with lines, payments and layaway plan
// @Tags     sales
// @Produce  json
// @Param    id path string true "Sale external id"
// @Success  200 {object} dto.SaleResponse
// @Failure  404 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	resp, err := h.sales.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordPayment godoc
// @Summary  Record a payment against a sale
// @Tags     sales
// @Accept   json
// @Produce  json
// @Param    request body dto.RecordPaymentRequest true "Payment"
// @Success  200 {object} dto.SaleResponse
// @Failure  409 {object} apierror.APIError "No outstanding balance or cancelled sale"
// @Security BearerAuth
// @Router   /v1/sales/payment [post]
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.RecordPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary  Cancel a sale and return its stock
// @Tags     sales
// @Accept   json
// @Produce  json
// @Param    request body dto.CancelSaleRequest true "Cancellation"
// @Success  200 {object} dto.SaleResponse
// @Security BearerAuth
// @Router   /v1/sales/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
	var req dto.CancelSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.CancelSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExtendDueDate godoc
// @Summary  Extend a layaway sale's due date
// @Tags     sales
// @Accept   json
// @Produce  json
// @Param    id path string true "Sale external id"
// @Param    request body dto.ExtendDueDateRequest true "New due date"
// @Success  200 {object} dto.SaleResponse
// @Failure  409 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/sales/{id}/due-date [patch]
func (h *SaleHandler) ExtendDueDate(c *gin.Context) {
	var req dto.ExtendDueDateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.ExtendDueDate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
