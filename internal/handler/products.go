package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Create godoc
// @Summary  Register a product with its condition and opening stock
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    request body dto.CreateProductRequest true "Product"
// @Success  201 {object} dto.ProductResponse
// @Failure  409 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Success  200 {object} dto.ProductListResponse
// @Security BearerAuth
// @Router   /v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.products.FindAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Counts godoc
// @Summary  Product counts over the standard windows
// @Tags     products
// @Produce  json
// @Success  200 {object} dto.ProductCountResponse
// @Security BearerAuth
// @Router   /v1/products/count [get]
func (h *ProductHandler) Counts(c *gin.Context) {
	resp, err := h.products.Counts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Fetch one product
// @Tags     products
// @Produce  json
// @Param    id path string true "Product external id"
// @Success  200 {object} dto.ProductResponse
// @Failure  404 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	resp, err := h.products.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary  Update a product's metadata and condition
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id path string true "Product external id"
// @Param    request body dto.UpdateProductRequest true "Product"
// @Success  200 {object} dto.ProductResponse
// @Security BearerAuth
// @Router   /v1/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStock godoc
// @Summary  Manually adjust a product's stock quantity
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id path string true "Product external id"
// @Param    request body dto.UpdateStockRequest true "Adjustment"
// @Success  200 {object} dto.ProductResponse
// @Failure  409 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/products/{id}/stock [patch]
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	var req dto.UpdateStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.products.UpdateStock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary  Soft-delete a product
// @Tags     products
// @Accept   json
// @Param    id path string true "Product external id"
// @Success  204
// @Failure  409 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	var req dto.DeleteProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.products.Remove(c.Request.Context(), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ConsignorItems godoc
// @Summary  List a consignor's consigned products
// @Tags     products
// @Produce  json
// @Param    clientId path string true "Consignor external id"
// @Success  200 {object} dto.ProductListResponse
// @Security BearerAuth
// @Router   /v1/products/consignor/{clientId} [get]
func (h *ProductHandler) ConsignorItems(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.products.FindConsignorItems(c.Request.Context(), c.Param("clientId"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
