package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/service"
)

// MiscHandler serves the product lookup tables. One handler is registered
// per kind (categories, brands, authenticators); the routes share shapes
// and rules.
type MiscHandler struct {
	misc *service.MiscService
	kind service.LookupKind
}

func NewMiscHandler(misc *service.MiscService, kind service.LookupKind) *MiscHandler {
	return &MiscHandler{misc: misc, kind: kind}
}

type miscListQuery struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

func (h *MiscHandler) Create(c *gin.Context) {
	var req dto.CreateMiscRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.misc.Create(c.Request.Context(), h.kind, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MiscHandler) List(c *gin.Context) {
	var q miscListQuery
	if !bindQuery(c, &q) {
		return
	}
	data, meta, err := h.misc.FindAll(c.Request.Context(), h.kind, q.Search, q.Page, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "meta": meta})
}

func (h *MiscHandler) Get(c *gin.Context) {
	resp, err := h.misc.FindOne(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MiscHandler) Update(c *gin.Context) {
	var req dto.UpdateMiscRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.misc.Update(c.Request.Context(), h.kind, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MiscHandler) Delete(c *gin.Context) {
	var req dto.DeleteMiscRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.misc.Remove(c.Request.Context(), h.kind, c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
