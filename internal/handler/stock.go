package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/service"
)

type StockHandler struct {
	stocks *service.StockService
}

func NewStockHandler(stocks *service.StockService) *StockHandler {
	return &StockHandler{stocks: stocks}
}

// Movements godoc
// @Summary  List a stock unit's movement history
// @Tags     stocks
// @Produce  json
// @Param    id path string true "Stock external id"
// @Success  200 {object} dto.MovementListResponse
// @Failure  404 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/stocks/{id}/movements [get]
func (h *StockHandler) Movements(c *gin.Context) {
	var filter dto.MovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.stocks.ListMovements(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyLedger godoc
// @Summary  Replay a stock unit's ledger and check it against avail_qty
// @Tags     stocks
// @Produce  json
// @Param    id path string true "Stock external id"
// @Success  200 {object} map[string]string
// @Failure  409 {object} apierror.APIError "Ledger inconsistency"
// @Security BearerAuth
// @Router   /v1/stocks/{id}/ledger [get]
func (h *StockHandler) VerifyLedger(c *gin.Context) {
	if err := h.stocks.VerifyLedger(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "consistent"})
}
