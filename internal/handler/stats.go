package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/service"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Sales godoc
// @Summary  Sales totals by status
// @Tags     stats
// @Produce  json
// @Success  200 {object} dto.SalesStatsResponse
// @Security BearerAuth
// @Router   /v1/stats/sales [get]
func (h *StatsHandler) Sales(c *gin.Context) {
	var filter dto.StatsFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.stats.SalesStats(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CustomerFrequency godoc
// @Summary  New vs repeat customer metrics
// @Tags     stats
// @Produce  json
// @Success  200 {object} dto.CustomerFrequencyResponse
// @Security BearerAuth
// @Router   /v1/stats/customer-frequency [get]
func (h *StatsHandler) CustomerFrequency(c *gin.Context) {
	var filter dto.StatsFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.stats.CustomerFrequency(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
