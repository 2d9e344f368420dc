package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/service"
)

type ActivityHandler struct {
	activity *service.ActivityService
}

func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List godoc
// @Summary  List the audit trail
// @Tags     activity
// @Produce  json
// @Success  200 {object} dto.ActivityLogListResponse
// @Security BearerAuth
// @Router   /v1/activity-logs [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var filter dto.ActivityLogFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.activity.FindAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
