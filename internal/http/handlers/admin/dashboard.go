package admin

import (
	"github.com/payhub-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboard 收款仪表盘总览
func (h *Handler) GetDashboard(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	overview, err := h.DashboardService.GetOverview(hubID)
	if err != nil {
		respondError(c, response.CodeInternal, "dashboard fetch failed", err)
		return
	}
	response.Success(c, overview)
}
