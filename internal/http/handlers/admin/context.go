package admin

import (
	handlershared "github.com/payhub-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

// getHubID 从 JWT 注入的上下文读取当前员工所属 hub
func getHubID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "hub_id")
}
