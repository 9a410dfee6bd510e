package public

import "github.com/payhub-next/internal/provider"

// Handler 公开接口处理器入口
// 说明：该处理器仅用于网关回调与 checkout 等免认证 API。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
