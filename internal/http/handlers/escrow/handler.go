package escrow

import "github.com/inflink/escrow-ledger/internal/provider"

// Handler 托管账本接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
