package notify

import "context"

// Notification 站内/推送通知内容
type Notification struct {
	UserID  uint                   `json:"user_id"`
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Content string                 `json:"content"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Notifier 通知投递接口，投递失败不影响账本写入
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
}

// NopNotifier 关闭通知时的空实现
type NopNotifier struct{}

// Send 丢弃通知
func (NopNotifier) Send(ctx context.Context, notification Notification) error {
	return nil
}
