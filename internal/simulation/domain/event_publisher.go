package domain

import "context"

// EventPublisher 事件发布者接口，由 Outbox 实现
type EventPublisher interface {
	// Publish 发布一个普通事件（非事务内）
	Publish(ctx context.Context, topic string, key string, event any) error

	// PublishInTx 在事务中发布事件，核心用于 Outbox 模式
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}
