package services

import (
	"context"

	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
)

// QueueChatNotifier hands chat messages to the bot processes over the broker;
// only they hold the Telegram and WhatsApp sessions.
type QueueChatNotifier struct {
	publisher rabbit.PublisherInterface
}

func NewQueueChatNotifier(pub rabbit.PublisherInterface) *QueueChatNotifier {
	return &QueueChatNotifier{publisher: pub}
}

func (q *QueueChatNotifier) Notify(ctx context.Context, n domain.ChatNotification) error {
	return q.publisher.Publish(ctx, n.Channel.RoutingKey(), n)
}
