package notify

import (
	"context"
	"fmt"

	"studentnest/internal/models"
	"studentnest/internal/queue"
)

// Notifier accepts a notification for delivery. Implementations must not
// block on downstream delivery.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// QueueNotifier hands notifications to the in-memory queue, where the batch
// processor stores and forwards them
type QueueNotifier struct {
	queue *queue.NotificationQueue
}

func NewQueueNotifier(q *queue.NotificationQueue) *QueueNotifier {
	return &QueueNotifier{queue: q}
}

func (q *QueueNotifier) Notify(ctx context.Context, n *models.Notification) error {
	if err := q.queue.Push([]*models.Notification{n}); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}
