package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"studentnest/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler processes one batch of notifications
type Handler func([]*models.Notification) error

// NotificationQueue is an in-memory queue of notification batches waiting to
// be delivered
type NotificationQueue struct {
	items    chan []*models.Notification
	done     chan struct{}
	drained  chan struct{}
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []Handler
}

// NewNotificationQueue creates a new queue with the specified buffer size
func NewNotificationQueue(bufferSize int, logger *logrus.Logger) *NotificationQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &NotificationQueue{
		items:    make(chan []*models.Notification, bufferSize),
		done:     make(chan struct{}),
		drained:  make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]Handler, 0),
	}
}

// Push adds a batch of notifications to the queue without blocking
func (q *NotificationQueue) Push(batch []*models.Notification) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", len(batch)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler that will be called for each batch
func (q *NotificationQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue
func (q *NotificationQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	go q.process()
}

func (q *NotificationQueue) process() {
	defer close(q.drained)
	for {
		select {
		case batch := <-q.items:
			q.processBatch(batch)
		case <-q.done:
			// Deliver whatever was accepted before Close
			for {
				select {
				case batch := <-q.items:
					q.processBatch(batch)
				default:
					return
				}
			}
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *NotificationQueue) processBatch(batch []*models.Notification) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).WithField("batch_size", len(batch)).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting batches. When the queue was started it waits until
// the batches already accepted have been handled.
func (q *NotificationQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	close(q.done)
	q.mu.Unlock()

	if started {
		<-q.drained
	}
	return nil
}

// Len returns the current number of batches in the queue
func (q *NotificationQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *NotificationQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
