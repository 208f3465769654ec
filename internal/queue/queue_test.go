package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"studentnest/internal/models"
)

func TestNewNotificationQueue(t *testing.T) {
	logger := logrus.New()
	q := NewNotificationQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestNotificationQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewNotificationQueue(2, logger)

	// Test successful push
	batch := []*models.Notification{{Title: "first"}}
	err := q.Push(batch)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	_ = q.Push([]*models.Notification{{Title: "second"}})
	err = q.Push(batch)
	assert.Equal(t, ErrQueueFull, err)

	// Test closed queue
	q.Close()
	err = q.Push(batch)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestNotificationQueue_Subscribe(t *testing.T) {
	logger := logrus.New()
	q := NewNotificationQueue(10, logger)

	var processed []*models.Notification
	var mu sync.Mutex

	q.Subscribe(func(batch []*models.Notification) error {
		mu.Lock()
		processed = append(processed, batch...)
		mu.Unlock()
		return nil
	})

	q.Start()

	err := q.Push([]*models.Notification{{Title: "a"}, {Title: "b"}})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "a", processed[0].Title)
	assert.Equal(t, "b", processed[1].Title)
	mu.Unlock()
}

func TestNotificationQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewNotificationQueue(10, logger)

	// Test first close
	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Test second close (should be no-op)
	err = q.Close()
	assert.NoError(t, err)
}

func TestNotificationQueue_CloseDrainsAcceptedBatches(t *testing.T) {
	q := NewNotificationQueue(10, logrus.New())

	var mu sync.Mutex
	count := 0
	q.Subscribe(func(batch []*models.Notification) error {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		count += len(batch)
		mu.Unlock()
		return nil
	})
	q.Start()

	for i := 0; i < 5; i++ {
		assert.NoError(t, q.Push([]*models.Notification{{Title: "n"}}))
	}
	assert.NoError(t, q.Close())

	mu.Lock()
	assert.Equal(t, 5, count)
	mu.Unlock()
}

func TestNotificationQueue_ProcessBatch(t *testing.T) {
	logger := logrus.New()
	q := NewNotificationQueue(10, logger)

	var wg sync.WaitGroup
	processedBatches := 0
	var mu sync.Mutex

	// A failing handler must not stop the others
	q.Subscribe(func(batch []*models.Notification) error {
		return errors.New("sink down")
	})
	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(batch []*models.Notification) error {
			mu.Lock()
			processedBatches++
			mu.Unlock()
			wg.Done()
			return nil
		})
	}

	q.Start()

	err := q.Push([]*models.Notification{{Title: "test"}})
	assert.NoError(t, err)

	wg.Wait()

	mu.Lock()
	assert.Equal(t, 3, processedBatches)
	mu.Unlock()
}
