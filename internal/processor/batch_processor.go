package processor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"studentnest/config"
	"studentnest/internal/models"
	"studentnest/internal/queue"
)

// forwardTimeout bounds each external delivery, including those made while
// Stop drains the queue
const forwardTimeout = 5 * time.Second

// Transactor is the part of *gorm.DB the processor needs
type Transactor interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// Forwarder delivers a stored notification to an external channel
type Forwarder interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// BatchProcessor persists queued notification batches and forwards them to
// the configured external channels
type BatchProcessor struct {
	db         Transactor
	logger     *logrus.Logger
	config     *config.Config
	queue      *queue.NotificationQueue
	forwarders []Forwarder
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db Transactor, queue *queue.NotificationQueue, config *config.Config, logger *logrus.Logger, forwarders ...Forwarder) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:         db,
		queue:      queue,
		config:     config,
		logger:     logger,
		forwarders: forwarders,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start subscribes the processor to the queue and starts the queue loop
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
	p.queue.Start()
}

// Stop abandons any retry still waiting, then drains the queue. Batches
// stored during the drain are still forwarded.
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.queue.Close()
}

// processBatch stores a batch in one transaction, retrying on failure, then
// forwards each notification best-effort
func (p *BatchProcessor) processBatch(batch []*models.Notification) error {
	if len(batch) == 0 {
		return nil
	}

	if err := p.store(batch); err != nil {
		return err
	}

	for _, n := range batch {
		for _, f := range p.forwarders {
			if err := p.forward(f, n); err != nil {
				p.logger.WithError(err).WithFields(logrus.Fields{
					"notification_id":   n.ID,
					"notification_type": n.Type,
				}).Warn("Failed to forward notification")
			}
		}
	}
	return nil
}

// forward gives each delivery its own deadline, detached from Stop's cancel
func (p *BatchProcessor) forward(f Forwarder, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), forwardTimeout)
	defer cancel()
	return f.Notify(ctx, n)
}

func (p *BatchProcessor) store(batch []*models.Notification) error {
	maxRetries := p.config.Notifications.MaxRetries

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying notification batch, attempt %d of %d", attempt, maxRetries)
			select {
			case <-p.ctx.Done():
				return fmt.Errorf("notification batch abandoned: %w", p.ctx.Err())
			case <-time.After(p.config.RetryDelayDuration()):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(batch).Error; err != nil {
				return fmt.Errorf("failed to insert notification batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.WithField("batch_size", len(batch)).Debug("Stored notification batch")
			return nil
		}

		p.logger.Errorf("Notification batch failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}
