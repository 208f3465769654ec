package processor

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"studentnest/internal/database"
	"studentnest/internal/models"
	"studentnest/internal/queue"
)

func BenchmarkProcessBatch(b *testing.B) {
	for _, size := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("BatchSize_%d", size), func(b *testing.B) {
			db, err := database.NewTestDB()
			if err != nil {
				b.Fatal(err)
			}
			if err := database.MigrateSchema(db); err != nil {
				b.Fatal(err)
			}

			logger := logrus.New()
			logger.SetLevel(logrus.WarnLevel)
			processor := NewBatchProcessor(db, queue.NewNotificationQueue(1, logger), testConfig(), logger)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				batch := make([]*models.Notification, size)
				for j := range batch {
					batch[j] = &models.Notification{
						UserID: uuid.New(),
						Type:   models.NotifyBookingRequest,
						Title:  "New Booking Request",
					}
				}
				if err := processor.processBatch(batch); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
