package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"gorm.io/gorm"
)

// SystemLogRetention is how long persisted error logs are kept.
const SystemLogRetention = 30 * 24 * time.Hour

// RetentionJob deletes expired rows and reports how many went.
type RetentionJob struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// PurgeSystemLogs removes system_logs older than SystemLogRetention.
func PurgeSystemLogs(db *gorm.DB) RetentionJob {
	return RetentionJob{
		Name: "system_logs",
		Run: func(ctx context.Context) (int64, error) {
			cutoff := time.Now().UTC().Add(-SystemLogRetention)
			result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
			return result.RowsAffected, result.Error
		},
	}
}

// StartRetention runs every job once per interval until done is closed.
func StartRetention(interval time.Duration, done chan struct{}, jobs ...RetentionJob) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				RunRetention(context.Background(), jobs...)
			case <-done:
				return
			}
		}
	}()
}

func RunRetention(ctx context.Context, jobs ...RetentionJob) {
	for _, job := range jobs {
		removed, err := job.Run(ctx)
		if err != nil {
			slog.Error("retention job failed", "job", job.Name, "error", err)
			continue
		}
		if removed > 0 {
			slog.Info("retention job completed", "job", job.Name, "deleted", removed)
		}
	}
}
