package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"golang.org/x/sync/errgroup"
)

// BulkItemResult is the outcome of one item in a bulk request, at the
// item's input index.
type BulkItemResult struct {
	Index     int                `json:"index"`
	ContentID string             `json:"contentId,omitempty"`
	Success   bool               `json:"success"`
	Result    *ModerationOutcome `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}

var errBulkCancelled = errors.New("cancelled before processing")

// BulkModerate runs ModerateBeforePublish over every item on a fixed-size
// worker pool. Item failures are reported per item and never fail the
// batch. Cancelling ctx skips items not yet dispatched; items already
// running finish their writes.
func (s *ModerationService) BulkModerate(ctx context.Context, appID string, items []models.ContentRecord) ([]BulkItemResult, error) {
	if items == nil {
		return nil, invalid("contents", "must be an array")
	}
	if len(items) > s.maxBulk {
		return nil, invalid("contents", "at most %d items per request", s.maxBulk)
	}

	results := make([]BulkItemResult, len(items))
	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for i, item := range items {
		i, item := i, item
		results[i] = BulkItemResult{Index: i, ContentID: item.ID}
		if ctx.Err() != nil {
			results[i].Error = errBulkCancelled.Error()
			bulkItems.WithLabelValues("cancelled").Inc()
			continue
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				results[i].Error = errBulkCancelled.Error()
				bulkItems.WithLabelValues("cancelled").Inc()
				return nil
			}
			outcome, err := s.ModerateBeforePublish(context.WithoutCancel(ctx), appID, item)
			if err != nil {
				results[i].Error = err.Error()
				bulkItems.WithLabelValues("error").Inc()
				return nil
			}
			results[i].Success = true
			results[i].ContentID = outcome.ContentID
			results[i].Result = outcome
			bulkItems.WithLabelValues("success").Inc()
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}
