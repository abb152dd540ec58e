package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModerationStatsEmpty(t *testing.T) {
	f := newFixture(t, nil)

	stats, err := f.svc.GetModerationStats(context.Background(), testApp, store.Timeframe{})
	require.NoError(t, err)
	assert.Equal(t, &ModerationStats{}, stats)
	assert.Equal(t, 0.0, stats.AutomationRate)
}

func TestGetModerationStats(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	caps := f.moderate(t, "post-caps", capsText)
	f.moderate(t, "post-threat", threatText)
	f.moderate(t, "post-clean", cleanText)
	_, err := f.svc.ProcessDecision(ctx, testApp, caps.QueueEntryID.String(), DecisionApprove, "rev-1", "")
	require.NoError(t, err)

	stats, err := f.svc.GetModerationStats(ctx, testApp, store.Timeframe{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Automated)
	assert.Equal(t, int64(1), stats.Manual)
	assert.Equal(t, stats.Total, stats.Automated+stats.Manual)
	assert.InDelta(t, 2.0/3.0, stats.AutomationRate, 1e-9)

	assert.Equal(t, ActionBreakdown{Approved: 1, Blocked: 1, Flagged: 1}, stats.ActionBreakdown)
	assert.Equal(t, SeverityBreakdown{Medium: 1, High: 1}, stats.SeverityBreakdown)
	assert.Equal(t, QueueStats{Pending: 1, TotalInQueue: 1}, stats.QueueStats)
}

func TestGetModerationStatsWindow(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.moderate(t, "old", capsText)
	f.clock.Advance(10 * 24 * time.Hour)
	f.moderate(t, "recent", capsText)

	tf, err := f.svc.TimeframeDays(7)
	require.NoError(t, err)
	stats, err := f.svc.GetModerationStats(ctx, testApp, tf)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.QueueStats.Pending)

	all, err := f.svc.GetModerationStats(ctx, testApp, store.Timeframe{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	_, err = f.svc.TimeframeDays(0)
	assert.True(t, IsValidation(err))

	_, err = f.svc.GetModerationStats(ctx, testApp, store.Timeframe{Start: epoch, End: epoch.Add(-time.Hour)})
	assert.True(t, IsValidation(err))
}

func TestGetModerationStatsIsTenantScoped(t *testing.T) {
	f := newFixture(t, nil)
	f.moderate(t, "post-1", capsText)

	stats, err := f.svc.GetModerationStats(context.Background(), "other-app", store.Timeframe{})
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}
