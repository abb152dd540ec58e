package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerateCleanContentHasNoSideEffects(t *testing.T) {
	f := newFixture(t, nil)

	out := f.moderate(t, "post-1", cleanText)
	assert.Equal(t, models.ActionApprove, out.Action)
	assert.Nil(t, out.QueueEntryID)
	assert.Empty(t, f.queue(t))

	history, err := f.svc.GetModerationHistory(context.Background(), testApp, "post-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestModerateAllCapsIsSoftSpam(t *testing.T) {
	f := newFixture(t, nil)

	out := f.moderate(t, "post-caps", capsText)
	assert.Equal(t, models.ActionFlag, out.Action)
	assert.False(t, out.Analysis.IsSpam)
	assert.Equal(t, models.SeverityMedium, out.Analysis.OverallSeverity)
	require.NotNil(t, out.QueueEntryID)

	entries := f.queue(t)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusPending, entries[0].Status)
	assert.Equal(t, models.SeverityMedium, entries[0].Severity)
	assert.Equal(t, *out.QueueEntryID, entries[0].ID)

	history, err := f.svc.GetModerationHistory(context.Background(), testApp, "post-caps")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryFlagged, history[0].Action)
	assert.Equal(t, models.SystemActor, history[0].Actor)
	assert.Equal(t, models.ActorSystem, history[0].ActorType)
}

func TestModerateAllCapsBelowRaisedThresholdApproves(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Settings().Update(context.Background(), testApp, map[string]interface{}{"flagThreshold": 0.9})
	require.NoError(t, err)

	out := f.moderate(t, "post-caps", capsText)
	assert.Equal(t, models.ActionApprove, out.Action)
	assert.Empty(t, f.queue(t))
}

func TestModerateManyURLsBlocks(t *testing.T) {
	f := newFixture(t, nil)

	out := f.moderate(t, "post-urls", urlText)
	assert.Equal(t, models.ActionBlock, out.Action)
	assert.True(t, out.Analysis.IsSpam)

	entries := f.queue(t)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SeverityHigh, entries[0].Severity)
	assert.Equal(t, models.ActionBlock, entries[0].Action)

	history, err := f.svc.GetModerationHistory(context.Background(), testApp, "post-urls")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryBlocked, history[0].Action)
}

func TestModerateThreatBlocks(t *testing.T) {
	f := newFixture(t, nil)
	out := f.moderate(t, "post-threat", threatText)
	assert.Equal(t, models.ActionBlock, out.Action)
	assert.Contains(t, out.Analysis.TriggeredCategories, detectors.CategoryThreat)
}

func TestModerateStoresAnalysisSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	out := f.moderate(t, "post-1", profane)

	entry, err := f.store.Queue().Get(context.Background(), testApp, *out.QueueEntryID)
	require.NoError(t, err)
	snap := entry.Analysis.Data()
	assert.Equal(t, 1.0, snap.Scores[detectors.CategoryProfanity])
	assert.Equal(t, models.ActionFlag, snap.RecommendedAction)
	assert.Equal(t, ContentHash(profane), entry.ContentHash)
	assert.Len(t, entry.ContentHash, 64)
}

func TestModerateIsIdempotentPerContent(t *testing.T) {
	f := newFixture(t, nil)

	first := f.moderate(t, "post-1", capsText)
	second := f.moderate(t, "post-1", profane)

	require.NotNil(t, first.QueueEntryID)
	require.NotNil(t, second.QueueEntryID)
	assert.Equal(t, *first.QueueEntryID, *second.QueueEntryID)

	entries := f.queue(t)
	require.Len(t, entries, 1)
	// snapshot follows the latest analysis
	assert.Equal(t, ContentHash(profane), entries[0].ContentHash)
	assert.Equal(t, 1.0, entries[0].Analysis.Data().Scores[detectors.CategoryProfanity])
}

func TestModerateRepeatWithSameOutcomeAddsNoHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.moderate(t, "post-1", capsText)
	}
	require.Len(t, f.queue(t), 1)

	history, err := f.svc.GetModerationHistory(ctx, testApp, "post-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryFlagged, history[0].Action)

	stats, err := f.svc.GetModerationStats(ctx, testApp, store.Timeframe{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Automated)
	assert.Equal(t, int64(1), stats.ActionBreakdown.Flagged)

	// a changed outcome is recorded
	f.moderate(t, "post-1", profane)
	history, err = f.svc.GetModerationHistory(ctx, testApp, "post-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ContentHash(profane), history[1].ContentHash)
}

func TestModerateLeavesEscalatedEntryAlone(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := f.moderate(t, "post-1", capsText)
	_, err := f.svc.ProcessDecision(ctx, testApp, first.QueueEntryID.String(), DecisionEscalate, "rev-1", "needs a second look")
	require.NoError(t, err)

	again := f.moderate(t, "post-1", profane)
	assert.Equal(t, *first.QueueEntryID, *again.QueueEntryID)

	entries := f.queue(t)
	require.Len(t, entries, 1)
	assert.Equal(t, models.StatusEscalated, entries[0].Status)
	assert.Equal(t, ContentHash(capsText), entries[0].ContentHash)

	history, err := f.svc.GetModerationHistory(ctx, testApp, "post-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestModerateAfterResolutionOpensNewEntry(t *testing.T) {
	f := newFixture(t, nil)

	first := f.moderate(t, "post-1", capsText)
	_, err := f.svc.ProcessDecision(context.Background(), testApp, first.QueueEntryID.String(), DecisionApprove, "rev-1", "")
	require.NoError(t, err)

	second := f.moderate(t, "post-1", capsText)
	assert.NotEqual(t, *first.QueueEntryID, *second.QueueEntryID)
	assert.Len(t, f.queue(t), 2)
}

func TestModerateApproveKeepsOpenEntry(t *testing.T) {
	f := newFixture(t, nil)

	first := f.moderate(t, "post-1", capsText)
	edited := f.moderate(t, "post-1", cleanText)
	assert.Equal(t, models.ActionApprove, edited.Action)

	entries := f.queue(t)
	require.Len(t, entries, 1)
	assert.Equal(t, *first.QueueEntryID, entries[0].ID)
	assert.Equal(t, models.StatusPending, entries[0].Status)
}

func TestModerateGeneratesContentID(t *testing.T) {
	f := newFixture(t, nil)
	out := f.moderate(t, "", capsText)
	assert.NotEmpty(t, out.ContentID)
	assert.Equal(t, out.ContentID, f.queue(t)[0].ContentID)
}

func TestModerateValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []models.ContentRecord{
		{ContentType: models.ContentPost, AuthorID: "a"},
		{Text: "hi", ContentType: "story", AuthorID: "a"},
		{Text: "hi", ContentType: models.ContentReply},
	}
	for _, c := range cases {
		_, err := f.svc.ModerateBeforePublish(ctx, testApp, c)
		assert.True(t, IsValidation(err), "%+v", c)
	}
	assert.Empty(t, f.queue(t))
}

func TestModerateAllFaultedForcesReview(t *testing.T) {
	set := detectors.NewSetFrom(&stubDetector{cat: detectors.CategoryToxicity, fn: func(context.Context, string) (detectors.Result, error) {
		return detectors.Result{}, errors.New("down")
	}})
	f := newFixture(t, set)

	out := f.moderate(t, "post-1", "anything")
	assert.Equal(t, models.ActionFlag, out.Action)

	history, err := f.svc.GetModerationHistory(context.Background(), testApp, "post-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "all detectors faulted", history[0].Reason)
}

func TestModerateIsTenantScoped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.moderate(t, "post-1", capsText)
	_, err := f.svc.ModerateBeforePublish(ctx, "other-app", models.ContentRecord{
		ID: "post-1", ContentType: models.ContentPost, Text: capsText, AuthorID: "a",
	})
	require.NoError(t, err)

	assert.Len(t, f.queue(t), 1)
	other, err := f.svc.GetModerationQueue(ctx, "other-app", storeFilterAll())
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestAnalyzeHasNoSideEffects(t *testing.T) {
	f := newFixture(t, nil)

	a, err := f.svc.Analyze(context.Background(), testApp, threatText, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.ActionBlock, a.RecommendedAction)
	assert.Empty(t, f.queue(t))

	_, err = f.svc.Analyze(context.Background(), testApp, "   ", AnalyzeOptions{})
	assert.True(t, IsValidation(err))
}
