package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/testsupport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var t0 = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func newEntry(appID, contentID string, severity models.Severity, at time.Time) *models.QueueEntry {
	return &models.QueueEntry{
		AppID:       appID,
		ContentID:   contentID,
		ContentType: models.ContentPost,
		AuthorID:    "author",
		Status:      models.StatusPending,
		Severity:    severity,
		Action:      models.ActionFlag,
		Analysis:    datatypes.NewJSONType(models.AnalysisResult{OverallSeverity: severity}),
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestUpsertOpen(t *testing.T) {
	st := New(testsupport.MustOpenDB(t))
	ctx := context.Background()

	first := newEntry("app", "c1", models.SeverityMedium, t0)
	created, err := st.Queue().UpsertOpen(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotEqual(t, uuid.Nil, first.ID)

	again := newEntry("app", "c1", models.SeverityHigh, t0.Add(time.Minute))
	created, err = st.Queue().UpsertOpen(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, models.SeverityHigh, again.Severity)
	assert.Equal(t, models.SeverityHigh, again.Analysis.Data().OverallSeverity)
	assert.True(t, again.CreatedAt.Equal(t0))

	other := newEntry("other", "c1", models.SeverityLow, t0)
	created, err = st.Queue().UpsertOpen(ctx, other)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestUpsertOpenLeavesEscalatedAlone(t *testing.T) {
	st := New(testsupport.MustOpenDB(t))
	ctx := context.Background()

	e := newEntry("app", "c1", models.SeverityMedium, t0)
	_, err := st.Queue().UpsertOpen(ctx, e)
	require.NoError(t, err)
	_, err = st.Queue().Transition(ctx, "app", e.ID, store.Transition{
		From: models.DecidableStatuses, To: models.StatusEscalated, ReviewerID: "r", ReviewedAt: t0,
	})
	require.NoError(t, err)

	again := newEntry("app", "c1", models.SeverityHigh, t0)
	created, err := st.Queue().UpsertOpen(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.StatusEscalated, again.Status)
	assert.Equal(t, models.SeverityMedium, again.Severity)
}

func TestTransitionCompareAndSet(t *testing.T) {
	st := New(testsupport.MustOpenDB(t))
	ctx := context.Background()

	e := newEntry("app", "c1", models.SeverityMedium, t0)
	_, err := st.Queue().UpsertOpen(ctx, e)
	require.NoError(t, err)

	approved := models.OutcomeApproved
	resolve := store.Transition{
		From:       models.DecidableStatuses,
		To:         models.StatusResolved,
		ReviewerID: "r1",
		ReviewedAt: t0.Add(time.Hour),
		Decision:   &approved,
	}
	got, err := st.Queue().Transition(ctx, "app", e.ID, resolve)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.Nil(t, got.OpenKey)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, got.ReviewedAt.Equal(t0.Add(time.Hour)))

	_, err = st.Queue().Transition(ctx, "app", e.ID, resolve)
	assert.ErrorIs(t, err, store.ErrStatusConflict)

	_, err = st.Queue().Transition(ctx, "app", uuid.New(), resolve)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Queue().Transition(ctx, "elsewhere", e.ID, resolve)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteClosedBefore(t *testing.T) {
	st := New(testsupport.MustOpenDB(t))
	ctx := context.Background()

	ids := map[string]uuid.UUID{}
	for _, c := range []string{"pending", "escalated", "resolved-old", "resolved-new"} {
		e := newEntry("app", c, models.SeverityLow, t0)
		_, err := st.Queue().UpsertOpen(ctx, e)
		require.NoError(t, err)
		ids[c] = e.ID
	}
	move := func(id uuid.UUID, to models.QueueStatus, at time.Time) {
		_, err := st.Queue().Transition(ctx, "app", id, store.Transition{
			From: models.DecidableStatuses, To: to, ReviewerID: "r", ReviewedAt: at,
		})
		require.NoError(t, err)
	}
	move(ids["escalated"], models.StatusEscalated, t0)
	move(ids["resolved-old"], models.StatusResolved, t0)
	move(ids["resolved-new"], models.StatusResolved, t0.Add(48*time.Hour))

	removed, err := st.Queue().DeleteClosedBefore(ctx, "app", t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = st.Queue().Get(ctx, "app", ids["resolved-old"])
	assert.ErrorIs(t, err, store.ErrNotFound)
	for _, keep := range []string{"pending", "escalated", "resolved-new"} {
		_, err = st.Queue().Get(ctx, "app", ids[keep])
		assert.NoError(t, err, keep)
	}
}

func TestHistoryOrderingAndCounts(t *testing.T) {
	st := New(testsupport.MustOpenDB(t))
	ctx := context.Background()

	appendAt := func(action models.HistoryAction, actor models.ActorType, at time.Time) {
		require.NoError(t, st.History().Append(ctx, &models.HistoryEntry{
			AppID: "app", ContentID: "c1", Action: action, Actor: string(actor), ActorType: actor, CreatedAt: at,
		}))
	}
	appendAt(models.HistoryApproved, models.ActorReviewer, t0.Add(2*time.Second))
	appendAt(models.HistoryFlagged, models.ActorSystem, t0)
	appendAt(models.HistoryEscalated, models.ActorReviewer, t0.Add(time.Second))

	entries, err := st.History().ListByContent(ctx, "app", "c1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.HistoryFlagged, entries[0].Action)
	assert.Equal(t, models.HistoryEscalated, entries[1].Action)
	assert.Equal(t, models.HistoryApproved, entries[2].Action)

	counts, err := st.History().CountByActionActor(ctx, "app", store.Timeframe{Start: t0.Add(500 * time.Millisecond)})
	require.NoError(t, err)
	var total int64
	for _, c := range counts {
		assert.Equal(t, models.ActorReviewer, c.ActorType)
		total += c.Count
	}
	assert.Equal(t, int64(2), total)
}

func TestAtomicRollsBack(t *testing.T) {
	st := New(testsupport.MustOpenDB(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.Atomic(ctx, func(tx store.Store) error {
		if _, err := tx.Queue().UpsertOpen(ctx, newEntry("app", "c1", models.SeverityLow, t0)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := st.Queue().List(ctx, "app", store.QueueFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSettingsRoundTrip(t *testing.T) {
	st := New(testsupport.MustOpenDB(t))
	ctx := context.Background()

	_, err := st.Settings().Get(ctx, "app")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Settings().Save(ctx, &models.ModerationSettings{
		AppID: "app", EnabledDetectors: datatypes.JSONSlice[string]{"spam"}, FlagThreshold: 0.4, UpdatedAt: t0,
	}))
	require.NoError(t, st.Settings().Save(ctx, &models.ModerationSettings{
		AppID: "app", EnabledDetectors: datatypes.JSONSlice[string]{"spam", "pii"}, FlagThreshold: 0.6, UpdatedAt: t0,
	}))

	got, err := st.Settings().Get(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, []string{"spam", "pii"}, []string(got.EnabledDetectors))
	assert.Equal(t, 0.6, got.FlagThreshold)
}

func TestReviewedEntriesAreClosedButDecidable(t *testing.T) {
	db := testsupport.MustOpenDB(t)
	st := New(db)
	ctx := context.Background()

	reviewedAt := t0
	insert := func(contentID string) uuid.UUID {
		e := newEntry("app", contentID, models.SeverityLow, t0)
		e.Status = models.StatusReviewed
		e.ReviewedAt = &reviewedAt
		require.NoError(t, db.Create(e).Error)
		return e.ID
	}
	stale := insert("imported-1")
	open := insert("imported-2")

	entries, err := st.Queue().List(ctx, "app", store.QueueFilter{Status: models.StatusReviewed})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	blocked := models.OutcomeBlocked
	got, err := st.Queue().Transition(ctx, "app", open, store.Transition{
		From: models.DecidableStatuses, To: models.StatusResolved, ReviewerID: "r", ReviewedAt: t0.Add(72 * time.Hour), Decision: &blocked,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)

	removed, err := st.Queue().DeleteClosedBefore(ctx, "app", t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	_, err = st.Queue().Get(ctx, "app", stale)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
