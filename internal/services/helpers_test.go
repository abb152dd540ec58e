package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/repository"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/testsupport"
	"github.com/stretchr/testify/require"
)

const testApp = "forum"

var epoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// fakeClock ticks one millisecond per reading so writes get distinct,
// ordered timestamps.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc   *ModerationService
	store *repository.Store
	clock *fakeClock
}

func newFixture(t *testing.T, set *detectors.Set) *fixture {
	t.Helper()
	if set == nil {
		lex, err := detectors.DefaultLexicon()
		require.NoError(t, err)
		set, err = detectors.NewSet(lex)
		require.NoError(t, err)
	}
	db := testsupport.MustOpenDB(t)
	st := repository.New(db)
	clock := newFakeClock()
	settings := NewSettingsService(st, 0.7, clock.Now)
	svc := NewModerationService(st, set, settings, Options{
		BulkWorkers:     3,
		MaxBulkItems:    10,
		DetectorTimeout: time.Second,
		Clock:           clock.Now,
	})
	return &fixture{svc: svc, store: st, clock: clock}
}

func (f *fixture) moderate(t *testing.T, contentID, text string) *ModerationOutcome {
	t.Helper()
	out, err := f.svc.ModerateBeforePublish(context.Background(), testApp, models.ContentRecord{
		ID:          contentID,
		ContentType: models.ContentPost,
		Text:        text,
		AuthorID:    "author-1",
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) queue(t *testing.T) []models.QueueEntry {
	t.Helper()
	entries, err := f.store.Queue().List(context.Background(), testApp, storeFilterAll())
	require.NoError(t, err)
	return entries
}

// stubDetector returns whatever fn returns.
type stubDetector struct {
	cat detectors.Category
	fn  func(ctx context.Context, text string) (detectors.Result, error)
}

func (s *stubDetector) Category() detectors.Category { return s.cat }

func (s *stubDetector) Detect(ctx context.Context, text string) (detectors.Result, error) {
	return s.fn(ctx, text)
}

func fixed(cat detectors.Category, score float64) *stubDetector {
	return &stubDetector{cat: cat, fn: func(context.Context, string) (detectors.Result, error) {
		return detectors.Result{Category: cat, Score: score, Evidence: []string{}}, nil
	}}
}

const (
	cleanText  = "Had a lovely walk in the park with the dog today"
	capsText   = "AAAAAAAAAAAAAAAAAAAA"
	threatText = "I will kill you tomorrow"
	urlText    = "deals at http://a.example http://b.example http://c.example and http://d.example"
	profane    = "this movie was shit"
)

func storeFilterAll() store.QueueFilter { return store.QueueFilter{} }

func storeTimeframeAll() store.Timeframe { return store.Timeframe{} }
