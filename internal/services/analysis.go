package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/getsentry/sentry-go"
)

// AnalyzeOptions selects which detectors run for one analysis.
type AnalyzeOptions struct {
	// Detectors restricts the run to these categories. Empty means every
	// enabled detector.
	Detectors []detectors.Category `json:"detectors"`
	// Force runs the requested detectors even when settings disable them.
	Force bool `json:"force"`
}

// Pipeline fans text out to detectors and folds their results into an
// AnalysisResult. Each detector runs in its own goroutine with its own
// deadline; a failing detector yields a zero-score fault, never an error.
type Pipeline struct {
	set     *detectors.Set
	timeout time.Duration
	now     func() time.Time
}

func NewPipeline(set *detectors.Set, timeout time.Duration, now func() time.Time) *Pipeline {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Pipeline{set: set, timeout: timeout, now: now}
}

// Select resolves which registered detectors an analysis will run.
func (p *Pipeline) Select(settings *models.ModerationSettings, opts AnalyzeOptions) ([]detectors.Detector, error) {
	for _, c := range opts.Detectors {
		if !detectors.IsCategory(string(c)) {
			return nil, invalid("options.detectors", "unknown detector %q", c)
		}
	}
	requested := make(map[detectors.Category]bool, len(opts.Detectors))
	for _, c := range opts.Detectors {
		requested[c] = true
	}

	var out []detectors.Detector
	for _, c := range p.set.Categories() {
		if len(requested) > 0 && !requested[c] {
			continue
		}
		if !opts.Force && !settings.IsEnabled(c) {
			continue
		}
		if d, ok := p.set.Get(c); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (p *Pipeline) Run(ctx context.Context, text string, settings *models.ModerationSettings, opts AnalyzeOptions) (*models.AnalysisResult, error) {
	selected, err := p.Select(settings, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]detectors.Result, len(selected))
	var wg sync.WaitGroup
	for i, d := range selected {
		i, d := i, d
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = p.runDetector(ctx, d, text)
		}()
	}
	wg.Wait()

	analysis := Aggregate(results, settings.FlagThreshold)
	analysis.AnalyzedAt = p.now()
	analysisDuration.WithLabelValues(string(analysis.RecommendedAction)).Observe(time.Since(start).Seconds())
	return analysis, nil
}

func (p *Pipeline) runDetector(ctx context.Context, d detectors.Detector, text string) detectors.Result {
	cat := d.Category()
	start := time.Now()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	done := make(chan detectors.Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("detector %s panicked: %v", cat, r)
				sentry.CaptureException(err)
				done <- detectors.Fault(cat, err)
			}
		}()
		res, err := d.Detect(ctx, text)
		if err != nil {
			done <- detectors.Fault(cat, err)
			return
		}
		res.Category = cat
		if res.Evidence == nil {
			res.Evidence = []string{}
		}
		done <- res
	}()

	var res detectors.Result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = detectors.Fault(cat, fmt.Errorf("detector %s: %w", cat, ctx.Err()))
	}

	elapsed := time.Since(start)
	res.LatencyMs = elapsed.Milliseconds()
	detectorDuration.WithLabelValues(string(cat)).Observe(elapsed.Seconds())
	if res.Faulted() {
		detectorFaults.WithLabelValues(string(cat)).Inc()
		slog.Warn("detector fault", "category", cat, "error", res.Error)
	}
	return res
}
