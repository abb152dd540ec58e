package services

import (
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
)

// HighSeverityScore is the score at which any category is high severity.
const HighSeverityScore = 0.8

// blockEligible categories may block outright once they reach high severity.
var blockEligible = map[detectors.Category]bool{
	detectors.CategoryThreat: true,
}

// Aggregate folds detector results into severity and a recommended action.
// Block always wins over flag, and nothing over threshold is approved.
func Aggregate(results []detectors.Result, threshold float64) *models.AnalysisResult {
	a := &models.AnalysisResult{
		Scores:              make(map[detectors.Category]float64, len(results)),
		TriggeredCategories: []detectors.Category{},
		Detectors:           results,
		Threshold:           threshold,
	}
	if a.Detectors == nil {
		a.Detectors = []detectors.Result{}
	}

	var overThreshold, high, blocking bool
	triggered := make(map[detectors.Category]bool)
	for _, r := range results {
		a.Scores[r.Category] = r.Score
		if r.Faulted() {
			a.DetectorFaults++
			continue
		}
		if r.HardBlock {
			blocking = true
			high = true
			triggered[r.Category] = true
			if r.Category == detectors.CategorySpam {
				a.IsSpam = true
			}
		}
		if r.Score >= threshold {
			overThreshold = true
			triggered[r.Category] = true
		}
		if r.Score >= HighSeverityScore {
			high = true
			if blockEligible[r.Category] {
				blocking = true
				triggered[r.Category] = true
			}
		}
	}
	for c := range triggered {
		a.TriggeredCategories = append(a.TriggeredCategories, c)
	}
	detectors.SortCategories(a.TriggeredCategories)

	switch {
	case high:
		a.OverallSeverity = models.SeverityHigh
	case overThreshold:
		a.OverallSeverity = models.SeverityMedium
	default:
		a.OverallSeverity = models.SeverityLow
	}

	switch {
	case high && blocking:
		a.RecommendedAction = models.ActionBlock
	case overThreshold:
		a.RecommendedAction = models.ActionFlag
	default:
		a.RecommendedAction = models.ActionApprove
	}

	// nothing ran cleanly: a human decides instead of a silent approve
	if a.AllFaulted() {
		a.RecommendedAction = models.ActionFlag
		a.OverallSeverity = models.SeverityMedium
	}
	return a
}
