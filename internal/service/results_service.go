package service

import (
	"wellnesstracker/internal/models"
	"wellnesstracker/internal/validation"
)

// EntryLister is the read side of the response store.
type EntryLister interface {
	All() []models.WellnessEntry
}

// MetricStat is the summary of one fixed metric over all rows
type MetricStat struct {
	Metric   models.Metric
	Average  float64
	LowCount int
}

// Report is everything the results view shows.
type Report struct {
	Entries   []models.WellnessEntry
	Stats     []MetricStat
	Threshold int
	Flagged   []models.WellnessEntry
}

// Empty reports whether there is no data to show.
func (r Report) Empty() bool {
	return len(r.Entries) == 0
}

// ResultsService computes the aggregate view of the stored responses. It
// never writes.
type ResultsService struct {
	store EntryLister
}

// NewResultsService creates a new results service
func NewResultsService(store EntryLister) *ResultsService {
	return &ResultsService{store: store}
}

// Build reads a snapshot of the store and summarizes it. The threshold must
// lie in [models.MinFilterThreshold, models.MaxFilterThreshold].
func (s *ResultsService) Build(threshold int) (Report, error) {
	if err := validation.ValidateRange("threshold", threshold, models.MinFilterThreshold, models.MaxFilterThreshold); err != nil {
		return Report{}, err
	}

	entries := s.store.All()
	report := Report{
		Entries:   entries,
		Threshold: threshold,
	}
	if len(entries) == 0 {
		return report, nil
	}

	report.Stats = Summarize(entries)
	report.Flagged = FilterBelow(entries, threshold)
	return report, nil
}

// Summarize returns one MetricStat per fixed metric in display order.
func Summarize(entries []models.WellnessEntry) []MetricStat {
	stats := make([]MetricStat, 0, len(models.Metrics))
	for _, m := range models.Metrics {
		stats = append(stats, MetricStat{
			Metric:   m,
			Average:  Average(entries, m),
			LowCount: LowScoreCount(entries, m),
		})
	}
	return stats
}

// Average is the unweighted mean of metric m, or 0 when there are no rows.
func Average(entries []models.WellnessEntry, m models.Metric) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Score(m)
	}
	return float64(sum) / float64(len(entries))
}

// LowScoreCount counts rows whose metric m is a low score.
func LowScoreCount(entries []models.WellnessEntry, m models.Metric) int {
	n := 0
	for _, e := range entries {
		if models.IsLowScore(e.Score(m)) {
			n++
		}
	}
	return n
}

// FilterBelow keeps the rows where any fixed metric is strictly below
// threshold, preserving order.
func FilterBelow(entries []models.WellnessEntry, threshold int) []models.WellnessEntry {
	out := []models.WellnessEntry{}
	for _, e := range entries {
		if e.AnyBelow(threshold) {
			out = append(out, e)
		}
	}
	return out
}
