package models

import (
	"wellnesstracker/internal/validation"
)

// Score bounds and thresholds shared by the form and the results view
const (
	MinScore     = 1
	MaxScore     = 10
	DefaultScore = 5

	// LowScoreThreshold is the fixed cut-off for highlighting: a score is low
	// when it is strictly below this value.
	LowScoreThreshold = 5

	MinFilterThreshold     = 1
	MaxFilterThreshold     = 5
	DefaultFilterThreshold = 3

	MinCustomQuestions = 1
	MaxCustomQuestions = 5
)

// Metric identifies one of the four fixed self-reported scores
type Metric string

const (
	MetricSleepQuality   Metric = "sleepQuality"
	MetricSorenessLevel  Metric = "sorenessLevel"
	MetricEnergyLevel    Metric = "energyLevel"
	MetricReadinessScore Metric = "readinessScore"
)

// Metrics lists the fixed score columns in display order.
var Metrics = []Metric{
	MetricSleepQuality,
	MetricSorenessLevel,
	MetricEnergyLevel,
	MetricReadinessScore,
}

type metricText struct {
	label    string
	question string
	help     string
}

var metricTexts = map[Metric]metricText{
	MetricSleepQuality:   {"Sleep Quality", "Q1: How did you sleep last night?", "1 = Very poor, 10 = Excellent"},
	MetricSorenessLevel:  {"Soreness Level", "Q2: How sore are you?", "1 = Extremely sore, 10 = No soreness"},
	MetricEnergyLevel:    {"Energy Level", "Q3: How would you rate your energy level?", "1 = Very low energy, 10 = High energy"},
	MetricReadinessScore: {"Readiness Score", "Q4: How would you score your readiness?", "1 = Not ready to train, 10 = Fully ready"},
}

// Label returns the column heading for the metric.
func (m Metric) Label() string { return metricTexts[m].label }

// Question returns the prompt shown on the check-in form.
func (m Metric) Question() string { return metricTexts[m].question }

// Help describes the meaning of the scale ends.
func (m Metric) Help() string { return metricTexts[m].help }

// IsLowScore reports whether a fixed metric value should be flagged.
func IsLowScore(value int) bool {
	return value < LowScoreThreshold
}

// WellnessEntry is one player's check-in for one date
type WellnessEntry struct {
	PlayerName          string
	Date                string // "2025-02-20"
	SleepQuality        int
	SorenessLevel       int
	EnergyLevel         int
	ReadinessScore      int
	AdditionalResponses CustomResponses
}

// Score returns the value of a fixed metric.
func (e WellnessEntry) Score(m Metric) int {
	switch m {
	case MetricSleepQuality:
		return e.SleepQuality
	case MetricSorenessLevel:
		return e.SorenessLevel
	case MetricEnergyLevel:
		return e.EnergyLevel
	case MetricReadinessScore:
		return e.ReadinessScore
	}
	return 0
}

// SetScore assigns the value of a fixed metric.
func (e *WellnessEntry) SetScore(m Metric, value int) {
	switch m {
	case MetricSleepQuality:
		e.SleepQuality = value
	case MetricSorenessLevel:
		e.SorenessLevel = value
	case MetricEnergyLevel:
		e.EnergyLevel = value
	case MetricReadinessScore:
		e.ReadinessScore = value
	}
}

// AnyBelow reports whether any fixed metric is strictly below threshold.
func (e WellnessEntry) AnyBelow(threshold int) bool {
	for _, m := range Metrics {
		if e.Score(m) < threshold {
			return true
		}
	}
	return false
}

// Validate checks the row rules: a named player, an ISO date and all
// four scores inside [MinScore, MaxScore].
func (e WellnessEntry) Validate() error {
	if err := validation.ValidateRequired("playerName", e.PlayerName); err != nil {
		return err
	}
	if err := validation.ValidateDate("date", e.Date); err != nil {
		return err
	}
	for _, m := range Metrics {
		if err := validation.ValidateRange(string(m), e.Score(m), MinScore, MaxScore); err != nil {
			return err
		}
	}
	return e.AdditionalResponses.Validate()
}

// Clone returns a copy that shares no mutable state with e.
func (e WellnessEntry) Clone() WellnessEntry {
	e.AdditionalResponses = e.AdditionalResponses.Clone()
	return e
}
