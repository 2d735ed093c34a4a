package handlers

import (
	"strconv"

	"wellnesstracker/internal/models"
)

// Form and query field names
const (
	FieldDate          = "date"
	FieldPlayerName    = "player_name"
	FieldCustomEnabled = "custom_enabled"
	FieldCustomCount   = "custom_count"
	FieldAction        = "action"

	// ActionResize re-renders the posted form with a new question count.
	ActionResize = "resize"

	QueryCustom    = "custom"
	QueryThreshold = "threshold"
)

// Page templates
const (
	PageSubmit  = "submit.tmpl"
	PageResults = "results.tmpl"
)

const (
	ErrInvalidFormData     = "Invalid form data"
	ErrInternalServerError = "Internal server error"
	ErrNoData              = "No wellness data available. Please submit some responses first."

	workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	workbookFilename    = "wellness_results.xlsx"
)

var scoreFields = map[models.Metric]string{
	models.MetricSleepQuality:   "sleep_quality",
	models.MetricSorenessLevel:  "soreness_level",
	models.MetricEnergyLevel:    "energy_level",
	models.MetricReadinessScore: "readiness_score",
}

// Custom question fields are numbered from 1.
func customField(kind string, n int) string {
	return "custom_" + kind + "_" + strconv.Itoa(n)
}
