package handlers

import (
	"html/template"

	"wellnesstracker/internal/models"
	"wellnesstracker/internal/service"
)

type ScoreField struct {
	Metric models.Metric
	Name   string
	Value  int
}

type SubmitViewData struct {
	Title         string
	ActivePage    string
	CSRFField     template.HTML
	Flash         string
	Error         string
	Form          service.CheckInForm
	Roster        []string
	Scores        []ScoreField
	ResponseKinds []models.ResponseKind
	MinScore      int
	MaxScore      int
	MinCustom     int
	MaxCustom     int
}

type ResultsViewData struct {
	Title        string
	ActivePage   string
	Report       service.Report
	LowScore     int
	MinThreshold int
	MaxThreshold int
}
