package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"wellnesstracker/internal/metrics"
	"wellnesstracker/internal/models"
	"wellnesstracker/internal/service"
	"wellnesstracker/internal/templates"
	"wellnesstracker/internal/validation"
)

// ResultsHandler handles the View Results page and its workbook export
type ResultsHandler struct {
	results   *service.ResultsService
	templates *templates.Templates
	metrics   *metrics.Recorder
	logger    *zap.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(results *service.ResultsService, tmpl *templates.Templates, rec *metrics.Recorder, logger *zap.Logger) *ResultsHandler {
	return &ResultsHandler{
		results:   results,
		templates: tmpl,
		metrics:   rec,
		logger:    logger,
	}
}

// ShowResults renders the table, summary and threshold-filtered rows.
func (h *ResultsHandler) ShowResults(w http.ResponseWriter, r *http.Request) {
	report, ok := h.buildReport(w, r)
	if !ok {
		return
	}

	data := ResultsViewData{
		Title:        "View Results",
		ActivePage:   "results",
		Report:       report,
		LowScore:     models.LowScoreThreshold,
		MinThreshold: models.MinFilterThreshold,
		MaxThreshold: models.MaxFilterThreshold,
	}

	var buf bytes.Buffer
	if err := h.templates.Render(&buf, PageResults, data); err != nil {
		respondWithError(h.logger, w, http.StatusInternalServerError, ErrInternalServerError, "error rendering template", err)
		return
	}

	h.metrics.RecordResultsRender()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// ExportWorkbook downloads the results as an xlsx workbook.
func (h *ResultsHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	report, ok := h.buildReport(w, r)
	if !ok {
		return
	}
	if report.Empty() {
		http.Error(w, ErrNoData, http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteWorkbook(&buf, report); err != nil {
		respondWithError(h.logger, w, http.StatusInternalServerError, ErrInternalServerError, "error building workbook", err)
		return
	}

	h.metrics.RecordExport()
	w.Header().Set("Content-Type", workbookContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+workbookFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

func (h *ResultsHandler) buildReport(w http.ResponseWriter, r *http.Request) (service.Report, bool) {
	threshold := models.DefaultFilterThreshold
	if raw := r.URL.Query().Get(QueryThreshold); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(h.logger, w, http.StatusBadRequest, "threshold: must be a whole number", "", nil)
			return service.Report{}, false
		}
		threshold = v
	}

	report, err := h.results.Build(threshold)
	if err != nil {
		if validation.IsValidationError(err) {
			respondWithError(h.logger, w, http.StatusBadRequest, err.Error(), "", nil)
			return service.Report{}, false
		}
		respondWithError(h.logger, w, http.StatusInternalServerError, ErrInternalServerError, "error building report", err)
		return service.Report{}, false
	}
	return report, true
}
