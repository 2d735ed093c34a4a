package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"wellnesstracker/internal/metrics"
	"wellnesstracker/internal/models"
	"wellnesstracker/internal/security"
	"wellnesstracker/internal/service"
	"wellnesstracker/internal/templates"
	"wellnesstracker/internal/validation"
)

// RowCounter reports how many rows the store holds.
type RowCounter interface {
	Count() int
}

// CheckInHandler handles the Submit Response page
type CheckInHandler struct {
	checkIns  *service.CheckInService
	rows      RowCounter
	templates *templates.Templates
	flash     *security.FlashSigner
	metrics   *metrics.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckInHandler creates a new check-in handler
func NewCheckInHandler(checkIns *service.CheckInService, rows RowCounter, tmpl *templates.Templates, flash *security.FlashSigner, rec *metrics.Recorder, logger *zap.Logger) *CheckInHandler {
	return &CheckInHandler{
		checkIns:  checkIns,
		rows:      rows,
		templates: tmpl,
		flash:     flash,
		metrics:   rec,
		logger:    logger,
		now:       time.Now,
	}
}

// ShowForm renders the Idle form. ?custom=N opens N custom question blocks.
func (h *CheckInHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	form := h.checkIns.DefaultForm(h.now())

	if raw := r.URL.Query().Get(QueryCustom); raw != "" {
		n, err := strconv.Atoi(raw)
		if err == nil {
			err = validation.ValidateRange(QueryCustom, n, models.MinCustomQuestions, models.MaxCustomQuestions)
		} else {
			err = validation.ValidationError{Field: QueryCustom, Message: "must be a whole number"}
		}
		if err != nil {
			h.render(w, r, http.StatusBadRequest, form, "", errorMessage(err))
			return
		}
		form.CustomEnabled = true
		form.CustomQuestions = service.ResizeQuestions(form.CustomQuestions, n)
	}

	h.render(w, r, http.StatusOK, form, h.flash.ConsumeFlash(w, r), "")
}

// Submit records one check-in and redirects back to an empty form.
func (h *CheckInHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.metrics.RecordSubmission(metrics.ResultInvalid)
		respondWithError(h.logger, w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}

	if r.PostForm.Get(FieldAction) == ActionResize {
		h.resize(w, r)
		return
	}

	form, err := parseCheckInForm(r.PostForm, h.checkIns.DefaultForm(h.now()))
	if err != nil {
		h.metrics.RecordSubmission(metrics.ResultInvalid)
		h.render(w, r, http.StatusBadRequest, form, "", errorMessage(err))
		return
	}

	entry, err := h.checkIns.Submit(form)
	if err != nil {
		if validation.IsValidationError(err) {
			h.metrics.RecordSubmission(metrics.ResultInvalid)
			h.render(w, r, http.StatusBadRequest, form, "", errorMessage(err))
			return
		}
		h.metrics.RecordSubmission(metrics.ResultFailed)
		h.metrics.SetStoredRows(h.rows.Count())
		respondWithError(h.logger, w, http.StatusInternalServerError, "Failed to save your response", "append failed", err)
		return
	}

	h.metrics.RecordSubmission(metrics.ResultStored)
	h.metrics.SetStoredRows(h.rows.Count())
	h.logger.Info("check-in recorded",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("player", entry.PlayerName),
		zap.String("date", entry.Date),
		zap.Int("custom_questions", entry.AdditionalResponses.Len()),
	)

	message := fmt.Sprintf("Thank you %s! Your response has been recorded.", entry.PlayerName)
	if err := h.flash.SetFlash(w, r, message); err != nil {
		h.logger.Warn("failed to set flash", zap.Error(err))
	}
	http.Redirect(w, r, "/submit", http.StatusSeeOther)
}

// resize changes the number of custom question blocks and re-renders the
// form with everything already entered. Nothing is stored.
func (h *CheckInHandler) resize(w http.ResponseWriter, r *http.Request) {
	form, _ := parseCheckInForm(r.PostForm, h.checkIns.DefaultForm(h.now()))

	n, err := formInt(r.PostForm, FieldCustomCount)
	if err == nil {
		err = validation.ValidateRange(FieldCustomCount, n, models.MinCustomQuestions, models.MaxCustomQuestions)
	}
	if err != nil {
		h.render(w, r, http.StatusBadRequest, form, "", errorMessage(err))
		return
	}

	form.CustomEnabled = true
	form.CustomQuestions = service.ResizeQuestions(form.CustomQuestions, n)
	h.render(w, r, http.StatusOK, form, "", "")
}

func (h *CheckInHandler) render(w http.ResponseWriter, r *http.Request, status int, form service.CheckInForm, flash, errMsg string) {
	scores := make([]ScoreField, 0, len(models.Metrics))
	for _, m := range models.Metrics {
		scores = append(scores, ScoreField{Metric: m, Name: scoreFields[m], Value: form.Score(m)})
	}

	data := SubmitViewData{
		Title:         "Submit Response",
		ActivePage:    "submit",
		CSRFField:     security.CSRFTemplateField(r),
		Flash:         flash,
		Error:         errMsg,
		Form:          form,
		Roster:        h.checkIns.Roster(),
		Scores:        scores,
		ResponseKinds: models.ResponseKinds,
		MinScore:      models.MinScore,
		MaxScore:      models.MaxScore,
		MinCustom:     models.MinCustomQuestions,
		MaxCustom:     models.MaxCustomQuestions,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, PageSubmit, data); err != nil {
		h.logger.Error("error rendering template", zap.String("template", PageSubmit), zap.Error(err))
	}
}

// parseCheckInForm reads the posted values over defaults. On error the
// returned form still holds everything that parsed, for re-rendering.
func parseCheckInForm(values url.Values, defaults service.CheckInForm) (service.CheckInForm, error) {
	form := defaults
	form.Date = strings.TrimSpace(values.Get(FieldDate))
	form.PlayerName = values.Get(FieldPlayerName)

	var errs []error
	for _, m := range models.Metrics {
		v, err := formInt(values, scoreFields[m])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		form.SetScore(m, v)
	}

	form.CustomEnabled = values.Get(FieldCustomEnabled) != ""
	count, err := formInt(values, FieldCustomCount)
	if err != nil || count < models.MinCustomQuestions || count > models.MaxCustomQuestions {
		if form.CustomEnabled {
			errs = append(errs, validation.ValidationError{
				Field:   FieldCustomCount,
				Message: fmt.Sprintf("must be between %d and %d", models.MinCustomQuestions, models.MaxCustomQuestions),
			})
		}
		return form, errors.Join(errs...)
	}

	questions := service.ResizeQuestions(nil, count)
	for i := range questions {
		q, err := parseCustomQuestion(values, i+1, questions[i])
		if err != nil && form.CustomEnabled {
			errs = append(errs, err)
		}
		questions[i] = q
	}
	form.CustomQuestions = questions

	return form, errors.Join(errs...)
}

func parseCustomQuestion(values url.Values, n int, q service.CustomQuestion) (service.CustomQuestion, error) {
	q.Label = values.Get(customField("label", n))
	q.Text = values.Get(customField("text", n))
	q.Binary = values.Get(customField("binary", n)) != models.AnswerNo

	rawKind := values.Get(customField("kind", n))
	kind, ok := models.ParseResponseKind(rawKind)
	if !ok {
		return q, validation.ValidationError{Field: customField("kind", n), Message: fmt.Sprintf("%q is not a recognised input type", rawKind)}
	}
	q.Kind = kind

	if values.Has(customField("scale", n)) {
		v, err := formInt(values, customField("scale", n))
		if err != nil {
			if kind == models.ResponseScale {
				return q, err
			}
			return q, nil
		}
		q.Scale = v
	}
	return q, nil
}

func formInt(values url.Values, field string) (int, error) {
	raw := strings.TrimSpace(values.Get(field))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.ValidationError{Field: field, Message: "must be a whole number"}
	}
	return v, nil
}

// errorMessage renders validation failures for the user, one per line.
func errorMessage(err error) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		msgs := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, errorMessage(e))
		}
		return strings.Join(msgs, "; ")
	}
	if validation.IsValidationError(err) {
		return err.Error()
	}
	return ErrInvalidFormData
}
