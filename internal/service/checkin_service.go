package service

import (
	"fmt"
	"time"

	"wellnesstracker/internal/models"
	"wellnesstracker/internal/validation"
)

// EntryAppender is the write side of the response store.
type EntryAppender interface {
	Append(entry models.WellnessEntry) error
}

// CustomQuestion is one extra question filled in on the form. Only the value
// matching Kind is used.
type CustomQuestion struct {
	Label  string
	Kind   models.ResponseKind
	Scale  int
	Text   string
	Binary bool
}

// Response returns the typed answer selected by Kind.
func (q CustomQuestion) Response() models.CustomResponse {
	switch q.Kind {
	case models.ResponseText:
		return models.TextResponse(q.Text)
	case models.ResponseBinary:
		return models.BinaryResponse(q.Binary)
	}
	return models.ScaleResponse(q.Scale)
}

// CheckInForm holds the submitted form values before they become an entry.
type CheckInForm struct {
	Date           string
	PlayerName     string
	SleepQuality   int
	SorenessLevel  int
	EnergyLevel    int
	ReadinessScore int

	CustomEnabled   bool
	CustomQuestions []CustomQuestion
}

// Score returns the form value of a fixed metric.
func (f CheckInForm) Score(m models.Metric) int {
	return f.entry().Score(m)
}

// SetScore assigns the form value of a fixed metric.
func (f *CheckInForm) SetScore(m models.Metric, value int) {
	e := f.entry()
	e.SetScore(m, value)
	f.SleepQuality = e.SleepQuality
	f.SorenessLevel = e.SorenessLevel
	f.EnergyLevel = e.EnergyLevel
	f.ReadinessScore = e.ReadinessScore
}

func (f CheckInForm) entry() models.WellnessEntry {
	return models.WellnessEntry{
		PlayerName:     f.PlayerName,
		Date:           f.Date,
		SleepQuality:   f.SleepQuality,
		SorenessLevel:  f.SorenessLevel,
		EnergyLevel:    f.EnergyLevel,
		ReadinessScore: f.ReadinessScore,
	}
}

// CheckInService validates check-ins and appends them to the store
type CheckInService struct {
	store  EntryAppender
	roster []string
}

// NewCheckInService creates a new check-in service
func NewCheckInService(store EntryAppender, roster []string) *CheckInService {
	return &CheckInService{
		store:  store,
		roster: append([]string(nil), roster...),
	}
}

// Roster returns the selectable player names.
func (s *CheckInService) Roster() []string {
	return append([]string(nil), s.roster...)
}

// DefaultForm returns the Idle form: today's date, the first player, every
// slider at its midpoint and one blank custom question ready to show.
func (s *CheckInService) DefaultForm(now time.Time) CheckInForm {
	form := CheckInForm{
		Date:           now.Format(validation.DateLayout),
		SleepQuality:   models.DefaultScore,
		SorenessLevel:  models.DefaultScore,
		EnergyLevel:    models.DefaultScore,
		ReadinessScore: models.DefaultScore,
	}
	if len(s.roster) > 0 {
		form.PlayerName = s.roster[0]
	}
	form.CustomQuestions = ResizeQuestions(nil, models.MinCustomQuestions)
	return form
}

// ResizeQuestions returns questions grown with blank defaults or cut to n.
func ResizeQuestions(questions []CustomQuestion, n int) []CustomQuestion {
	out := make([]CustomQuestion, n)
	copy(out, questions)
	for i := len(questions); i < n; i++ {
		out[i] = CustomQuestion{
			Kind:   models.ResponseScale,
			Scale:  models.DefaultScore,
			Binary: true,
		}
	}
	return out
}

// Submit validates the form and appends exactly one entry. Input problems are
// returned as validation.ValidationError; store failures are wrapped.
func (s *CheckInService) Submit(form CheckInForm) (models.WellnessEntry, error) {
	entry, err := s.BuildEntry(form)
	if err != nil {
		return models.WellnessEntry{}, err
	}
	if err := s.store.Append(entry); err != nil {
		return entry, fmt.Errorf("failed to record check-in for %s: %w", entry.PlayerName, err)
	}
	return entry, nil
}

// BuildEntry converts the form into a validated entry without storing it.
func (s *CheckInService) BuildEntry(form CheckInForm) (models.WellnessEntry, error) {
	if err := validation.ValidateOneOf("player_name", form.PlayerName, s.roster); err != nil {
		return models.WellnessEntry{}, err
	}

	entry := form.entry()
	if form.CustomEnabled {
		n := len(form.CustomQuestions)
		if err := validation.ValidateRange("custom_count", n, models.MinCustomQuestions, models.MaxCustomQuestions); err != nil {
			return models.WellnessEntry{}, err
		}
		for _, q := range form.CustomQuestions {
			entry.AdditionalResponses.Set(q.Label, q.Response())
		}
	}

	if err := entry.Validate(); err != nil {
		return models.WellnessEntry{}, err
	}
	return entry, nil
}
