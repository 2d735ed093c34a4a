package service

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wellnesstracker/internal/models"
	"wellnesstracker/internal/repository"
	"wellnesstracker/internal/validation"
)

type memStore struct {
	rows      []models.WellnessEntry
	appendErr error
}

func (m *memStore) All() []models.WellnessEntry {
	return append([]models.WellnessEntry(nil), m.rows...)
}

func (m *memStore) Append(e models.WellnessEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.rows = append(m.rows, e)
	return nil
}

var testRoster = []string{"John Smith", "Emma Rodriguez", "Michael Johnson"}

func entryWith(player string, sleep, soreness, energy, readiness int) models.WellnessEntry {
	return models.WellnessEntry{
		PlayerName:     player,
		Date:           "2024-03-18",
		SleepQuality:   sleep,
		SorenessLevel:  soreness,
		EnergyLevel:    energy,
		ReadinessScore: readiness,
	}
}

func validForm() CheckInForm {
	return CheckInForm{
		Date:           "2024-03-18",
		PlayerName:     "Emma Rodriguez",
		SleepQuality:   7,
		SorenessLevel:  4,
		EnergyLevel:    6,
		ReadinessScore: 8,
	}
}

func TestDefaultForm(t *testing.T) {
	svc := NewCheckInService(&memStore{}, testRoster)
	form := svc.DefaultForm(time.Date(2025, 2, 20, 9, 30, 0, 0, time.UTC))

	assert.Equal(t, "2025-02-20", form.Date)
	assert.Equal(t, "John Smith", form.PlayerName)
	assert.Equal(t, 5, form.SleepQuality)
	assert.Equal(t, 5, form.SorenessLevel)
	assert.Equal(t, 5, form.EnergyLevel)
	assert.Equal(t, 5, form.ReadinessScore)
	assert.False(t, form.CustomEnabled)
	require.Len(t, form.CustomQuestions, 1)
	assert.Equal(t, models.ResponseScale, form.CustomQuestions[0].Kind)
}

func TestResizeQuestions(t *testing.T) {
	qs := []CustomQuestion{{Label: "Hydration", Kind: models.ResponseText, Text: "ok"}}

	grown := ResizeQuestions(qs, 3)
	require.Len(t, grown, 3)
	assert.Equal(t, "Hydration", grown[0].Label)
	assert.Equal(t, models.DefaultScore, grown[2].Scale)

	assert.Len(t, ResizeQuestions(grown, 1), 1)
}

func TestSubmitAppendsOneEntry(t *testing.T) {
	store := &memStore{}
	svc := NewCheckInService(store, testRoster)

	entry, err := svc.Submit(validForm())
	require.NoError(t, err)
	require.Len(t, store.rows, 1)
	assert.Equal(t, entry, store.rows[0])
	assert.True(t, entry.AdditionalResponses.IsEmpty())

	_, err = svc.Submit(validForm())
	require.NoError(t, err)
	assert.Len(t, store.rows, 2, "identical submissions are both recorded")
}

func TestSubmitCustomQuestions(t *testing.T) {
	store := &memStore{}
	svc := NewCheckInService(store, testRoster)

	form := validForm()
	form.CustomEnabled = true
	form.CustomQuestions = []CustomQuestion{
		{Label: "Hydration", Kind: models.ResponseScale, Scale: 3, Text: "ignored"},
		{Label: "Notes", Kind: models.ResponseText, Text: "tight calf"},
		{Label: "Iced?", Kind: models.ResponseBinary, Binary: false},
	}

	entry, err := svc.Submit(form)
	require.NoError(t, err)
	assert.Equal(t, "Hydration: 3; Notes: tight calf; Iced?: No", entry.AdditionalResponses.Display())
}

func TestSubmitIgnoresQuestionsWhenDisabled(t *testing.T) {
	store := &memStore{}
	svc := NewCheckInService(store, testRoster)

	form := validForm()
	form.CustomQuestions = []CustomQuestion{{Label: "Hydration", Kind: models.ResponseScale, Scale: 3}}

	entry, err := svc.Submit(form)
	require.NoError(t, err)
	assert.True(t, entry.AdditionalResponses.IsEmpty())
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *CheckInForm)
	}{
		{name: "player not on roster", mutate: func(f *CheckInForm) { f.PlayerName = "Nobody" }},
		{name: "sleep out of range", mutate: func(f *CheckInForm) { f.SleepQuality = 0 }},
		{name: "readiness out of range", mutate: func(f *CheckInForm) { f.ReadinessScore = 11 }},
		{name: "bad date", mutate: func(f *CheckInForm) { f.Date = "yesterday" }},
		{name: "no custom questions", mutate: func(f *CheckInForm) { f.CustomEnabled = true }},
		{
			name: "too many custom questions",
			mutate: func(f *CheckInForm) {
				f.CustomEnabled = true
				f.CustomQuestions = ResizeQuestions(nil, 6)
			},
		},
		{
			name: "custom scale out of range",
			mutate: func(f *CheckInForm) {
				f.CustomEnabled = true
				f.CustomQuestions = []CustomQuestion{{Label: "Hydration", Kind: models.ResponseScale, Scale: 0}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			svc := NewCheckInService(store, testRoster)
			form := validForm()
			tt.mutate(&form)

			_, err := svc.Submit(form)
			require.Error(t, err)
			assert.True(t, validation.IsValidationError(err), "got %v", err)
			assert.Empty(t, store.rows)
		})
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	diskFull := errors.New("disk full")
	svc := NewCheckInService(&memStore{appendErr: diskFull}, testRoster)

	_, err := svc.Submit(validForm())
	require.Error(t, err)
	assert.ErrorIs(t, err, diskFull)
	assert.False(t, validation.IsValidationError(err))
}

func TestAverageAndLowCount(t *testing.T) {
	var entries []models.WellnessEntry
	for _, v := range []int{2, 4, 6, 8} {
		entries = append(entries, entryWith("John Smith", v, 7, 7, 7))
	}

	assert.InDelta(t, 5.0, Average(entries, models.MetricSleepQuality), 1e-9)
	assert.Equal(t, 2, LowScoreCount(entries, models.MetricSleepQuality))
	assert.Equal(t, 0, LowScoreCount(entries, models.MetricEnergyLevel))
	assert.Equal(t, 0.0, Average(nil, models.MetricSleepQuality))
}

func TestFilterBelow(t *testing.T) {
	entries := []models.WellnessEntry{
		entryWith("John Smith", 7, 7, 7, 1),
		entryWith("Emma Rodriguez", 7, 7, 7, 3),
		entryWith("Michael Johnson", 7, 7, 7, 6),
	}

	got := FilterBelow(entries, 3)
	require.Len(t, got, 1)
	assert.Equal(t, "John Smith", got[0].PlayerName)

	assert.Len(t, FilterBelow(entries, 4), 2)
	assert.Empty(t, FilterBelow(entries, 1))
}

func TestBuildReport(t *testing.T) {
	store := &memStore{rows: []models.WellnessEntry{
		entryWith("John Smith", 2, 9, 9, 1),
		entryWith("Emma Rodriguez", 4, 9, 9, 3),
		entryWith("Michael Johnson", 6, 9, 9, 6),
		entryWith("John Smith", 8, 9, 9, 9),
	}}
	svc := NewResultsService(store)

	report, err := svc.Build(models.DefaultFilterThreshold)
	require.NoError(t, err)
	assert.False(t, report.Empty())
	assert.Equal(t, 3, report.Threshold)
	require.Len(t, report.Stats, 4)
	assert.Equal(t, models.MetricSleepQuality, report.Stats[0].Metric)
	assert.InDelta(t, 5.0, report.Stats[0].Average, 1e-9)
	assert.Equal(t, 2, report.Stats[0].LowCount)
	assert.Equal(t, 2, report.Stats[3].LowCount)
	require.Len(t, report.Flagged, 1)
	assert.Equal(t, "John Smith", report.Flagged[0].PlayerName)
	assert.Equal(t, 1, report.Flagged[0].ReadinessScore)

	again, err := svc.Build(models.DefaultFilterThreshold)
	require.NoError(t, err)
	if diff := cmp.Diff(report, again); diff != "" {
		t.Errorf("second render differs (-first +second):\n%s", diff)
	}
	assert.Len(t, store.rows, 4)
}

func TestBuildReportEmpty(t *testing.T) {
	report, err := NewResultsService(&memStore{}).Build(3)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Nil(t, report.Stats)
}

func TestBuildReportThresholdRange(t *testing.T) {
	svc := NewResultsService(&memStore{})
	for _, threshold := range []int{0, 6, -1} {
		_, err := svc.Build(threshold)
		assert.True(t, validation.IsValidationError(err), "threshold %d", threshold)
	}
	for threshold := 1; threshold <= 5; threshold++ {
		_, err := svc.Build(threshold)
		assert.NoError(t, err)
	}
}

func TestWriteWorkbook(t *testing.T) {
	e := entryWith("Aisha Patel", 3, 8, 8, 8)
	e.AdditionalResponses.Set("Notes", models.TextResponse("fine"))
	store := &memStore{rows: []models.WellnessEntry{e, entryWith("Ryan Thompson", 9, 9, 9, 9)}}

	report, err := NewResultsService(store).Build(4)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetResponses, SheetSummary, SheetLowScores}, f.GetSheetList())

	rows, err := f.GetRows(SheetResponses)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Player", rows[0][0])
	assert.Equal(t, []string{"Aisha Patel", "2024-03-18", "3", "8", "8", "8", "Notes: fine"}, rows[1])

	lowStyle, err := f.GetCellStyle(SheetResponses, "C2")
	require.NoError(t, err)
	plainStyle, err := f.GetCellStyle(SheetResponses, "D2")
	require.NoError(t, err)
	assert.NotEqual(t, lowStyle, plainStyle)

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 5)
	assert.Equal(t, "Sleep Quality", summary[1][0])
	assert.Equal(t, "6", summary[1][1])
	assert.Equal(t, "1", summary[1][2])

	low, err := f.GetRows(SheetLowScores)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Aisha Patel", low[1][0])
}

func TestBackupRoundTrip(t *testing.T) {
	src := &memStore{}
	first := entryWith("Olivia Chen", 4, 5, 6, 7)
	first.AdditionalResponses.Set("Hydration", models.ScaleResponse(8))
	first.AdditionalResponses.Set("Iced?", models.BinaryResponse(true))
	src.rows = []models.WellnessEntry{first, entryWith("David Kim", 9, 9, 9, 9)}

	exporter := NewBackupService(src, nil)
	exporter.now = func() time.Time { return time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, exporter.ExportToWriter(&buf))
	assert.Contains(t, buf.String(), `"version": "1.0"`)
	assert.Contains(t, buf.String(), `"exported_at": "2025-02-20T12:00:00Z"`)

	dst, err := repository.OpenResponseStore(filepath.Join(t.TempDir(), "restored.csv"))
	require.NoError(t, err)

	n, err := NewBackupService(dst, nil).ImportFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	if diff := cmp.Diff(src.rows, dst.All()); diff != "" {
		t.Errorf("restored rows mismatch (-want +got):\n%s", diff)
	}
}

func TestBackupExportImportFiles(t *testing.T) {
	dir := t.TempDir()
	src := &memStore{rows: []models.WellnessEntry{entryWith("Sophia Lee", 5, 5, 5, 5)}}
	path := filepath.Join(dir, "backup.json")
	require.NoError(t, NewBackupService(src, nil).Export(path))

	dst := &memStore{}
	n, err := NewBackupService(dst, nil).Import(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, src.rows, dst.rows)

	_, err = NewBackupService(dst, nil).Import(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestBackupImportRejectsInvalidRows(t *testing.T) {
	backup := `{"version":"1.0","responses":[
		{"player_name":"John Smith","date":"2024-03-18","sleep_quality":5,"soreness_level":5,"energy_level":5,"readiness_score":5,"additional_responses":"None"},
		{"player_name":"John Smith","date":"2024-03-18","sleep_quality":0,"soreness_level":5,"energy_level":5,"readiness_score":5,"additional_responses":"None"}
	]}`

	dst := &memStore{}
	n, err := NewBackupService(dst, nil).ImportFromReader(strings.NewReader(backup))
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, dst.rows)

	_, err = NewBackupService(dst, nil).ImportFromReader(strings.NewReader("{not json"))
	assert.Error(t, err)
}
