package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"wellnesstracker/internal/models"
)

var (
	// ErrStoreClosed is returned by Append after Close.
	ErrStoreClosed = errors.New("response store is closed")
	// ErrMalformedFile wraps every parse failure of the backing file.
	ErrMalformedFile = errors.New("malformed response file")
)

// Column names of the backing file, in file order
const (
	ColumnPlayerName          = "playerName"
	ColumnDate                = "date"
	ColumnSleepQuality        = "sleepQuality"
	ColumnSorenessLevel       = "sorenessLevel"
	ColumnEnergyLevel         = "energyLevel"
	ColumnReadinessScore      = "readinessScore"
	ColumnAdditionalResponses = "additionalResponses"
)

var columns = []string{
	ColumnPlayerName,
	ColumnDate,
	ColumnSleepQuality,
	ColumnSorenessLevel,
	ColumnEnergyLevel,
	ColumnReadinessScore,
	ColumnAdditionalResponses,
}

// Header names written by the first version of the tracker.
var legacyColumns = map[string]string{
	"player_name":          ColumnPlayerName,
	"sleep_quality":        ColumnSleepQuality,
	"soreness_level":       ColumnSorenessLevel,
	"energy_level":         ColumnEnergyLevel,
	"readiness_score":      ColumnReadinessScore,
	"additional_questions": ColumnAdditionalResponses,
}

// ResponseStore is the append-only table of check-ins. It is loaded once from
// a CSV file and rewrites that file in full after every append.
type ResponseStore struct {
	path   string
	mu     sync.Mutex
	rows   []models.WellnessEntry
	closed bool
}

// OpenResponseStore loads the table at path. A missing file yields an empty
// table; any parse failure is reported wrapping ErrMalformedFile.
func OpenResponseStore(path string) (*ResponseStore, error) {
	s := &ResponseStore{path: path}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open response file: %w", err)
	}
	defer f.Close()

	rows, err := readEntries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.rows = rows
	return s, nil
}

// Columns returns the fixed column set of the table.
func (s *ResponseStore) Columns() []string {
	return append([]string(nil), columns...)
}

// Path returns the backing file location.
func (s *ResponseStore) Path() string {
	return s.path
}

// Count returns the number of stored rows.
func (s *ResponseStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// All returns a copy of every row in insertion order.
func (s *ResponseStore) All() []models.WellnessEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.WellnessEntry, len(s.rows))
	for i, row := range s.rows {
		out[i] = row.Clone()
	}
	return out
}

// Append adds entry to the table and rewrites the backing file. If the write
// fails the row stays in memory and the error is returned.
func (s *ResponseStore) Append(entry models.WellnessEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.rows = append(s.rows, entry.Clone())
	if err := s.save(); err != nil {
		return fmt.Errorf("failed to rewrite %s: %w", s.path, err)
	}
	return nil
}

// Close ends the session; later appends fail with ErrStoreClosed.
func (s *ResponseStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// fileMode is used when the backing file does not exist yet.
const fileMode os.FileMode = 0o644

func (s *ResponseStore) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	// CreateTemp makes 0600 files; keep the mode other readers rely on.
	mode := fileMode
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}

	if err := writeEntries(tmp, s.rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func writeEntries(w io.Writer, rows []models.WellnessEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		extra, err := row.AdditionalResponses.MarshalText()
		if err != nil {
			return err
		}
		record := []string{
			row.PlayerName,
			row.Date,
			strconv.Itoa(row.SleepQuality),
			strconv.Itoa(row.SorenessLevel),
			strconv.Itoa(row.EnergyLevel),
			strconv.Itoa(row.ReadinessScore),
			string(extra),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readEntries(r io.Reader) ([]models.WellnessEntry, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	rows := []models.WellnessEntry{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}

		line, _ := cr.FieldPos(0)
		entry, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedFile, line, err)
		}
		rows = append(rows, entry)
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if canonical, ok := legacyColumns[name]; ok {
			name = canonical
		}
		index[name] = i
	}
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedFile, c)
		}
	}
	return index, nil
}

func parseRecord(record []string, index map[string]int) (models.WellnessEntry, error) {
	entry := models.WellnessEntry{
		PlayerName: record[index[ColumnPlayerName]],
		Date:       strings.TrimSpace(record[index[ColumnDate]]),
	}

	scoreColumns := map[models.Metric]string{
		models.MetricSleepQuality:   ColumnSleepQuality,
		models.MetricSorenessLevel:  ColumnSorenessLevel,
		models.MetricEnergyLevel:    ColumnEnergyLevel,
		models.MetricReadinessScore: ColumnReadinessScore,
	}
	for _, m := range models.Metrics {
		raw := strings.TrimSpace(record[index[scoreColumns[m]]])
		v, err := strconv.Atoi(raw)
		if err != nil {
			return models.WellnessEntry{}, fmt.Errorf("%s: %q is not an integer", scoreColumns[m], raw)
		}
		entry.SetScore(m, v)
	}

	if err := entry.AdditionalResponses.UnmarshalText([]byte(record[index[ColumnAdditionalResponses]])); err != nil {
		return models.WellnessEntry{}, err
	}
	if err := entry.Validate(); err != nil {
		return models.WellnessEntry{}, err
	}
	return entry, nil
}
