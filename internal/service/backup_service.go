package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"wellnesstracker/internal/models"
)

// BackupVersion is written into every export.
const BackupVersion = "1.0"

// BackupData represents the complete response table backup structure
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Responses  []ResponseBackup `json:"responses"`
}

// ResponseBackup represents a stored check-in for backup
type ResponseBackup struct {
	PlayerName          string                 `json:"player_name"`
	Date                string                 `json:"date"`
	SleepQuality        int                    `json:"sleep_quality"`
	SorenessLevel       int                    `json:"soreness_level"`
	EnergyLevel         int                    `json:"energy_level"`
	ReadinessScore      int                    `json:"readiness_score"`
	AdditionalResponses models.CustomResponses `json:"additional_responses"`
}

func newResponseBackup(e models.WellnessEntry) ResponseBackup {
	return ResponseBackup{
		PlayerName:          e.PlayerName,
		Date:                e.Date,
		SleepQuality:        e.SleepQuality,
		SorenessLevel:       e.SorenessLevel,
		EnergyLevel:         e.EnergyLevel,
		ReadinessScore:      e.ReadinessScore,
		AdditionalResponses: e.AdditionalResponses,
	}
}

func (b ResponseBackup) entry() models.WellnessEntry {
	return models.WellnessEntry{
		PlayerName:          b.PlayerName,
		Date:                b.Date,
		SleepQuality:        b.SleepQuality,
		SorenessLevel:       b.SorenessLevel,
		EnergyLevel:         b.EnergyLevel,
		ReadinessScore:      b.ReadinessScore,
		AdditionalResponses: b.AdditionalResponses,
	}
}

// BackupStore is the part of the response store a backup needs.
type BackupStore interface {
	EntryLister
	EntryAppender
}

// BackupService handles response table backup and restore operations
type BackupService struct {
	store  BackupStore
	logger *zap.Logger
	now    func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(store BackupStore, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{store: store, logger: logger, now: time.Now}
}

// Export writes a backup of every stored response to outputPath
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := s.ExportToWriter(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	s.logger.Info("backup exported", zap.String("path", outputPath))
	return nil
}

// ExportToWriter writes the backup as indented JSON to w
func (s *BackupService) ExportToWriter(w io.Writer) error {
	entries := s.store.All()

	backup := BackupData{
		Version:    BackupVersion,
		ExportedAt: s.now().UTC(),
		Responses:  make([]ResponseBackup, 0, len(entries)),
	}
	for _, e := range entries {
		backup.Responses = append(backup.Responses, newResponseBackup(e))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Debug("backup encoded", zap.Int("responses", len(backup.Responses)))
	return nil
}

// Import appends every response in the backup at inputPath to the store
// and returns how many rows were added.
func (s *BackupService) Import(inputPath string) (int, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader decodes a backup and appends its rows in order. Every row
// is validated before the first append so a bad backup adds nothing.
func (s *BackupService) ImportFromReader(reader io.Reader) (int, error) {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return 0, fmt.Errorf("failed to decode backup: %w", err)
	}

	s.logger.Info("importing backup",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.Int("responses", len(backup.Responses)),
	)

	entries := make([]models.WellnessEntry, 0, len(backup.Responses))
	for i, b := range backup.Responses {
		e := b.entry()
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("response %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}

	for i, e := range entries {
		if err := s.store.Append(e); err != nil {
			return i, fmt.Errorf("failed to import response %d: %w", i+1, err)
		}
	}

	s.logger.Info("backup imported", zap.Int("responses", len(entries)))
	return len(entries), nil
}
