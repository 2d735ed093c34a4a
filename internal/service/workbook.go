package service

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"wellnesstracker/internal/models"
)

// Workbook sheet names
const (
	SheetResponses = "Responses"
	SheetSummary   = "Summary"
	SheetLowScores = "Low Scores"
)

var entryHeader = []interface{}{
	"Player", "Date", "Sleep Quality", "Soreness Level", "Energy Level", "Readiness Score", "Additional Responses",
}

// WriteWorkbook writes the report as an xlsx workbook with the full table,
// the per-metric summary and the threshold-filtered rows. Low scores are
// filled red like on the results page.
func WriteWorkbook(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetResponses); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetLowScores} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	lowStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FF0000"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeEntrySheet(f, SheetResponses, report.Entries, lowStyle, headerStyle); err != nil {
		return err
	}
	if err := writeSummarySheet(f, report, headerStyle); err != nil {
		return err
	}
	if err := writeEntrySheet(f, SheetLowScores, report.Flagged, lowStyle, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeEntrySheet(f *excelize.File, sheet string, entries []models.WellnessEntry, lowStyle, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &entryHeader); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", headerStyle); err != nil {
		return err
	}

	for i, e := range entries {
		row := i + 2
		values := []interface{}{
			e.PlayerName, e.Date,
			e.SleepQuality, e.SorenessLevel, e.EnergyLevel, e.ReadinessScore,
			e.AdditionalResponses.Display(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
		}

		for col, m := range models.Metrics {
			if !models.IsLowScore(e.Score(m)) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+3, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, lowStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report Report, headerStyle int) error {
	header := []interface{}{"Metric", "Average", fmt.Sprintf("Scores below %d", models.LowScoreThreshold)}
	if err := f.SetSheetRow(SheetSummary, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "C1", headerStyle); err != nil {
		return err
	}

	for i, stat := range report.Stats {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{stat.Metric.Label(), stat.Average, stat.LowCount}
		if err := f.SetSheetRow(SheetSummary, cell, &values); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}
