package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wellnesstracker/internal/config"
	"wellnesstracker/internal/logging"
	"wellnesstracker/internal/models"
	"wellnesstracker/internal/repository"
	"wellnesstracker/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand shares once the root pre-run has opened
// the response table.
type app struct {
	dataFile string
	logLevel string

	logger *zap.Logger
	store  *repository.ResponseStore
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up, restore and export the wellness response table",
		Long: `Maintenance commands for the wellness response table.

Available subcommands:
  export - Write every response to a JSON backup
  import - Append the responses from a JSON backup
  xlsx   - Write the results workbook`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.dataFile, "data-file", "", "Response table path (default DATA_FILE or wellness_data.csv)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (default LOG_LEVEL or info)")

	rootCmd.AddCommand(a.exportCmd(), a.importCmd(), a.xlsxCmd())
	return rootCmd
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dataFile == "" {
		a.dataFile = cfg.DataFile
	}
	if a.logLevel == "" {
		a.logLevel = cfg.LogLevel
	}

	a.logger, err = logging.New(a.logLevel, "console")
	if err != nil {
		return err
	}

	a.store, err = repository.OpenResponseStore(a.dataFile)
	if err != nil {
		return err
	}
	a.logger.Debug("response store opened", zap.String("path", a.dataFile), zap.Int("rows", a.store.Count()))
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		a.logger.Sync()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [output.json]",
		Short: "Write every response to a JSON backup",
		Long: `Write every stored response to a JSON backup file.

The output defaults to backup_YYYYMMDD_HHMMSS.json in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			if len(args) == 1 {
				outputPath = args[0]
			}
			if err := ensureDir(outputPath); err != nil {
				return err
			}

			if err := service.NewBackupService(a.store, a.logger).Export(outputPath); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d responses to %s\n", a.store.Count(), outputPath)
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <input.json>",
		Short: "Append the responses from a JSON backup",
		Long: `Append every response in a JSON backup to the response table.

Rows already in the table are kept. The whole backup is validated before
anything is written.

Stop the server before importing. A running server keeps its own copy of
the table and its next submission rewrites the file without the imported
rows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := service.NewBackupService(a.store, a.logger).Import(args[0])
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d responses into %s\n", n, a.dataFile)
			return nil
		},
	}
}

func (a *app) xlsxCmd() *cobra.Command {
	var threshold int

	cmd := &cobra.Command{
		Use:   "xlsx <output.xlsx>",
		Short: "Write the results workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := service.NewResultsService(a.store).Build(threshold)
			if err != nil {
				return err
			}
			if report.Empty() {
				return fmt.Errorf("no responses in %s", a.dataFile)
			}
			if err := ensureDir(args[0]); err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create workbook: %w", err)
			}
			if err := service.WriteWorkbook(f, report); err != nil {
				f.Close()
				return fmt.Errorf("failed to write workbook: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d responses to %s\n", len(report.Entries), args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", models.DefaultFilterThreshold, "Flag players with any score below this value")
	return cmd
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
