package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"credit-cleaner/config"
	"credit-cleaner/models"
	"credit-cleaner/services"
	"credit-cleaner/storage"
	"credit-cleaner/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerWithLevel(cfg.LogLevel)

	report, err := run(cfg, logger)
	if report != nil {
		services.NewInsightService(logger).Print(report)
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// run loads, cleans and writes the credit application table. The CSV output
// is all-or-nothing; optional exports only run once it exists.
func run(cfg *config.Config, logger *utils.Logger) (*models.InsightReport, error) {
	runID := uuid.NewString()
	logger.Info("=== Credit application cleaning starting (run %s) ===", runID)
	logger.Info("Config: input %s | output %s", cfg.InputPath, cfg.OutputPath())

	raw, err := storage.LoadCSV(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	logger.Info("Loaded %d rows with %d columns", raw.Len(), len(raw.Columns))

	rules := services.WithFoldAccents(services.DefaultRules(), cfg.FoldAccentColumns...)
	cleaner := services.NewCleaner(logger, rules)
	clean, stats, err := cleaner.Clean(raw)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.OutputDir, cfg.OutputFile, cfg.OutputDateLayout)
	if err != nil {
		return nil, err
	}
	if err := csvWriter.Write(clean); err != nil {
		return nil, err
	}
	logger.Info("Cleaned table saved to %s", csvWriter.Path())

	report := services.NewInsightService(logger).Generate(runID, clean, stats, services.LevelColumns(rules))

	exportErrs := export(optionalWriters(cfg, runID, logger), runID, clean, logger)
	return report, errors.Join(exportErrs...)
}

// export writes clean to every optional backend and closes it. Backends that
// can read a run back are checked against the number of rows written.
func export(writers []namedWriter, runID string, clean *models.Table, logger *utils.Logger) []error {
	var errs []error
	for _, w := range writers {
		if w.err != nil {
			logger.Error("%s export unavailable: %v", w.name, w.err)
			errs = append(errs, w.err)
			continue
		}
		if err := w.writer.Write(clean); err != nil {
			logger.Error("%s export failed: %v", w.name, err)
			errs = append(errs, err)
		} else if err := verifyRun(w, runID, clean.Len()); err != nil {
			logger.Error("%s verification failed: %v", w.name, err)
			errs = append(errs, err)
		} else {
			logger.Info("Cleaned table exported to %s", w.name)
		}
		if err := w.writer.Close(); err != nil {
			logger.Error("%s close failed: %v", w.name, err)
			errs = append(errs, fmt.Errorf("%s: close: %w", w.name, err))
		}
	}
	return errs
}

func verifyRun(w namedWriter, runID string, want int) error {
	rr, ok := w.writer.(storage.RunReader)
	if !ok {
		return nil
	}
	stored, err := rr.FetchRun(runID)
	if err != nil {
		return err
	}
	if len(stored) != want {
		return fmt.Errorf("%s: run %s stored %d rows, wrote %d", w.name, runID, len(stored), want)
	}
	return nil
}

type namedWriter struct {
	name   string
	writer storage.TableWriter
	err    error
}

func optionalWriters(cfg *config.Config, runID string, logger *utils.Logger) []namedWriter {
	var out []namedWriter
	if cfg.XLSXOutputPath != "" {
		w, err := storage.NewXLSXWriter(cfg.XLSXOutputPath, cfg.OutputDateLayout)
		out = append(out, namedWriter{name: "xlsx " + cfg.XLSXOutputPath, writer: w, err: err})
	}
	if cfg.PostgresEnabled {
		retry := &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		}
		w, err := storage.NewPostgresWriter(cfg.DSN(), runID, retry)
		out = append(out, namedWriter{name: "postgres (table: credit_applications)", writer: w, err: err})
	}
	return out
}
