package convert

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/har2csv/internal/common"
	"github.com/dtnitsch/har2csv/models"
	"github.com/dtnitsch/har2csv/pkg/db"
	"github.com/dtnitsch/har2csv/pkg/harfile"
	"github.com/dtnitsch/har2csv/pkg/pipeline"
)

func ConvertAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	if c.NArg() != 1 {
		return cli.Exit("Error: expected exactly one HAR file\n\nUsage:\n  har2csv convert search.har\n  har2csv convert search.har -o out/listings.csv\n\nNeed help? Run: har2csv convert --help", common.ExitUsage)
	}

	cfg, err := common.ResolveConfig(c)
	if err != nil {
		logger.Error("failed to resolve configuration", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}

	result, err := ConvertFile(c.Args().First(), c.String("output"), cfg, logger)
	if errors.Is(err, pipeline.ErrNoRecordsFound) {
		logger.Error("no rows found to export", "path", c.Args().First())
		return cli.Exit("No rows found to export.", common.ExitNoData)
	}
	if err != nil {
		logger.Error("conversion failed", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitFailure)
	}

	fmt.Fprintln(c.App.Writer, result.Output)
	return nil
}

// ConvertFile runs the pipeline for one archive and, when cfg.HistoryDB is
// set, records the attempt. A history failure is logged, never returned.
func ConvertFile(input, output string, cfg models.Config, logger *slog.Logger) (*pipeline.Result, error) {
	result, runErr := pipeline.Run(pipeline.Options{
		Input:  input,
		Output: output,
		Config: cfg,
		Logger: logger,
	})

	if cfg.HistoryDB != "" {
		runID, err := RecordRun(cfg.HistoryDB, harfile.SanitizePath(input), cfg, result, runErr)
		if err != nil {
			logger.Warn("failed to record run history", "db", cfg.HistoryDB, "error", err)
		} else {
			logger.Debug("Recorded run", "run_id", runID, "db", cfg.HistoryDB)
		}
	}

	return result, runErr
}

// RecordRun stores the outcome of one conversion in the history database at dbPath.
func RecordRun(dbPath, input string, cfg models.Config, result *pipeline.Result, runErr error) (string, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	return database.InsertRun(NewRunRecord(input, cfg, result, runErr))
}

// NewRunRecord maps a pipeline outcome onto a history row.
func NewRunRecord(input string, cfg models.Config, result *pipeline.Result, runErr error) *db.Run {
	run := &db.Run{
		InputPath:     input,
		SchemaVariant: string(cfg.SchemaVariant),
		Status:        db.StatusSuccess,
	}

	switch {
	case errors.Is(runErr, pipeline.ErrNoRecordsFound):
		run.Status = db.StatusNoData
	case runErr != nil:
		run.Status = db.StatusError
		run.ErrorMessage = runErr.Error()
	}

	if result != nil {
		run.InputPath = result.Input
		run.OutputPath = result.Output
		run.ArchiveSHA256 = result.SHA256
		run.InputSizeBytes = result.InputSize
		run.ExchangeCount = result.Stats.Exchanges
		run.RelevantCount = result.Stats.Relevant
		run.ConsumableCount = result.Stats.Consumable
		run.MalformedCount = result.Stats.Malformed
		run.CandidateCount = result.Stats.Candidates
		run.RowCount = result.Rows
		run.Sources = result.Sources
	}
	return run
}

func Command() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Extract listing records from a HAR file into a CSV",
		ArgsUsage: "<file.har>",
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "CSV path (default: next to the input, .csv extension)"},
		}, common.ConfigFlags()...), common.LogFlags()...),
		Action: ConvertAction,
	}
}
