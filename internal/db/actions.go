package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/har2csv/internal/common"
	dbpkg "github.com/dtnitsch/har2csv/pkg/db"
)

func RunsAction(c *cli.Context) error {
	database, err := OpenHistory(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.String("status"), c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to list runs: %v", err), common.ExitFailure)
	}

	if len(runs) == 0 {
		fmt.Fprintln(c.App.Writer, "No runs found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.AppendHeader(table.Row{"ID", "Created", "Status", "Variant", "Rows", "Input", "Output"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			ShortID(r.RunID),
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			r.SchemaVariant,
			r.RowCount,
			r.InputPath,
			r.OutputPath,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(runs)})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(c.App.Writer, "\nTip: Use 'har2csv runs show <id>' to see details\n")
	return nil
}

// RunAction shows details for a specific run, or the latest one.
func RunAction(c *cli.Context) error {
	database, err := OpenHistory(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID := c.Args().First()
	if runID == "" {
		latest, err := database.ListRuns("", 1)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: failed to get latest run: %v", err), common.ExitFailure)
		}
		if len(latest) == 0 {
			return cli.Exit("No runs found. Run 'har2csv convert --history <db> <file.har>' first", common.ExitFailure)
		}
		runID = latest[0].RunID
	}

	run, err := database.GetRun(runID)
	if errors.Is(err, dbpkg.ErrRunNotFound) {
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to get run: %v", err), common.ExitFailure)
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.SetTitle("Run " + run.RunID)
	t.AppendRows([]table.Row{
		{"Created", run.CreatedAt.Local().Format("2006-01-02 15:04:05")},
		{"Status", run.Status},
		{"Input", run.InputPath},
		{"Input size", humanize.Bytes(uint64(run.InputSizeBytes))},
		{"SHA-256", run.ArchiveSHA256},
		{"Output", run.OutputPath},
		{"Variant", run.SchemaVariant},
		{"Exchanges", run.ExchangeCount},
		{"Relevant", run.RelevantCount},
		{"Consumable", run.ConsumableCount},
		{"Malformed", run.MalformedCount},
		{"Candidates", run.CandidateCount},
		{"Rows", run.RowCount},
	})
	if run.ErrorMessage != "" {
		t.AppendRow(table.Row{"Error", run.ErrorMessage})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(run.Sources) > 0 {
		s := table.NewWriter()
		s.SetOutputMirror(c.App.Writer)
		s.AppendHeader(table.Row{"Source", "Candidates"})
		for _, source := range run.SortedSources() {
			s.AppendRow(table.Row{source, run.Sources[source]})
		}
		s.SetStyle(table.StyleRounded)
		s.Render()
	}
	return nil
}

// OpenHistory opens the database named by --history or the config file.
func OpenHistory(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := common.ResolveConfig(c)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}
	if cfg.HistoryDB == "" {
		return nil, cli.Exit("Error: no history database configured\n\nUse --history <path> or set history_db in the config file", common.ExitUsage)
	}

	database, err := dbpkg.Open(cfg.HistoryDB)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: failed to open database: %v", err), common.ExitFailure)
	}
	return database, nil
}

// ShortID trims a uuid to its first group for table display.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func Command() *cli.Command {
	historyFlags := []cli.Flag{
		&cli.StringFlag{Name: "history", Usage: "SQLite run-history database"},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
	}
	return &cli.Command{
		Name:  "runs",
		Usage: "Browse recorded conversion runs",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List runs, newest first",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to show (0 = all)"},
					&cli.StringFlag{Name: "status", Usage: "only runs with this status (success, no_data, error)"},
				}, historyFlags...),
				Action: RunsAction,
			},
			{
				Name:      "show",
				Usage:     "Show one run (default: the latest)",
				ArgsUsage: "[run-id or prefix]",
				Flags:     historyFlags,
				Action:    RunAction,
			},
		},
	}
}
