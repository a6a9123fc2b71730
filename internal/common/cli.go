package common

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/har2csv/models"
	"github.com/dtnitsch/har2csv/pkg/harfile"
)

// Process exit codes.
const (
	ExitUsage   = 1
	ExitFailure = 2
	ExitNoData  = 3
)

// NewLogger builds the JSON stderr logger for a command.
// --quiet keeps errors only; --verbose enables debug output.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: logLevel}))
}

// ResolveConfig layers command-line flags over the optional --config file
// over the built-in defaults.
func ResolveConfig(c *cli.Context) (models.Config, error) {
	cfg := models.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = models.LoadConfig(harfile.SanitizePath(path)); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("variant") {
		variant, err := models.ParseSchemaVariant(c.String("variant"))
		if err != nil {
			return cfg, err
		}
		cfg.SchemaVariant = variant
	}
	if c.IsSet("endpoint") {
		cfg.TargetEndpoint = c.String("endpoint")
	}
	if c.IsSet("container-keys") {
		cfg.ContainerKeys = SplitList(c.String("container-keys"))
	}
	if c.IsSet("columns") {
		cfg.Columns = SplitList(c.String("columns"))
	}
	if c.IsSet("history") {
		cfg.HistoryDB = harfile.SanitizePath(c.String("history"))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SplitList splits a comma-separated flag value, dropping blank items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// LogFlags are accepted by every command.
func LogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
		&cli.BoolFlag{Name: "verbose", Usage: "log debug details"},
	}
}

// ConfigFlags select what is extracted and how it is written.
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
		&cli.StringFlag{Name: "variant", Usage: "column schema: scoring or plain"},
		&cli.StringFlag{Name: "endpoint", Usage: "URL substring identifying search responses"},
		&cli.StringFlag{Name: "container-keys", Usage: "comma-separated response keys holding listing arrays"},
		&cli.StringFlag{Name: "columns", Usage: "comma-separated output columns (overrides the variant)"},
		&cli.StringFlag{Name: "history", Usage: "record runs in this SQLite database"},
	}
}
