package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/har2csv/internal/common"
	"github.com/dtnitsch/har2csv/pkg/harfile"
)

func WatchAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	if c.NArg() != 1 {
		return cli.Exit("Error: expected exactly one directory\n\nUsage:\n  har2csv watch ~/Downloads/captures\n  har2csv watch --initial --output-dir csv/ captures/", common.ExitUsage)
	}

	cfg, err := common.ResolveConfig(c)
	if err != nil {
		logger.Error("failed to resolve configuration", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &Watcher{
		Dir:       harfile.SanitizePath(c.Args().First()),
		OutputDir: harfile.SanitizePath(c.String("output-dir")),
		Config:    cfg,
		Logger:    logger,
		Debounce:  c.Duration("debounce"),
		Initial:   c.Bool("initial"),
	}
	if err := w.Run(ctx); err != nil {
		logger.Error("watch failed", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitFailure)
	}
	return nil
}

func Command() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Convert every HAR file saved into a directory",
		ArgsUsage: "<dir>",
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{Name: "output-dir", Usage: "write CSVs here instead of next to each archive"},
			&cli.DurationFlag{Name: "debounce", Value: DefaultDebounce, Usage: "quiet period after the last write before converting"},
			&cli.BoolFlag{Name: "initial", Usage: "also convert archives already in the directory"},
		}, common.ConfigFlags()...), common.LogFlags()...),
		Action: WatchAction,
	}
}
