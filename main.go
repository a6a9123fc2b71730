package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/har2csv/internal/convert"
	"github.com/dtnitsch/har2csv/internal/db"
	"github.com/dtnitsch/har2csv/internal/inspect"
	"github.com/dtnitsch/har2csv/internal/watch"
	"github.com/dtnitsch/har2csv/pkg/help"
)

var version = "dev"

func newApp() *cli.App {
	return &cli.App{
		Name:    "har2csv",
		Usage:   "Turn captured search responses in HAR files into listing CSVs",
		Version: version,
		Commands: []*cli.Command{
			convert.Command(),
			inspect.Command(),
			watch.Command(),
			db.Command(),
			{
				Name:  "quickstart",
				Usage: "Print a YAML cheat sheet",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.QuickstartYAML)
					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
