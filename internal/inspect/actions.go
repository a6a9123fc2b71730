package inspect

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/har2csv/internal/common"
	"github.com/dtnitsch/har2csv/models"
	"github.com/dtnitsch/har2csv/pkg/extractor"
	"github.com/dtnitsch/har2csv/pkg/harfile"
	"github.com/dtnitsch/har2csv/pkg/jsonvalue"
	"github.com/dtnitsch/har2csv/pkg/storage"
)

// Report describes how each exchange of an archive fared against the extraction filters.
type Report struct {
	Input         string           `yaml:"input"`
	Size          string           `yaml:"size"`
	SHA256        string           `yaml:"sha256"`
	Creator       string           `yaml:"creator,omitempty"`
	Endpoint      string           `yaml:"endpoint"`
	ContainerKeys []string         `yaml:"container_keys"`
	Stats         extractor.Stats  `yaml:"stats"`
	Exchanges     []ExchangeReport `yaml:"exchanges"`
}

type ExchangeReport struct {
	Index      int               `yaml:"index"`
	Method     string            `yaml:"method"`
	URL        string            `yaml:"url"`
	MimeType   string            `yaml:"mime_type,omitempty"`
	BodySize   string            `yaml:"body_size"`
	Verdict    extractor.Verdict `yaml:"verdict"`
	Candidates int               `yaml:"candidates"`
	Sources    map[string]int    `yaml:"sources,omitempty"`
	Error      string            `yaml:"error,omitempty"`
}

func InspectAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	if c.NArg() != 1 {
		return cli.Exit("Error: expected exactly one HAR file\n\nUsage:\n  har2csv inspect search.har\n  har2csv inspect --all search.har", common.ExitUsage)
	}

	cfg, err := common.ResolveConfig(c)
	if err != nil {
		logger.Error("failed to resolve configuration", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitUsage)
	}

	input := harfile.SanitizePath(c.Args().First())
	loaded, err := harfile.LoadFile(input)
	if err != nil {
		logger.Error("failed to load archive", "path", input, "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), common.ExitFailure)
	}

	report := BuildReport(input, loaded, cfg, c.Bool("all"))

	encoder := yaml.NewEncoder(c.App.Writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(report); err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to write report: %v", err), common.ExitFailure)
	}
	return nil
}

// BuildReport classifies every exchange of loaded. Irrelevant exchanges are
// counted but only listed when includeAll is set.
func BuildReport(input string, loaded *harfile.Loaded, cfg models.Config, includeAll bool) Report {
	ex := extractor.New(cfg, nil)
	report := Report{
		Input:         input,
		Size:          humanize.Bytes(uint64(loaded.Size)),
		SHA256:        storage.ContentHash(loaded.Raw),
		Creator:       loaded.Archive.Creator,
		Endpoint:      cfg.TargetEndpoint,
		ContainerKeys: cfg.ContainerKeys,
		Exchanges:     []ExchangeReport{},
	}

	for i, exchange := range loaded.Archive.Exchanges {
		report.Stats.Exchanges++
		entry := ExchangeReport{
			Index:    i,
			Method:   exchange.Method,
			URL:      exchange.URL,
			MimeType: exchange.MimeType,
			BodySize: humanize.Bytes(uint64(len(exchange.Body))),
			Verdict:  ex.Classify(exchange),
		}

		switch entry.Verdict {
		case extractor.VerdictIrrelevant:
			if !includeAll {
				continue
			}
		case extractor.VerdictNotConsumable:
			report.Stats.Relevant++
		case extractor.VerdictConsumable:
			report.Stats.Relevant++
			report.Stats.Consumable++
			body, err := jsonvalue.Parse([]byte(exchange.Body))
			if err != nil {
				report.Stats.Malformed++
				entry.Error = err.Error()
				break
			}
			for _, cand := range ex.FromBody(body) {
				if entry.Sources == nil {
					entry.Sources = make(map[string]int)
				}
				entry.Sources[cand.Source]++
				entry.Candidates++
			}
			report.Stats.Candidates += entry.Candidates
		}

		report.Exchanges = append(report.Exchanges, entry)
	}
	return report
}

func Command() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Report how each exchange of a HAR file matches the extraction filters",
		ArgsUsage: "<file.har>",
		Flags: append(append([]cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "also list exchanges that do not match the endpoint"},
		}, common.ConfigFlags()...), common.LogFlags()...),
		Action: InspectAction,
	}
}
