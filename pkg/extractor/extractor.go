package extractor

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/dtnitsch/har2csv/models"
	"github.com/dtnitsch/har2csv/pkg/jsonvalue"
)

// Verdict classifies an exchange against the relevance and consumability filters.
type Verdict string

const (
	VerdictIrrelevant    Verdict = "irrelevant"     // wrong method or endpoint
	VerdictNotConsumable Verdict = "not_consumable" // relevant, but not a non-empty JSON body
	VerdictConsumable    Verdict = "consumable"
)

// TopLevelSource marks candidates taken from a body that is itself an array.
const TopLevelSource = "[]"

// Candidate is one raw listing record taken from a response body.
type Candidate struct {
	Exchange int    // index of the exchange in the archive
	Source   string // container key, or TopLevelSource
	Record   jsonvalue.Value
}

// Stats counts what a scan saw. Counters accumulate across scans.
type Stats struct {
	Exchanges  int `json:"exchanges" yaml:"exchanges"`
	Relevant   int `json:"relevant" yaml:"relevant"`
	Consumable int `json:"consumable" yaml:"consumable"`
	Malformed  int `json:"malformed" yaml:"malformed"`
	Candidates int `json:"candidates" yaml:"candidates"`
}

// Extractor finds listing records in captured search responses.
type Extractor struct {
	endpoint      string
	containerKeys []string
	logger        *slog.Logger
}

// New builds an Extractor from the run configuration. A nil logger discards output.
func New(cfg models.Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{
		endpoint:      strings.ToLower(cfg.TargetEndpoint),
		containerKeys: append([]string(nil), cfg.ContainerKeys...),
		logger:        logger,
	}
}

// Relevant reports whether ex is a POST to the target endpoint.
// The method match is case-sensitive; the URL match is not.
func (e *Extractor) Relevant(ex models.Exchange) bool {
	return ex.Method == "POST" && strings.Contains(strings.ToLower(ex.URL), e.endpoint)
}

// Classify returns the filter verdict for ex.
func (e *Extractor) Classify(ex models.Exchange) Verdict {
	if !e.Relevant(ex) {
		return VerdictIrrelevant
	}
	if !strings.Contains(strings.ToLower(ex.MimeType), "json") || ex.Body == "" {
		return VerdictNotConsumable
	}
	return VerdictConsumable
}

// Candidates yields every candidate record in the archive: by exchange order,
// then container key order, then element order. The sequence re-scans the
// archive on each iteration. stats may be nil.
func (e *Extractor) Candidates(archive *models.Archive, stats *Stats) iter.Seq[Candidate] {
	if stats == nil {
		stats = &Stats{}
	}
	return func(yield func(Candidate) bool) {
		for i, ex := range archive.Exchanges {
			stats.Exchanges++
			verdict := e.Classify(ex)
			if verdict == VerdictIrrelevant {
				continue
			}
			stats.Relevant++
			if verdict == VerdictNotConsumable {
				e.logger.Debug("Skipping relevant exchange without JSON body", "exchange", i, "mime_type", ex.MimeType)
				continue
			}
			stats.Consumable++

			body, err := jsonvalue.Parse([]byte(ex.Body))
			if err != nil {
				stats.Malformed++
				e.logger.Debug("Skipping malformed response body", "exchange", i, "url", ex.URL, "error", err)
				continue
			}

			for _, c := range e.fromBody(i, body) {
				stats.Candidates++
				if !yield(c) {
					return
				}
			}
		}
	}
}

// FromBody returns the candidates a single parsed body contributes.
func (e *Extractor) FromBody(body jsonvalue.Value) []Candidate {
	return e.fromBody(-1, body)
}

func (e *Extractor) fromBody(exchange int, body jsonvalue.Value) []Candidate {
	var out []Candidate

	if body.Kind() == jsonvalue.Object {
		for _, key := range e.containerKeys {
			v, ok := body.Get(key)
			if !ok || v.Kind() != jsonvalue.Array {
				continue
			}
			for _, item := range v.Elems() {
				out = append(out, Candidate{Exchange: exchange, Source: key, Record: item})
			}
		}
	}

	if body.Kind() == jsonvalue.Array {
		for _, item := range body.Elems() {
			out = append(out, Candidate{Exchange: exchange, Source: TopLevelSource, Record: item})
		}
	}
	return out
}
