package extractor

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dtnitsch/har2csv/models"
)

const searchURL = "https://turo.com/api/v2/search?country=CA"

func post(body string) models.Exchange {
	return models.Exchange{Method: "POST", URL: searchURL, MimeType: "application/json", Body: body}
}

// summarize renders candidates as "exchange/source/id" for comparison.
func summarize(e *Extractor, archive *models.Archive, stats *Stats) []string {
	var out []string
	for c := range e.Candidates(archive, stats) {
		id, _ := c.Record.Get("id")
		out = append(out, strconv.Itoa(c.Exchange)+"/"+c.Source+"/"+id.Text())
	}
	return out
}

func TestClassify(t *testing.T) {
	e := New(models.DefaultConfig(), nil)

	tests := []struct {
		name string
		ex   models.Exchange
		want Verdict
	}{
		{name: "json post", ex: post(`{}`), want: VerdictConsumable},
		{
			name: "upper-case url still matches",
			ex:   models.Exchange{Method: "POST", URL: "https://TURO.com/API/v2/Search", MimeType: "application/json", Body: "{}"},
			want: VerdictConsumable,
		},
		{
			name: "mime type match is case-insensitive",
			ex:   models.Exchange{Method: "POST", URL: searchURL, MimeType: "Application/JSON; charset=utf-8", Body: "{}"},
			want: VerdictConsumable,
		},
		{name: "get is never relevant", ex: models.Exchange{Method: "GET", URL: searchURL, MimeType: "application/json", Body: "{}"}, want: VerdictIrrelevant},
		{name: "method is case-sensitive", ex: models.Exchange{Method: "post", URL: searchURL, MimeType: "application/json", Body: "{}"}, want: VerdictIrrelevant},
		{name: "other endpoint", ex: models.Exchange{Method: "POST", URL: "https://turo.com/api/v2/favorites", MimeType: "application/json", Body: "{}"}, want: VerdictIrrelevant},
		{name: "html body", ex: models.Exchange{Method: "POST", URL: searchURL, MimeType: "text/html", Body: "<html></html>"}, want: VerdictNotConsumable},
		{name: "empty body", ex: models.Exchange{Method: "POST", URL: searchURL, MimeType: "application/json"}, want: VerdictNotConsumable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Classify(tt.ex); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCandidatesOrdering(t *testing.T) {
	archive := &models.Archive{Exchanges: []models.Exchange{
		post(`{"banners": [{"id": "b1"}], "vehicles": [{"id": "v1"}, {"id": "v2"}], "results": [{"id": "r1"}]}`),
		{Method: "GET", URL: searchURL, MimeType: "application/json", Body: `{"vehicles": [{"id": "get"}]}`},
		post(`[{"id": "a1"}, {"id": "a2"}]`),
		post(`{"data": {"id": "not-an-array"}, "vehicles": "nope"}`),
	}}

	stats := &Stats{}
	got := summarize(New(models.DefaultConfig(), nil), archive, stats)
	want := []string{
		"0/vehicles/v1", "0/vehicles/v2", "0/results/r1", "0/banners/b1",
		"2/[]/a1", "2/[]/a2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}

	wantStats := Stats{Exchanges: 4, Relevant: 3, Consumable: 3, Candidates: 6}
	if diff := cmp.Diff(wantStats, *stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidatesSkipsMalformedBodies(t *testing.T) {
	archive := &models.Archive{Exchanges: []models.Exchange{
		post(`{"vehicles": [{"id": "truncated"`),
		post(`{"vehicles": [{"id": "ok"}]}`),
	}}

	stats := &Stats{}
	got := summarize(New(models.DefaultConfig(), nil), archive, stats)
	if diff := cmp.Diff([]string{"1/vehicles/ok"}, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}
	if stats.Malformed != 1 {
		t.Errorf("stats.Malformed = %d, want 1", stats.Malformed)
	}
}

func TestCandidatesGetNeverContributes(t *testing.T) {
	archive := &models.Archive{Exchanges: []models.Exchange{
		{Method: "GET", URL: searchURL, MimeType: "application/json", Body: `{"vehicles": [{"id": "v1"}]}`},
	}}

	if got := summarize(New(models.DefaultConfig(), nil), archive, nil); len(got) != 0 {
		t.Errorf("Candidates() = %v, want none", got)
	}
}

func TestCandidatesIsRestartable(t *testing.T) {
	archive := &models.Archive{Exchanges: []models.Exchange{post(`{"vehicles": [{"id": "v1"}, {"id": "v2"}]}`)}}
	seq := New(models.DefaultConfig(), nil).Candidates(archive, nil)

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	if first, second := count(), count(); first != 2 || second != 2 {
		t.Errorf("iterations yielded %d then %d, want 2 and 2", first, second)
	}

	// Stopping early must not panic.
	for range seq {
		break
	}
}

func TestCustomEndpointAndContainerKeys(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.TargetEndpoint = "Example.com/Listings"
	cfg.ContainerKeys = []string{"listings"}

	archive := &models.Archive{Exchanges: []models.Exchange{
		{Method: "POST", URL: "https://example.com/listings/query", MimeType: "application/json", Body: `{"listings": [{"id": "l1"}], "vehicles": [{"id": "v1"}]}`},
		post(`{"vehicles": [{"id": "v2"}]}`),
	}}

	got := summarize(New(cfg, nil), archive, nil)
	if diff := cmp.Diff([]string{"0/listings/l1"}, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromBodyScalarElements(t *testing.T) {
	archive := &models.Archive{Exchanges: []models.Exchange{post(`{"data": [1, "two", null]}`)}}

	var kinds []string
	for c := range New(models.DefaultConfig(), nil).Candidates(archive, nil) {
		kinds = append(kinds, c.Record.Kind().String())
	}
	if diff := cmp.Diff([]string{"number", "string", "null"}, kinds); diff != "" {
		t.Errorf("candidate kinds mismatch (-want +got):\n%s", diff)
	}
}
