package db

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/har2csv/pkg/db"
)

func seedHistory(t *testing.T) (string, []string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	database, err := dbpkg.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	var ids []string
	for i, r := range []*dbpkg.Run{
		{InputPath: "/caps/monday.har", OutputPath: "/caps/monday.csv", SchemaVariant: "scoring", Status: dbpkg.StatusSuccess, RowCount: 42, Sources: map[string]int{"vehicles": 40, "banners": 2}},
		{InputPath: "/caps/tuesday.har", SchemaVariant: "plain", Status: dbpkg.StatusNoData},
	} {
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		id, err := database.InsertRun(r)
		if err != nil {
			t.Fatalf("InsertRun() error = %v", err)
		}
		ids = append(ids, id)
	}
	return path, ids
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:           "har2csv",
		Commands:       []*cli.Command{Command()},
		Writer:         &out,
		ErrWriter:      &bytes.Buffer{},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run(append([]string{"har2csv"}, args...))
	return out.String(), err
}

func TestRunsList(t *testing.T) {
	path, ids := seedHistory(t)

	out, err := runApp(t, "runs", "list", "--history", path)
	if err != nil {
		t.Fatalf("runs list error = %v", err)
	}
	for _, want := range []string{ShortID(ids[0]), ShortID(ids[1]), "/caps/monday.har", "no_data", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "tuesday") > strings.Index(out, "monday") {
		t.Errorf("runs not listed newest first:\n%s", out)
	}

	out, err = runApp(t, "runs", "list", "--history", path, "--status", "success")
	if err != nil {
		t.Fatalf("runs list --status error = %v", err)
	}
	if strings.Contains(out, "tuesday") {
		t.Errorf("status filter ignored:\n%s", out)
	}
}

func TestRunsShow(t *testing.T) {
	path, ids := seedHistory(t)

	out, err := runApp(t, "runs", "show", "--history", path, ShortID(ids[0]))
	if err != nil {
		t.Fatalf("runs show error = %v", err)
	}
	for _, want := range []string{ids[0], "/caps/monday.csv", "vehicles", "banners", "40"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = runApp(t, "runs", "show", "--history", path)
	if err != nil {
		t.Fatalf("runs show (latest) error = %v", err)
	}
	if !strings.Contains(out, ids[1]) {
		t.Errorf("latest run not shown:\n%s", out)
	}
}

func TestRunsErrors(t *testing.T) {
	path, _ := seedHistory(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no history configured", args: []string{"runs", "list"}, want: 1},
		{name: "unknown id", args: []string{"runs", "show", "--history", path, "deadbeef"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			var exitErr cli.ExitCoder
			if !errors.As(err, &exitErr) || exitErr.ExitCode() != tt.want {
				t.Errorf("error = %v, want exit code %d", err, tt.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0f8fad5b-d9cb-469f-a165-70867728950e"); got != "0f8fad5b" {
		t.Errorf("ShortID() = %q", got)
	}
	if got := ShortID("plain"); got != "plain" {
		t.Errorf("ShortID() = %q", got)
	}
}
