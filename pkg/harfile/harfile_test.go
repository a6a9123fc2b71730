package harfile

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/dtnitsch/har2csv/models"
)

const sampleHAR = `{
  "log": {
    "creator": {"name": "WebInspector", "version": "537.36"},
    "entries": [
      {
        "request": {"method": "POST", "url": "https://turo.com/api/v2/search"},
        "response": {"content": {"mimeType": "application/json", "text": "{\"vehicles\":[]}"}}
      },
      {"request": {"method": "GET"}},
      {}
    ]
  }
}`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func wantSample() []models.Exchange {
	return []models.Exchange{
		{Method: "POST", URL: "https://turo.com/api/v2/search", MimeType: "application/json", Body: `{"vehicles":[]}`},
		{Method: "GET"},
		{},
	}
}

func TestLoad(t *testing.T) {
	archive, err := Load(writeFile(t, "search.har", []byte(sampleHAR)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(wantSample(), archive.Exchanges); diff != "" {
		t.Errorf("Exchanges mismatch (-want +got):\n%s", diff)
	}
	if archive.Creator != "WebInspector 537.36" {
		t.Errorf("Creator = %q, want %q", archive.Creator, "WebInspector 537.36")
	}
}

func TestLoadCompressed(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write([]byte(sampleHAR)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter() error = %v", err)
	}
	zst := enc.EncodeAll([]byte(sampleHAR), nil)
	enc.Close()

	for name, data := range map[string][]byte{"search.har.gz": gz.Bytes(), "search.har.zst": zst} {
		t.Run(name, func(t *testing.T) {
			loaded, err := LoadFile(writeFile(t, name, data))
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if diff := cmp.Diff(wantSample(), loaded.Archive.Exchanges); diff != "" {
				t.Errorf("Exchanges mismatch (-want +got):\n%s", diff)
			}
			if string(loaded.Raw) != sampleHAR {
				t.Error("Raw does not hold the decompressed document")
			}
			if loaded.Size != int64(len(data)) {
				t.Errorf("Size = %d, want %d", loaded.Size, len(data))
			}
		})
	}
}

func TestParseBase64Bodies(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte(`{"vehicles":[{"make":"BMW"}]}`))
	doc := `{"log":{"entries":[
		{"response":{"content":{"mimeType":"application/json","encoding":"base64","text":"` + body + `"}}},
		{"response":{"content":{"mimeType":"application/json","encoding":"base64","text":"%%%not base64"}}}
	]}}`

	archive, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := archive.Exchanges[0].Body; got != `{"vehicles":[{"make":"BMW"}]}` {
		t.Errorf("Exchanges[0].Body = %q, want decoded JSON", got)
	}
	if got := archive.Exchanges[1].Body; got != "%%%not base64" {
		t.Errorf("Exchanges[1].Body = %q, want the raw text", got)
	}
}

func TestParseEmptyEntries(t *testing.T) {
	archive, err := Parse([]byte(`{"log":{"entries":[]}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(archive.Exchanges) != 0 {
		t.Errorf("len(Exchanges) = %d, want 0", len(archive.Exchanges))
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.har"), want: ErrInputNotFound},
		{name: "directory", path: dir, want: ErrInputUnreadable},
		{name: "corrupt gzip", path: writeFile(t, "bad.har.gz", []byte{0x1f, 0x8b, 0x00, 0x01}), want: ErrInputUnreadable},
		{name: "not json", path: writeFile(t, "bad.har", []byte("<html>")), want: ErrArchiveMalformed},
		{name: "truncated json", path: writeFile(t, "cut.har", []byte(`{"log":{"entries":[`)), want: ErrArchiveMalformed},
		{name: "no log", path: writeFile(t, "nolog.har", []byte(`{"version":"1.2"}`)), want: ErrArchiveMalformed},
		{name: "no entries", path: writeFile(t, "noentries.har", []byte(`{"log":{"version":"1.2"}}`)), want: ErrArchiveMalformed},
		{name: "null log", path: writeFile(t, "nulllog.har", []byte(`{"log":null}`)), want: ErrArchiveMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
			if !bytes.Contains([]byte(err.Error()), []byte(filepath.Base(tt.path))) {
				t.Errorf("Load() error %q does not name the input path", err)
			}
		})
	}
}
