package csvout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dtnitsch/har2csv/pkg/flatten"
	"github.com/dtnitsch/har2csv/pkg/jsonvalue"
	"github.com/dtnitsch/har2csv/pkg/projector"
)

func row(t *testing.T, schema projector.Schema, doc string) projector.Row {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("jsonvalue.Parse(%s) error = %v", doc, err)
	}
	return schema.Project(flatten.Flatten(v))
}

func TestEncode(t *testing.T) {
	schema := projector.NewSchema([]string{"make", "model", "note", "instant"})
	rows := []projector.Row{
		row(t, schema, `{"make":"BMW","model":"X5","instant":true}`),
		row(t, schema, `{"make":"Kia","note":"has, comma and \"quotes\"","instant":false}`),
	}

	got, err := Encode(schema.Columns(), rows)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "make,model,note,instant\r\n" +
		"BMW,X5,,true\r\n" +
		"Kia,,\"has, comma and \"\"quotes\"\"\",false\r\n"
	if string(got) != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncodeHeaderOnly(t *testing.T) {
	got, err := Encode([]string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(got) != "a,b\r\n" {
		t.Errorf("Encode() = %q, want header only", got)
	}
}

func TestEncodeRejectsRaggedRows(t *testing.T) {
	rows := []projector.Row{{{Column: "a", Absent: true}}}
	if _, err := Encode([]string{"a", "b"}, rows); err == nil {
		t.Error("Encode() error = nil, want error for short row")
	}
}

func TestWrite(t *testing.T) {
	schema := projector.NewSchema([]string{"make"})
	path := filepath.Join(t.TempDir(), "out", "search.csv")

	if err := Write(path, schema.Columns(), []projector.Row{row(t, schema, `{"make":"BMW"}`)}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "make\r\nBMW\r\n" {
		t.Errorf("file content = %q", got)
	}
}

func TestWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	err := Write(filepath.Join(blocker, "out.csv"), []string{"a"}, nil)
	if !errors.Is(err, ErrOutputWrite) {
		t.Errorf("Write() error = %v, want ErrOutputWrite", err)
	}
}
