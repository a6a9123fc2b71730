// Package harfile loads HTTP Archive (HAR) captures into models.Archive.
package harfile

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/dtnitsch/har2csv/models"
)

var (
	ErrInputNotFound    = errors.New("input not found")
	ErrInputUnreadable  = errors.New("input unreadable")
	ErrArchiveMalformed = errors.New("archive malformed")
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// document mirrors the subset of the HAR format this tool reads.
// Pointers distinguish a missing log/entries from an empty one.
type document struct {
	Log *struct {
		Creator struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"creator"`
		Entries *[]entry `json:"entries"`
	} `json:"log"`
}

type entry struct {
	Request struct {
		Method string `json:"method"`
		URL    string `json:"url"`
	} `json:"request"`
	Response struct {
		Content struct {
			MimeType string `json:"mimeType"`
			Text     string `json:"text"`
			Encoding string `json:"encoding"`
		} `json:"content"`
	} `json:"response"`
}

// Loaded is an archive plus facts about the file it came from.
type Loaded struct {
	Archive *models.Archive
	Raw     []byte // decompressed document bytes
	Size    int64  // on-disk size
}

// Load reads and parses the archive at path.
func Load(path string) (*models.Archive, error) {
	l, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Archive, nil
}

// LoadFile reads the archive at path, transparently decompressing gzip or zstd input.
func LoadFile(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInputUnreadable, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputUnreadable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInputUnreadable, path)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputUnreadable, path, err)
	}

	data, err = decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputUnreadable, path, err)
	}

	archive, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Loaded{Archive: archive, Raw: data, Size: info.Size()}, nil
}

// Parse decodes a HAR document. Missing nested keys are treated as empty;
// a document that is not JSON or has no log.entries is ErrArchiveMalformed.
func Parse(data []byte) (*models.Archive, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveMalformed, err)
	}
	if doc.Log == nil || doc.Log.Entries == nil {
		return nil, fmt.Errorf("%w: missing log.entries", ErrArchiveMalformed)
	}

	archive := &models.Archive{
		Creator:   strings.TrimSpace(doc.Log.Creator.Name + " " + doc.Log.Creator.Version),
		Exchanges: make([]models.Exchange, 0, len(*doc.Log.Entries)),
	}
	for _, e := range *doc.Log.Entries {
		archive.Exchanges = append(archive.Exchanges, models.Exchange{
			Method:   e.Request.Method,
			URL:      e.Request.URL,
			MimeType: e.Response.Content.MimeType,
			Body:     decodeBody(e.Response.Content.Text, e.Response.Content.Encoding),
		})
	}
	return archive, nil
}

// decodeBody undoes base64 content encoding. Bodies that fail to decode are
// returned unchanged; they then fail JSON parsing and are skipped downstream.
func decodeBody(text, encoding string) string {
	if !strings.EqualFold(encoding, "base64") || text == "" {
		return text
	}
	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return text
	}
	return string(decoded)
}

func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return out, nil
	case bytes.HasPrefix(data, zstdMagic):
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		out, err := zr.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	}
	return data, nil
}
