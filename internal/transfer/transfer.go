package transfer

import (
	"clientsvc/internal/types"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"

	zstdExt = ".zst"
)

// Source lists the records to export.
type Source interface {
	FindAll(ctx context.Context) ([]types.Record, error)
}

// Sink stores imported records.
type Sink interface {
	CreateAll(ctx context.Context, candidates []types.Record) ([]types.Record, error)
}

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", types.Err(types.ErrInvalidInput, nil, "unknown format %q", s)
}

// FormatFromPath derives the format from the file extension, ignoring a trailing .zst.
func FormatFromPath(path string) (Format, bool, error) {
	compressed := strings.HasSuffix(path, zstdExt)
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(path, zstdExt)), ".")
	f, err := ParseFormat(ext)
	return f, compressed, err
}

// Encode writes records as a single document.
func Encode(w io.Writer, format Format, records []types.Record) error {
	return EncodeValue(w, format, records)
}

// EncodeValue writes any value as an indented JSON or YAML document.
func EncodeValue(w io.Writer, format Format, v any) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case YAML:
		b, err = yaml.Marshal(v)
	default:
		b, err = json.MarshalIndent(v, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Decode reads a document written by Encode. Stored ids are dropped so that imported
// records are assigned fresh ones.
func Decode(r io.Reader, format Format) ([]types.Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var records []types.Record
	switch format {
	case YAML:
		err = yaml.Unmarshal(b, &records)
	default:
		err = json.Unmarshal(b, &records)
	}
	if err != nil {
		return nil, types.Err(types.ErrInvalidInput, err, "invalid %s document", format)
	}
	for i, rec := range records {
		records[i] = rec.WithoutID()
	}
	return records, nil
}

// ExportFile writes every record of src to path.
func ExportFile(ctx context.Context, src Source, path string) (int, error) {
	format, compressed, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	records, err := src.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	if compressed {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return 0, err
		}
		if err := Encode(zw, format, records); err != nil {
			_ = zw.Close()
			return 0, err
		}
		if err := zw.Close(); err != nil {
			return 0, err
		}
	} else if err := Encode(f, format, records); err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"path": path, "count": len(records)}).Info("clients exported")
	return len(records), f.Close()
}

// ImportFile creates one record per entry in path. See Sink.CreateAll for partial failures.
func ImportFile(ctx context.Context, dst Sink, path string) ([]types.Record, error) {
	format, compressed, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var r io.Reader = f
	if compressed {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}
	records, err := Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	created, err := dst.CreateAll(ctx, records)
	log.WithFields(log.Fields{"path": path, "count": len(created)}).Info("clients imported")
	return created, err
}
