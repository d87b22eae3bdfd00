// Package source reads the per-grouping sales datasets and normalises them
// into category-keyed records.
package source

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/cespare/xxhash/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/okian/salesdash/internal/domain/grouping"
	"github.com/okian/salesdash/internal/domain/types"
	"github.com/okian/salesdash/pkg/logger"
	"github.com/okian/salesdash/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

//go:embed data/*.json
var embedded embed.FS

const quarterField = "closed_fiscal_quarter"

// Loader supplies the record set of a grouping.
type Loader interface {
	Load(ctx context.Context, g grouping.Grouping) (types.Dataset, error)
}

// FileSource loads one JSON file per grouping from a file system.
type FileSource struct {
	fsys   fs.FS
	origin string
	logger logger.Logger
}

// New creates a FileSource backed by the embedded sample data unless an option overrides it.
func New(opts ...Option) *FileSource {
	s := &FileSource{
		fsys:   DefaultFS(),
		origin: "embedded",
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultFS returns the embedded sample data set.
func DefaultFS() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// Origin describes where datasets are read from.
func (s *FileSource) Origin() string { return s.origin }

// Load reads and validates the dataset of g. The grouping's dimension field is
// renamed to category; other unknown fields are dropped.
func (s *FileSource) Load(ctx context.Context, g grouping.Grouping) (types.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return types.Dataset{}, err
	}
	src, err := g.Source()
	if err != nil {
		return types.Dataset{}, fmt.Errorf("%w: %w", ErrUnknownGrouping, err)
	}

	start := time.Now()
	ds, err := s.load(g, src)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordSourceLoad(g.String(), "error", elapsed)
		metrics.RecordErrorByComponent("source", errorType(err))
		s.logger.Warn(ctx, "dataset load failed",
			logger.String("grouping", g.String()),
			logger.String("file", src.File),
			logger.String("origin", s.origin),
			logger.Error(err),
		)
		return types.Dataset{}, err
	}
	metrics.RecordSourceLoad(g.String(), "ok", elapsed)
	s.logger.Debug(ctx, "dataset loaded",
		logger.String("grouping", g.String()),
		logger.Int("records", len(ds.Sales)),
		logger.Uint64("digest", ds.Digest),
	)
	return ds, nil
}

func (s *FileSource) load(g grouping.Grouping, src grouping.Source) (types.Dataset, error) {
	b, err := fs.ReadFile(s.fsys, src.File)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, src.File, err)
	}
	records, err := Decode(b, src.Field)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("%s: %w", src.File, err)
	}
	return types.Dataset{Group: g.String(), Sales: records, Digest: xxhash.Sum64(b)}, nil
}

// Decode parses a JSON array of raw records whose dimension lives under field.
// Every record must carry a non-empty quarter, a string category, a
// non-negative integer count and a non-negative acv.
func Decode(b []byte, field string) ([]types.SalesRecord, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedData)
	}
	var raw []map[string]jsoniter.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}

	out := make([]types.SalesRecord, 0, len(raw))
	for i, item := range raw {
		rec, err := decodeRecord(item, field)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedData, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeRecord(item map[string]jsoniter.RawMessage, field string) (types.SalesRecord, error) {
	if item == nil {
		return types.SalesRecord{}, errors.New("not an object")
	}
	var rec types.SalesRecord
	var err error

	if rec.Quarter, err = stringField(item, quarterField); err != nil {
		return rec, err
	}
	if rec.Quarter == "" {
		return rec, fmt.Errorf("%s is empty", quarterField)
	}
	if rec.Category, err = stringField(item, field); err != nil {
		return rec, err
	}

	count, err := numberField(item, "count")
	if err != nil {
		return rec, err
	}
	if !count.IsInteger() || !count.BigInt().IsInt64() {
		return rec, fmt.Errorf("count %s is not an integer", count)
	}
	rec.Count = count.IntPart()

	if rec.ACV, err = numberField(item, "acv"); err != nil {
		return rec, err
	}
	return rec, nil
}

func stringField(item map[string]jsoniter.RawMessage, key string) (string, error) {
	raw, ok := item[key]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return "", fmt.Errorf("%s is missing", key)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return v, nil
}

func numberField(item map[string]jsoniter.RawMessage, key string) (decimal.Decimal, error) {
	raw, ok := item[key]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return decimal.Zero, fmt.Errorf("%s is missing", key)
	}
	// Quoted numerals ("100.5") are accepted.
	var v decimal.Decimal
	if err := json.Unmarshal(raw, &v); err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", key)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s %s is negative", key, v)
	}
	return v, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrDataUnavailable):
		return "unavailable"
	case errors.Is(err, ErrMalformedData):
		return "malformed"
	default:
		return "other"
	}
}
