package parser

import (
	"encoding/csv"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/eihwaz/internal/apperr"
	"github.com/starford/eihwaz/internal/models"
)

// Sections below parallelThreshold are decoded sequentially; the goroutine
// fan-out only pays off on large categories.
const (
	parallelThreshold = 1000
	minChunkSize      = 250
)

// RecordError describes one row that could not be decoded. The surrounding
// category is unaffected: malformed rows are reported and dropped.
type RecordError struct {
	Key    string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("malformed entry %s: %s", e.Key, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return apperr.ErrMalformedRecord
}

// DecodeOptions controls record decoding.
type DecodeOptions struct {
	// Parallel enables chunked decoding on a worker pool for large sections.
	Parallel bool
	// MaxWorkers caps the pool size; 0 means NumCPU-1.
	MaxWorkers int
}

// DecodeRecords decodes every class entry of a section. Decoding a single
// row is a pure function, so large sections are split into chunks and mapped
// over a worker pool; the merge back into one slice is sequential. Malformed
// rows come back as errors, never as records.
func DecodeRecords(pairs []Pair, opts DecodeOptions) ([]models.Record, []error) {
	if !opts.Parallel || len(pairs) < parallelThreshold {
		return decodeChunk(pairs)
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := len(pairs) / (workers * 2)
	if chunkSize < minChunkSize {
		chunkSize = minChunkSize
	}

	type chunkResult struct {
		records []models.Record
		errs    []error
	}

	var chunks [][]Pair
	for start := 0; start < len(pairs); start += chunkSize {
		end := start + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunks = append(chunks, pairs[start:end])
	}

	results := make([]chunkResult, len(chunks))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			recs, errs := decodeChunk(chunk)
			results[i] = chunkResult{records: recs, errs: errs}
			return nil
		})
	}
	_ = g.Wait() // workers only report through results

	var records []models.Record
	var errs []error
	for _, res := range results {
		records = append(records, res.records...)
		errs = append(errs, res.errs...)
	}
	return records, errs
}

func decodeChunk(pairs []Pair) ([]models.Record, []error) {
	var records []models.Record
	var errs []error
	for _, p := range pairs {
		rec, ok, err := decodePair(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, errs
}

// decodePair decodes one key=value entry. Empty values are skipped without
// error; the ok result reports whether a record was produced.
func decodePair(p Pair) (models.Record, bool, error) {
	value := strings.TrimSpace(p.Value)
	if value == "" || value == `""` {
		return models.Record{}, false, nil
	}

	fields, err := splitCSVRow(value)
	if err != nil {
		return models.Record{}, false, &RecordError{Key: p.Key, Reason: err.Error()}
	}
	if len(fields) != headerFields {
		return models.Record{}, false, &RecordError{
			Key:    p.Key,
			Reason: fmt.Sprintf("expected %d fields, got %d", headerFields, len(fields)),
		}
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return models.Record{}, false, &RecordError{Key: p.Key, Reason: "empty class name"}
	}

	numProps, err := strconv.Atoi(strings.TrimSpace(fields[6]))
	if err != nil || numProps < 0 {
		return models.Record{}, false, &RecordError{Key: p.Key, Reason: fmt.Sprintf("invalid property count %q", fields[6])}
	}
	scope, err := strconv.Atoi(strings.TrimSpace(fields[7]))
	if err != nil {
		return models.Record{}, false, &RecordError{Key: p.Key, Reason: fmt.Sprintf("invalid scope %q", fields[7])}
	}

	return models.Record{
		Name:           name,
		Source:         fields[1],
		Category:       fields[2],
		Parent:         fields[3],
		InheritsFrom:   fields[4],
		IsSimpleObject: strings.EqualFold(strings.TrimSpace(fields[5]), "true"),
		NumProperties:  numProps,
		Scope:          scope,
		Model:          fields[8],
	}, true, nil
}

// splitCSVRow parses a single CSV row after stripping the outer quote layer
// the export writer wraps every value in.
func splitCSVRow(value string) ([]string, error) {
	trimmed := strings.Trim(value, `"`)
	r := csv.NewReader(strings.NewReader(trimmed))
	r.LazyQuotes = true
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i, f := range row {
		row[i] = strings.Trim(f, `"`)
	}
	return row, nil
}
