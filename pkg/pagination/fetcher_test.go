package pagination

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sigab-tools/rotacio-diff/pkg/feature"
)

// fakeLayer serves records in contiguous pages and records every request.
type fakeLayer struct {
	records []feature.Record
	// shortAt makes the page starting at this offset return one record less
	shortAt  int
	requests []PageRequest
}

func newFakeLayer(total int) *fakeLayer {
	records := make([]feature.Record, total)
	for i := range records {
		records[i] = feature.Record{Iden: i, Rotacio: i % 3, ObjectID: int64(i + 1)}
	}
	return &fakeLayer{records: records, shortAt: -1}
}

func (l *fakeLayer) QueryPage(ctx context.Context, req PageRequest) ([]feature.Record, error) {
	l.requests = append(l.requests, req)
	if req.Offset >= len(l.records) {
		return nil, nil
	}
	end := min(req.Offset+req.Count, len(l.records))
	if req.Offset == l.shortAt && end-req.Offset > 1 {
		end--
	}
	return l.records[req.Offset:end], nil
}

func TestNewFetcher_Defaults(t *testing.T) {
	f := NewFetcher(Config{})
	if f.config.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", f.config.BatchSize, DefaultBatchSize)
	}
	if f.config.MaxRows != nil {
		t.Error("MaxRows should stay unset")
	}
}

func TestFetchAll_Unlimited(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		batchSize int
		wantCalls int
	}{
		{"empty layer", 0, 200, 1},
		{"single short page", 5, 200, 1},
		{"exact multiple ends on empty page", 400, 200, 3},
		{"partial last page", 450, 200, 3},
		{"batch of one", 3, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := newFakeLayer(tt.total)
			f := NewFetcher(Config{BatchSize: tt.batchSize})

			got, err := f.FetchAll(context.Background(), layer)
			if err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			if len(got) != tt.total {
				t.Errorf("len(result) = %d, want %d", len(got), tt.total)
			}
			if len(layer.requests) != tt.wantCalls {
				t.Errorf("queries = %d, want %d", len(layer.requests), tt.wantCalls)
			}
			for i, rec := range got {
				if rec.ObjectID != int64(i+1) {
					t.Fatalf("record %d has objectid %d, want %d", i, rec.ObjectID, i+1)
				}
			}
		})
	}
}

func TestFetchAll_MaxRows(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		batchSize int
		maxRows   int
		want      int
		wantSizes []int
	}{
		{"cap below total", 1000, 200, 400, 400, []int{200, 200}},
		{"cap not a batch multiple", 1000, 200, 450, 450, []int{200, 200, 50}},
		{"cap above total", 300, 200, 1000, 300, []int{200, 200}},
		{"cap smaller than batch", 1000, 200, 7, 7, []int{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer := newFakeLayer(tt.total)
			f := NewFetcher(Config{BatchSize: tt.batchSize, MaxRows: Limit(tt.maxRows)})

			got, err := f.FetchAll(context.Background(), layer)
			if err != nil {
				t.Fatalf("FetchAll() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len(result) = %d, want %d", len(got), tt.want)
			}
			if len(layer.requests) != len(tt.wantSizes) {
				t.Fatalf("queries = %d, want %d", len(layer.requests), len(tt.wantSizes))
			}
			for i, req := range layer.requests {
				if req.Count != tt.wantSizes[i] {
					t.Errorf("request %d count = %d, want %d", i, req.Count, tt.wantSizes[i])
				}
			}
		})
	}
}

func TestFetchAll_NonPositiveMaxRowsNeverQueries(t *testing.T) {
	for _, maxRows := range []int{0, -5} {
		layer := newFakeLayer(10)
		f := NewFetcher(Config{BatchSize: 3, MaxRows: Limit(maxRows)})

		got, err := f.FetchAll(context.Background(), layer)
		if err != nil {
			t.Fatalf("FetchAll() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("maxRows=%d: len(result) = %d, want 0", maxRows, len(got))
		}
		if len(layer.requests) != 0 {
			t.Errorf("maxRows=%d: layer queried %d times, want 0", maxRows, len(layer.requests))
		}
	}
}

func TestFetchAll_RequestShape(t *testing.T) {
	layer := newFakeLayer(25)
	f := NewFetcher(Config{BatchSize: 10})

	if _, err := f.FetchAll(context.Background(), layer); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	wantOffsets := []int{0, 10, 20}
	if len(layer.requests) != len(wantOffsets) {
		t.Fatalf("queries = %d, want %d", len(layer.requests), len(wantOffsets))
	}
	for i, req := range layer.requests {
		if req.Offset != wantOffsets[i] {
			t.Errorf("request %d offset = %d, want %d", i, req.Offset, wantOffsets[i])
		}
		if len(req.OutFields) != 3 || req.OutFields[0] != "iden" || req.OutFields[1] != "rotacio" || req.OutFields[2] != "objectid" {
			t.Errorf("request %d out fields = %v", i, req.OutFields)
		}
	}
}

func TestFetchAll_ShortPageStopsEarly(t *testing.T) {
	// The second page comes back one record short although 30 records remain.
	layer := newFakeLayer(50)
	layer.shortAt = 10
	f := NewFetcher(Config{BatchSize: 10})

	got, err := f.FetchAll(context.Background(), layer)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(got) != 19 {
		t.Errorf("len(result) = %d, want 19", len(got))
	}
	if len(layer.requests) != 2 {
		t.Errorf("queries = %d, want 2", len(layer.requests))
	}
	if last := got[len(got)-1]; last.ObjectID != 19 {
		t.Errorf("last objectid = %d, want 19 (short page must be kept)", last.ObjectID)
	}
}

func TestFetchAll_ErrorPropagatesUnmodified(t *testing.T) {
	sentinel := errors.New("transport down")
	calls := 0
	q := QuerierFunc(func(ctx context.Context, req PageRequest) ([]feature.Record, error) {
		calls++
		if calls == 2 {
			return nil, sentinel
		}
		return make([]feature.Record, req.Count), nil
	})

	got, err := NewFetcher(Config{BatchSize: 5}).FetchAll(context.Background(), q)
	if err != sentinel {
		t.Fatalf("FetchAll() error = %v, want %v", err, sentinel)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %d records", len(got))
	}
}

func TestFetchAll_LogsWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	orig := log.Logger
	log.Logger = zerolog.New(buf)
	t.Cleanup(func() { log.Logger = orig })

	layer := newFakeLayer(3)
	if _, err := NewFetcher(DefaultConfig()).FetchAll(context.Background(), layer); err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, `"component":"pagination"`) {
		t.Errorf("Expected component field in output, got %q", output)
	}
	if !strings.Contains(output, "Fetch complete") {
		t.Errorf("Expected completion log, got %q", output)
	}
}

func TestFetcher_WithLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	base := NewFetcher(DefaultConfig())
	tagged := base.WithLogger(zerolog.New(buf).With().Str("env", "pre").Logger())

	if tagged == base {
		t.Fatal("WithLogger should return a copy")
	}
	if _, err := tagged.FetchAll(context.Background(), newFakeLayer(2)); err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"env":"pre"`) {
		t.Errorf("Expected env field in output, got %q", buf.String())
	}
}
