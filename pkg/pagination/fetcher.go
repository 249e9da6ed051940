package pagination

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sigab-tools/rotacio-diff/pkg/feature"
)

// DefaultBatchSize is the page size used when none is configured.
const DefaultBatchSize = 200

// Config holds fetcher configuration
type Config struct {
	// BatchSize is the number of records requested per page
	BatchSize int
	// MaxRows caps the total number of records fetched; nil means no cap
	MaxRows *int
}

// DefaultConfig returns a configuration that fetches every record
func DefaultConfig() Config {
	return Config{
		BatchSize: DefaultBatchSize,
	}
}

// Limit returns a MaxRows value capping the fetch at n records.
func Limit(n int) *int {
	return &n
}

// PageRequest describes a single page query.
type PageRequest struct {
	OutFields []string
	Count     int
	Offset    int
}

// Querier is implemented by anything able to return one page of records
type Querier interface {
	// QueryPage returns at most req.Count records starting at req.Offset
	QueryPage(ctx context.Context, req PageRequest) ([]feature.Record, error)
}

// QuerierFunc adapts a function to the Querier interface.
type QuerierFunc func(ctx context.Context, req PageRequest) ([]feature.Record, error)

// QueryPage calls f(ctx, req).
func (f QuerierFunc) QueryPage(ctx context.Context, req PageRequest) ([]feature.Record, error) {
	return f(ctx, req)
}

// Fetcher reads a layer page by page
type Fetcher struct {
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(config Config) *Fetcher {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}

	return &Fetcher{
		config: config,
		logger: log.With().Str("component", "pagination").Logger(),
	}
}

// WithLogger returns a copy of the fetcher that logs through logger.
func (f *Fetcher) WithLogger(logger zerolog.Logger) *Fetcher {
	c := *f
	c.logger = logger
	return &c
}

// FetchAll queries pages sequentially until the service is exhausted or
// MaxRows records have been collected. Querier errors are returned as is.
func (f *Fetcher) FetchAll(ctx context.Context, q Querier) (feature.ResultSet, error) {
	start := time.Now()
	records := feature.ResultSet{}
	offset := 0
	pages := 0

	for {
		pageSize := f.config.BatchSize
		if f.config.MaxRows != nil {
			remaining := *f.config.MaxRows - len(records)
			if remaining <= 0 {
				break
			}
			pageSize = min(f.config.BatchSize, remaining)
		}

		page, err := q.QueryPage(ctx, PageRequest{
			OutFields: feature.OutFields,
			Count:     pageSize,
			Offset:    offset,
		})
		if err != nil {
			return nil, err
		}
		pages++
		PagesFetched.Inc()

		if len(page) == 0 {
			break
		}

		records = append(records, page...)
		RecordsFetched.Add(float64(len(page)))

		f.logger.Debug().
			Int("offset", offset).
			Int("requested", pageSize).
			Int("returned", len(page)).
			Int("total", len(records)).
			Msg("Page fetched")

		// Advance by the requested size; a short page ends the loop below.
		offset += pageSize

		if len(page) < pageSize {
			break
		}
	}

	f.logger.Info().
		Int("pages", pages).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return records, nil
}
