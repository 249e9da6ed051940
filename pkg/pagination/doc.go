// Package pagination fetches every record of a feature layer through
// offset-based paged queries.
//
// The feature service caps the number of records returned per query, so a
// layer is read with repeated resultOffset/resultRecordCount requests. Pages
// are requested one after another; the fetch ends on an empty page, on a page
// shorter than requested, or once the optional row cap is reached.
//
// Example usage:
//
//	cfg := pagination.DefaultConfig()
//	cfg.MaxRows = pagination.Limit(400)
//	fetcher := pagination.NewFetcher(cfg)
//	records, err := fetcher.FetchAll(ctx, layer)
//
// A page shorter than requested always ends the fetch, even if the service
// holds more records beyond it. The offset advances by the requested page size,
// so the two rules must stay together.
package pagination
