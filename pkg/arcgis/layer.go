package arcgis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sigab-tools/rotacio-diff/pkg/feature"
	"github.com/sigab-tools/rotacio-diff/pkg/pagination"
)

// DefaultWhere selects every feature of a layer.
const DefaultWhere = "1=1"

// FeatureLayer is one layer of a feature service, e.g. .../FeatureServer/0.
type FeatureLayer struct {
	client  *Client
	url     string
	session *Session
	where   string
}

// Layer returns a handle on the feature layer at layerURL.
// A nil session sends requests anonymously.
func (c *Client) Layer(layerURL string, session *Session) *FeatureLayer {
	return &FeatureLayer{
		client:  c,
		url:     strings.TrimRight(layerURL, "/"),
		session: session,
		where:   DefaultWhere,
	}
}

// WithWhere sets the filter used by QueryPage.
func (l *FeatureLayer) WithWhere(where string) *FeatureLayer {
	if where != "" {
		l.where = where
	}
	return l
}

// URL returns the layer URL.
func (l *FeatureLayer) URL() string {
	return l.url
}

// QueryParams are the query operation parameters used by this tool.
type QueryParams struct {
	Where             string
	OutFields         []string
	ResultRecordCount int
	ResultOffset      int
}

// Feature is a feature as returned without geometry.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
}

// QueryResult is the decoded response of a query operation.
type QueryResult struct {
	Features              []Feature `json:"features"`
	ExceededTransferLimit bool      `json:"exceededTransferLimit"`
}

// Query runs the layer's query operation.
func (l *FeatureLayer) Query(ctx context.Context, p QueryParams) (*QueryResult, error) {
	where := p.Where
	if where == "" {
		where = DefaultWhere
	}
	outFields := "*"
	if len(p.OutFields) > 0 {
		outFields = strings.Join(p.OutFields, ",")
	}

	params := url.Values{
		"where":          {where},
		"outFields":      {outFields},
		"returnGeometry": {"false"},
		"f":              {"json"},
	}
	if p.ResultRecordCount > 0 {
		params.Set("resultRecordCount", strconv.Itoa(p.ResultRecordCount))
		params.Set("resultOffset", strconv.Itoa(p.ResultOffset))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create query request: %w", err)
	}
	if l.session != nil {
		if !l.session.Anonymous() {
			q := req.URL.Query()
			q.Set("token", l.session.Token)
			req.URL.RawQuery = q.Encode()
		}
		if l.session.Referer != "" {
			req.Header.Set("Referer", l.session.Referer)
		}
	}

	var result QueryResult
	if err := l.client.Do(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// QueryPage implements pagination.Querier.
func (l *FeatureLayer) QueryPage(ctx context.Context, req pagination.PageRequest) ([]feature.Record, error) {
	result, err := l.Query(ctx, QueryParams{
		Where:             l.where,
		OutFields:         req.OutFields,
		ResultRecordCount: req.Count,
		ResultOffset:      req.Offset,
	})
	if err != nil {
		return nil, err
	}

	// A short page the service flags as truncated means its maxRecordCount
	// is below the requested count, and the fetch stops here.
	if result.ExceededTransferLimit && len(result.Features) < req.Count {
		l.client.logger.Warn().
			Str("layer", l.url).
			Int("offset", req.Offset).
			Int("requested", req.Count).
			Int("returned", len(result.Features)).
			Msg("Service capped page below requested count")
	}

	records := make([]feature.Record, 0, len(result.Features))
	for i, f := range result.Features {
		rec, err := feature.FromAttributes(f.Attributes)
		if err != nil {
			return nil, fmt.Errorf("feature %d at offset %d: %w", i, req.Offset, err)
		}
		records = append(records, rec)
	}

	return records, nil
}
