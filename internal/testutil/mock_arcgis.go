// Package testutil provides testing utilities for the ArcGIS client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Paths served by MockArcGIS.
const (
	PortalPath = "/portal"
	TokenPath  = PortalPath + "/sharing/rest/generateToken"
	LayerPath  = "/server/rest/services/Edicio/AbastamentEdicio/FeatureServer/0"
	QueryPath  = LayerPath + "/query"
)

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockArcGIS is a configurable mock portal plus one feature layer.
type MockArcGIS struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	username string
	password string
	token    string
	features []map[string]any
	// maxRecordCount caps every page like a service's maxRecordCount (0 = no cap)
	maxRecordCount int

	// Tracking
	TokenCount  int
	QueryCount  int
	Queries     []url.Values
	LastReferer string
}

// NewMockArcGIS creates a new mock server accepting user "editor" / "secret".
func NewMockArcGIS() *MockArcGIS {
	mock := &MockArcGIS{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		username: "editor",
		password: "secret",
		token:    "mock-token",
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case TokenPath:
			mock.tokenHandler(w, r)
		case QueryPath:
			mock.queryHandler(w, r)
		default:
			writeJSON(w, map[string]any{
				"error": map[string]any{"code": 404, "message": "Not Found", "details": []string{}},
			})
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockArcGIS) URL() string {
	return m.server.URL
}

// PortalURL returns the portal base URL.
func (m *MockArcGIS) PortalURL() string {
	return m.server.URL + PortalPath + "/"
}

// LayerURL returns the feature layer URL.
func (m *MockArcGIS) LayerURL() string {
	return m.server.URL + LayerPath
}

// Close shuts down the mock server.
func (m *MockArcGIS) Close() {
	m.server.Close()
}

// SetCredentials sets the accepted user and the token issued for it.
func (m *MockArcGIS) SetCredentials(username, password, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.username = username
	m.password = password
	m.token = token
}

// SetFeatures replaces the layer's features, given as attribute maps.
func (m *MockArcGIS) SetFeatures(features ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features = features
}

// SetMaxRecordCount caps the number of features returned per query.
func (m *MockArcGIS) SetMaxRecordCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxRecordCount = n
}

// SetHandler sets a custom handler for a specific path.
func (m *MockArcGIS) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockArcGIS) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetQueryCount returns the number of query requests served.
func (m *MockArcGIS) GetQueryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.QueryCount
}

// GetTokenCount returns the number of token requests served.
func (m *MockArcGIS) GetTokenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TokenCount
}

// GetQueries returns a copy of the query parameters received, in order.
func (m *MockArcGIS) GetQueries() []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	queries := make([]url.Values, len(m.Queries))
	copy(queries, m.Queries)
	return queries
}

// GetLastReferer returns the Referer header of the last query request.
func (m *MockArcGIS) GetLastReferer() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastReferer
}

func (m *MockArcGIS) tokenHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.TokenCount++
	m.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.RLock()
	ok := r.PostForm.Get("username") == m.username && r.PostForm.Get("password") == m.password
	token := m.token
	m.mu.RUnlock()

	if !ok {
		writeJSON(w, map[string]any{
			"error": map[string]any{
				"code":    400,
				"message": "Unable to generate token.",
				"details": []string{"Invalid username or password."},
			},
		})
		return
	}

	minutes, _ := strconv.Atoi(r.PostForm.Get("expiration"))
	if minutes <= 0 {
		minutes = 60
	}
	writeJSON(w, map[string]any{
		"token":   token,
		"expires": time.Now().Add(time.Duration(minutes) * time.Minute).UnixMilli(),
		"ssl":     false,
	})
}

func (m *MockArcGIS) queryHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	m.mu.Lock()
	m.QueryCount++
	m.Queries = append(m.Queries, q)
	m.LastReferer = r.Header.Get("Referer")
	token := m.token
	features := m.features
	maxRecordCount := m.maxRecordCount
	m.mu.Unlock()

	if q.Get("token") != token {
		writeJSON(w, map[string]any{
			"error": map[string]any{"code": 498, "message": "Invalid token.", "details": []string{}},
		})
		return
	}

	offset, _ := strconv.Atoi(q.Get("resultOffset"))
	count, err := strconv.Atoi(q.Get("resultRecordCount"))
	if err != nil || count <= 0 {
		count = len(features)
	}
	if maxRecordCount > 0 && count > maxRecordCount {
		count = maxRecordCount
	}

	page := []map[string]any{}
	if offset < len(features) {
		end := min(offset+count, len(features))
		for _, attrs := range features[offset:end] {
			page = append(page, map[string]any{"attributes": attrs})
		}
	}

	writeJSON(w, map[string]any{
		"objectIdFieldName":     "objectid",
		"features":              page,
		"exceededTransferLimit": offset+len(page) < len(features),
	})
}

// NewErrorResponse creates a 200 response carrying an ArcGIS error object.
func NewErrorResponse(code int, message string) MockResponse {
	body, _ := json.Marshal(map[string]any{
		"error": map[string]any{"code": code, "message": message, "details": []string{}},
	})
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewServerErrorResponse creates a plain 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "<html><body>Internal Server Error</body></html>",
		Headers:    map[string]string{"Content-Type": "text/html"},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
