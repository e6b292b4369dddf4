// Package testutil provides testing utilities for the start.gg client and
// the ingestion pipeline.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// GraphQLRequest is the decoded request envelope the mock hands to handlers.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Page returns the request's page variable, defaulting to 1.
func (r GraphQLRequest) Page() int {
	v, ok := r.Variables["page"]
	if !ok {
		return 1
	}
	// Variables round-trip through JSON, so numbers arrive as float64.
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 1
}

// Handler produces the response for one GraphQL request.
type Handler func(w http.ResponseWriter, req GraphQLRequest)

// MockStartgg is a configurable mock start.gg GraphQL server. Handlers are
// keyed by operation keyword, matched against the request's query text
// (e.g. "tournaments", "participants", "sets").
type MockStartgg struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]Handler

	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockStartgg creates a new mock GraphQL server.
func NewMockStartgg() *MockStartgg {
	mock := &MockStartgg{
		handlers: make(map[string]Handler),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		var req GraphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"errors":[{"message":"malformed request"}]}`, http.StatusBadRequest)
			return
		}

		mock.mu.RLock()
		handler := mock.match(req.Query)
		mock.mu.RUnlock()

		if handler == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"data":{}}`)
			return
		}
		handler(w, req)
	}))

	return mock
}

// match returns the handler whose keyword appears in the query text.
func (m *MockStartgg) match(query string) Handler {
	for keyword, handler := range m.handlers {
		if strings.Contains(query, keyword+"(") {
			return handler
		}
	}
	return nil
}

// URL returns the mock server URL.
func (m *MockStartgg) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockStartgg) Close() {
	m.server.Close()
}

// Reset clears tracking state.
func (m *MockStartgg) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockStartgg) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler registers the handler for an operation keyword.
func (m *MockStartgg) SetHandler(keyword string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[keyword] = handler
}

// SetData registers a fixed 200 response carrying the given data payload.
func (m *MockStartgg) SetData(keyword, data string) {
	m.SetHandler(keyword, func(w http.ResponseWriter, req GraphQLRequest) {
		WriteData(w, data)
	})
}

// SetPagedData registers a handler serving a different data payload per page
// variable. Pages without a payload get an empty data object.
func (m *MockStartgg) SetPagedData(keyword string, pages map[int]string) {
	m.SetHandler(keyword, func(w http.ResponseWriter, req GraphQLRequest) {
		data, ok := pages[req.Page()]
		if !ok {
			WriteData(w, `{}`)
			return
		}
		WriteData(w, data)
	})
}

// WriteData writes a 200 GraphQL response with the given data payload.
func WriteData(w http.ResponseWriter, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"data":%s}`, data)
}

// WriteErrors writes a 200 GraphQL response carrying an error payload.
func WriteErrors(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"errors":[{"message":%q}]}`, message)
}

// WriteStatus writes a bare HTTP error status.
func WriteStatus(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":"status %d"}`, status)
}
