// Package fredtest provides test doubles for the FRED API: an httptest
// server serving category/children and a manual clock.
package fredtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Category is one child record served by the mock.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent_id"`
	Notes    string `json:"notes,omitempty"`
}

// Server simulates the category/children endpoint. Unknown ids return an
// empty categories array.
type Server struct {
	server *httptest.Server
	apiKey string

	mu       sync.Mutex
	children map[string][]Category
	raw      map[string]string
	errors   map[string]int
	requests []string
}

// NewServer starts a mock FRED API that accepts apiKey.
func NewServer(apiKey string) *Server {
	s := &Server{
		apiKey:   apiKey,
		children: make(map[string][]Category),
		raw:      make(map[string]string),
		errors:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/fred/category/children", s.handleChildren)
	s.server = httptest.NewServer(mux)
	return s
}

// URL is the base URL to configure clients with, including the /fred prefix.
func (s *Server) URL() string {
	return s.server.URL + "/fred"
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetChildren registers the children returned for id.
func (s *Server) SetChildren(id string, cats ...Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[id] = cats
}

// SetRawResponse makes id answer with body verbatim and status 200.
func (s *Server) SetRawResponse(id, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[id] = body
}

// SetError makes id answer with a FRED error envelope and status code.
func (s *Server) SetError(id string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[id] = code
}

// Requests returns the category ids requested so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestCount is len(Requests()).
func (s *Server) RequestCount() int {
	return len(s.Requests())
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("category_id")

	s.mu.Lock()
	s.requests = append(s.requests, id)
	code, failing := s.errors[id]
	raw, hasRaw := s.raw[id]
	cats := s.children[id]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if q.Get("api_key") != s.apiKey {
		writeError(w, http.StatusBadRequest, "Bad Request.  The value for variable api_key is not registered.")
		return
	}
	if q.Get("file_type") != "json" {
		writeError(w, http.StatusBadRequest, "Bad Request.  Variable file_type is not one of the following values: xml, json.")
		return
	}
	if failing {
		writeError(w, code, http.StatusText(code))
		return
	}
	if hasRaw {
		w.Write([]byte(raw))
		return
	}

	if cats == nil {
		cats = []Category{}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"categories": cats})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error_code":    code,
		"error_message": message,
	})
}
