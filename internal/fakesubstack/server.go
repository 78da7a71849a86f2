// Package fakesubstack provides a fake Substack HTTP server for testing purposes.
// It serves the subset of the private API the client uses, keeps drafts in memory
// and includes failure injection capabilities.
//
// The server listens with TLS on 127.0.0.1. Every publication it reports uses the
// listener address as its custom domain, so publication scoped calls come back to
// the same server. Use [Server.Client] as the HTTP client so that the test
// certificate is trusted.
//
// To flexibly inject failures, you can configure stub responses that match
// specific methods and paths, along with failure configurations that specify how
// it fails (e.g., delays, non-JSON bodies, dropped connections).
package fakesubstack

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

const (
	// SessionCookie is the cookie the fake sets on login and requires afterwards.
	SessionCookie = "substack.sid"

	DefaultEmail    = "ada@example.com"
	DefaultPassword = "correct horse"
	DefaultUserID   = 42
)

// cryptoRandFloat64 generates a cryptographically secure random float64 in [0.0, 1.0)
func cryptoRandFloat64() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<53))
	return float64(n.Int64()) / float64(1<<53)
}

// FailureType represents the type of failure to inject during request processing
type FailureType string

const (
	// FailureNone indicates no failure injection
	FailureNone FailureType = "none"
	// FailureRequestDelay delays before processing the request
	FailureRequestDelay FailureType = "request_delay"
	// FailureInvalidResponse answers 200 with a body that is not JSON
	FailureInvalidResponse FailureType = "invalid_response"
	// FailureStatus answers with StatusCode and Body
	FailureStatus FailureType = "status"
	// FailureDropConnection immediately closes the underlying network connection
	FailureDropConnection FailureType = "drop_connection"
)

// FailureConfig defines how and when to inject a specific failure type
type FailureConfig struct {
	Type FailureType
	// Probability of triggering this failure (0.0 to 1.0)
	Probability float64
	// Delay for FailureRequestDelay
	Delay time.Duration
	// StatusCode and Body for FailureStatus
	StatusCode int
	Body       string
}

// RequestMatcher defines criteria for matching incoming requests.
type RequestMatcher struct {
	// Method is matched exactly when not empty.
	Method string
	// Path is matched exactly against the request path.
	Path string
	// Matcher is an optional function for finer matching.
	Matcher func(r *http.Request) bool
}

func (m RequestMatcher) match(r *http.Request) bool {
	if m.Method != "" && m.Method != r.Method {
		return false
	}
	if m.Path != "" && m.Path != r.URL.Path {
		return false
	}
	return m.Matcher == nil || m.Matcher(r)
}

// StubResponse overrides the response to matching requests.
type StubResponse struct {
	Matcher    RequestMatcher
	StatusCode int
	// Body is written verbatim.
	Body string
	// Failures are evaluated before the stub answers.
	Failures []FailureConfig
}

// Publication is a publication as the fake reports it.
type Publication struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Subdomain    string    `json:"subdomain"`
	CustomDomain string    `json:"custom_domain"`
	Hostname     string    `json:"hostname"`
	Sections     []Section `json:"-"`
}

// Section is a publication section.
type Section struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	IsLive bool   `json:"is_live"`
}

// Server is a fake Substack server with in-memory state.
type Server struct {
	mu sync.RWMutex

	httpServer *httptest.Server
	router     *mux.Router

	stubResponses  []StubResponse
	globalFailures []FailureConfig

	// Email and Password are the only credentials accepted by login.
	Email    string
	Password string
	// SessionToken is the value of [SessionCookie] for an authenticated session.
	SessionToken string

	UserID          int64
	UserName        string
	Publications    []Publication
	SubscriberCount int64
	// CategoryPublications is the number of publications each category holds.
	CategoryPublications int

	drafts      map[int64]*Draft
	nextDraftID int64
	images      []string
	signIns     []string
	hits        map[string]int
}

// NewServer creates a fake server with one user owning two publications,
// "notes" (primary) and "archive". Call [Server.Start] before use.
func NewServer() *Server {
	s := &Server{
		Email:                DefaultEmail,
		Password:             DefaultPassword,
		SessionToken:         "fake-session",
		UserID:               DefaultUserID,
		UserName:             "Ada",
		SubscriberCount:      1234,
		CategoryPublications: 60,
		drafts:               make(map[int64]*Draft),
		nextDraftID:          1000,
		hits:                 make(map[string]int),
		Publications: []Publication{
			{
				ID:        1,
				Name:      "Notes",
				Subdomain: "notes",
				Sections: []Section{
					{ID: 11, Name: "Essays", Slug: "essays", IsLive: true},
					{ID: 12, Name: "Links", Slug: "links", IsLive: true},
				},
			},
			{ID: 2, Name: "Archive", Subdomain: "archive"},
		},
	}
	s.router = s.routes()
	s.httpServer = httptest.NewUnstartedServer(s)
	return s
}

// Start starts the TLS listener and points every publication at it.
func (s *Server) Start() {
	s.httpServer.StartTLS()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Publications {
		s.Publications[i].CustomDomain = s.Address()
		s.Publications[i].Hostname = s.Address()
	}
}

// Stop shuts down the server and closes all connections
func (s *Server) Stop() {
	s.httpServer.Close()
}

// Address returns the host:port the server listens on.
func (s *Server) Address() string {
	return s.httpServer.Listener.Addr().String()
}

// URL returns the server root, e.g. https://127.0.0.1:1234.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// BaseURL returns the API root to configure the client with.
func (s *Server) BaseURL() string {
	return s.httpServer.URL + "/api/v1"
}

// Client returns an HTTP client that trusts the server's certificate.
func (s *Server) Client() *http.Client {
	return s.httpServer.Client()
}

// AddStubResponse adds a stub response configuration to the server.
// Stub responses are matched in the order they were added.
func (s *Server) AddStubResponse(stub StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubResponses = append(s.stubResponses, stub)
}

// SetGlobalFailures sets failure configurations that apply to all requests.
// These are checked before stub-specific failures.
func (s *Server) SetGlobalFailures(failures []FailureConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalFailures = failures
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits[path]
}

// SignIns returns the subdomains passed to the sign-in page, in order.
func (s *Server) SignIns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.signIns...)
}

// Images returns the image form values received, in order.
func (s *Server) Images() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.images...)
}

// ServeHTTP applies failures and stubs before routing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	globalFailures := s.globalFailures
	var stub *StubResponse
	for i := range s.stubResponses {
		if s.stubResponses[i].Matcher.match(r) {
			stub = &s.stubResponses[i]
			break
		}
	}
	s.mu.Unlock()

	if s.injectFailures(w, globalFailures) {
		return
	}
	if stub != nil {
		if s.injectFailures(w, stub.Failures) {
			return
		}
		status := stub.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(stub.Body))
		return
	}

	s.router.ServeHTTP(w, r)
}

// injectFailures reports whether a response has already been written.
func (s *Server) injectFailures(w http.ResponseWriter, failures []FailureConfig) bool {
	for _, f := range failures {
		if f.Type == FailureNone || cryptoRandFloat64() >= f.Probability {
			continue
		}
		switch f.Type {
		case FailureRequestDelay:
			time.Sleep(f.Delay)
		case FailureInvalidResponse:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Something went wrong</body></html>"))
			return true
		case FailureStatus:
			w.WriteHeader(f.StatusCode)
			_, _ = w.Write([]byte(f.Body))
			return true
		case FailureDropConnection:
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return true
				}
			}
			panic(http.ErrAbortHandler)
		}
	}
	return false
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"errors": []map[string]string{{"msg": message}},
	})
}

// requireSession rejects requests without the session cookie.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/login") {
			next.ServeHTTP(w, r)
			return
		}
		cookie, err := r.Cookie(SessionCookie)
		s.mu.RLock()
		token := s.SessionToken
		s.mu.RUnlock()
		if err != nil || cookie.Value != token {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
