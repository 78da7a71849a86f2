package substack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/publicsuffix"

	"github.com/ma2za/substack.go/pkg/constants"
	"github.com/ma2za/substack.go/pkg/logger"
)

// Config holds everything [New] needs to open a session.
type Config struct {
	// Email and Password are used to log in when CookiesPath is empty.
	Email    string
	Password string
	// CookiesPath is a JSON file mapping cookie names to values, usually written by
	// [Client.ExportCookies]. It takes precedence over Email and Password.
	CookiesPath string

	// BaseURL defaults to https://substack.com/api/v1.
	BaseURL string
	// PublicationURL selects the publication whose subdomain it names, for example
	// https://example.substack.com. The primary publication is used when empty.
	PublicationURL string

	// Debug lowers the default logger to debug level. Ignored when Logger is set.
	Debug  bool
	Logger logger.Logger

	// HTTPClient is copied; its Transport is wrapped and a cookie jar is installed
	// when it has none.
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string

	// Tracing wraps the transport with OpenTelemetry instrumentation.
	Tracing bool
	// Registerer, when set, receives request count, latency and in-flight metrics.
	Registerer prometheus.Registerer

	// ProfileCacheTTL bounds how long the user profile is reused between calls.
	// Zero means five minutes, a negative value disables caching.
	ProfileCacheTTL time.Duration
}

// Client talks to Substack on behalf of one logged-in user and one selected
// publication. A Client must not be used by more than one goroutine at a time.
type Client struct {
	baseURL *url.URL

	// publicationAPI is the API root of the selected publication, empty until one is selected.
	publicationAPI string
	publication    *Publication

	httpClient *http.Client
	cookies    map[string]string
	cache      *cache.Cache
	metrics    *clientMetrics
	log        logger.Logger
}

// New authenticates and selects a publication.
func New(ctx context.Context, cfg Config) (*Client, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.CookiesPath != "":
		if err := c.ImportCookies(cfg.CookiesPath); err != nil {
			return nil, err
		}
	case cfg.Email != "" && cfg.Password != "":
		if _, err := c.Login(ctx, cfg.Email, cfg.Password); err != nil {
			return nil, err
		}
	default:
		return nil, constants.ErrNoCredentials
	}

	pub, err := c.findPublication(ctx, cfg.PublicationURL)
	if err != nil {
		return nil, err
	}
	if err := c.ChangePublication(ctx, pub); err != nil {
		return nil, err
	}

	return c, nil
}

func newClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = constants.DefaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", base)
	}

	log := cfg.Logger
	if log == nil {
		l, err := logger.New().WithDebug(cfg.Debug).Make()
		if err != nil {
			return nil, err
		}
		log = l
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		*httpClient = *cfg.HTTPClient
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	switch {
	case cfg.Timeout > 0:
		httpClient.Timeout = cfg.Timeout
	case httpClient.Timeout == 0:
		httpClient.Timeout = constants.DefaultHTTPTimeout
	}

	transport, metrics, err := newTransport(httpClient.Transport, cfg)
	if err != nil {
		return nil, err
	}
	httpClient.Transport = transport

	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    metrics,
		log:        log,
	}

	ttl := cfg.ProfileCacheTTL
	if ttl == 0 {
		ttl = constants.DefaultProfileCacheTTL
	}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}

	return c, nil
}

// BaseURL returns the API root used for user scoped calls.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// PublicationAPIURL returns the API root of the selected publication.
func (c *Client) PublicationAPIURL() string {
	return c.publicationAPI
}

// Publication returns the selected publication, or nil before one is selected.
func (c *Client) Publication() *Publication {
	return c.publication
}

func (c *Client) baseEndpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) publicationEndpoint(path string) (string, error) {
	if c.publicationAPI == "" {
		return "", constants.ErrNoPublication
	}
	return c.publicationAPI + path, nil
}

// do performs one request and decodes the JSON response into out. A nil out only
// checks that the response is JSON.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, contentType string, out any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response of %s %s: %w", method, req.URL.Path, err)
	}
	c.log.Debug("substack request",
		"method", method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBytes)
	}
	if !json.Valid(respBytes) {
		return &MalformedResponseError{Body: string(respBytes)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("decoding response of %s %s: %w", method, req.URL.Path, err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, method, endpoint, nil, bytes.NewReader(b), "application/json", out)
}

func (c *Client) sendForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

// Call sends an arbitrary request to the selected publication's API. The endpoint
// is relative to the publication API root and params are sent as the query string.
func (c *Client) Call(ctx context.Context, endpoint, method string, params url.Values) (json.RawMessage, error) {
	u, err := c.publicationEndpoint("/" + strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.do(ctx, strings.ToUpper(method), u, params, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}
