package substack_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	substack "github.com/ma2za/substack.go"
	"github.com/ma2za/substack.go/internal/fakesubstack"
	"github.com/ma2za/substack.go/pkg/constants"
	"github.com/ma2za/substack.go/pkg/logger"
)

func startFake(t *testing.T) *fakesubstack.Server {
	t.Helper()
	server := fakesubstack.NewServer()
	server.Start()
	t.Cleanup(server.Stop)
	return server
}

func testConfig(server *fakesubstack.Server) substack.Config {
	return substack.Config{
		Email:      fakesubstack.DefaultEmail,
		Password:   fakesubstack.DefaultPassword,
		BaseURL:    server.BaseURL(),
		HTTPClient: server.Client(),
		Logger:     logger.Nop(),
	}
}

func newTestClient(t *testing.T, server *fakesubstack.Server, mutate ...func(*substack.Config)) *substack.Client {
	t.Helper()
	cfg := testConfig(server)
	for _, m := range mutate {
		m(&cfg)
	}
	client, err := substack.New(context.Background(), cfg)
	require.NoError(t, err)
	return client
}

func TestNewSelectsPrimaryPublication(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)

	pub := client.Publication()
	require.NotNil(t, pub)
	assert.Equal(t, "notes", pub.Subdomain)
	assert.Equal(t, "https://"+server.Address(), pub.PublicationURL)
	assert.Equal(t, server.URL()+"/api/v1", client.PublicationAPIURL())
	assert.Equal(t, []string{"notes"}, server.SignIns())
	assert.Equal(t, 1, server.Hits("/api/v1/login"))
}

func TestNewSelectsPublicationByURL(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server, func(cfg *substack.Config) {
		cfg.PublicationURL = "https://Archive.substack.com/"
	})

	assert.Equal(t, "archive", client.Publication().Subdomain)
	assert.Equal(t, []string{"archive"}, server.SignIns())
}

func TestNewUnknownPublication(t *testing.T) {
	server := startFake(t)
	cfg := testConfig(server)
	cfg.PublicationURL = "https://missing.substack.com"

	_, err := substack.New(context.Background(), cfg)
	require.ErrorIs(t, err, constants.ErrPublicationNotFound)
}

func TestNewWithoutCredentials(t *testing.T) {
	_, err := substack.New(context.Background(), substack.Config{Email: "only@example.com", Logger: logger.Nop()})
	require.ErrorIs(t, err, constants.ErrNoCredentials)
}

func TestNewWrongPassword(t *testing.T) {
	server := startFake(t)
	cfg := testConfig(server)
	cfg.Password = "wrong"

	_, err := substack.New(context.Background(), cfg)
	var apiErr *substack.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestNewInvalidBaseURL(t *testing.T) {
	_, err := substack.New(context.Background(), substack.Config{
		Email:    "a",
		Password: "b",
		BaseURL:  "not a url",
		Logger:   logger.Nop(),
	})
	require.Error(t, err)
}

func TestCookiesRoundTrip(t *testing.T) {
	server := startFake(t)
	first := newTestClient(t, server)
	assert.Equal(t, server.SessionToken, first.Cookies()[fakesubstack.SessionCookie])

	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, first.ExportCookies(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"substack.sid":"fake-session"}`, string(b))

	second := newTestClient(t, server, func(cfg *substack.Config) {
		cfg.Email, cfg.Password = "", ""
		cfg.CookiesPath = path
	})
	count, err := second.SubscriberCount(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1234, count)
	assert.Equal(t, 1, server.Hits("/api/v1/login"))
}

func TestCookiesFileTakesPrecedence(t *testing.T) {
	server := startFake(t)
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"substack.sid":"stale"}`), 0600))

	cfg := testConfig(server)
	cfg.CookiesPath = path
	_, err := substack.New(context.Background(), cfg)

	var apiErr *substack.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Not authorized", apiErr.Message)
	assert.Zero(t, server.Hits("/api/v1/login"))
}

func TestMissingCookiesFile(t *testing.T) {
	server := startFake(t)
	cfg := testConfig(server)
	cfg.CookiesPath = filepath.Join(t.TempDir(), "nope.json")

	_, err := substack.New(context.Background(), cfg)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestProfileIsCached(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	id, err := client.UserID(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, fakesubstack.DefaultUserID, id)

	_, err = client.UserPublications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, server.Hits("/api/v1/user/profile/self"))
}

func TestProfileCacheDisabled(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server, func(cfg *substack.Config) {
		cfg.ProfileCacheTTL = -1
	})
	ctx := context.Background()

	_, err := client.UserID(ctx)
	require.NoError(t, err)
	_, err = client.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, server.Hits("/api/v1/user/profile/self"))
}

func TestUserPublications(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)

	pubs, err := client.UserPublications(context.Background())
	require.NoError(t, err)
	require.Len(t, pubs, 2)
	assert.Equal(t, "notes", pubs[0].Subdomain)
	assert.Equal(t, "archive", pubs[1].Subdomain)
	for _, pub := range pubs {
		assert.Equal(t, "https://"+server.Address(), pub.PublicationURL)
	}

	primary, err := client.PrimaryPublication(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Notes", primary.Name)
}

func TestChangePublication(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	pubs, err := client.UserPublications(ctx)
	require.NoError(t, err)
	require.NoError(t, client.ChangePublication(ctx, &pubs[1]))

	assert.Equal(t, "archive", client.Publication().Subdomain)
	assert.Equal(t, []string{"notes", "archive"}, server.SignIns())
	require.ErrorIs(t, client.ChangePublication(ctx, nil), constants.ErrNoPublication)
}

func TestSignInFailureIsReported(t *testing.T) {
	server := startFake(t)
	server.AddStubResponse(fakesubstack.StubResponse{
		Matcher:    fakesubstack.RequestMatcher{Path: "/sign-in"},
		StatusCode: http.StatusForbidden,
		Body:       `{"error":"Forbidden"}`,
	})

	_, err := substack.New(context.Background(), testConfig(server))
	var apiErr *substack.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Forbidden", apiErr.Message)
}

func TestMalformedResponse(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)
	server.AddStubResponse(fakesubstack.StubResponse{
		Matcher: fakesubstack.RequestMatcher{Method: http.MethodGet, Path: "/api/v1/settings"},
		Body:    "<html>maintenance</html>",
	})

	_, err := client.UserSettings(context.Background())
	var malformed *substack.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "<html>maintenance</html>", malformed.Body)
	require.ErrorIs(t, err, constants.ErrMalformedResponse)
}

func TestAPIErrorWithoutJSON(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)
	server.SetGlobalFailures([]fakesubstack.FailureConfig{{
		Type:        fakesubstack.FailureStatus,
		Probability: 1,
		StatusCode:  http.StatusBadGateway,
		Body:        "Bad Gateway",
	}})

	_, err := client.SubscriberCount(context.Background())
	var apiErr *substack.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Invalid JSON error message from Substack: Bad Gateway", apiErr.Message)
	assert.Equal(t, "APIError(code=502): Invalid JSON error message from Substack: Bad Gateway", apiErr.Error())
}

func TestRequestTimeout(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server, func(cfg *substack.Config) {
		cfg.Timeout = 50 * time.Millisecond
	})
	server.SetGlobalFailures([]fakesubstack.FailureConfig{{
		Type:        fakesubstack.FailureRequestDelay,
		Probability: 1,
		Delay:       500 * time.Millisecond,
	}})

	_, err := client.SubscriberCount(context.Background())
	require.Error(t, err)
}

func TestContextCancellation(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.SubscriberCount(ctx)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestUserAgent(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server, func(cfg *substack.Config) {
		cfg.UserAgent = "substack-tests/2.0"
	})
	server.AddStubResponse(fakesubstack.StubResponse{
		Matcher: fakesubstack.RequestMatcher{
			Path:    "/api/v1/settings",
			Matcher: func(r *http.Request) bool { return r.UserAgent() == "substack-tests/2.0" },
		},
		Body: `{"agent":"matched"}`,
	})

	settings, err := client.UserSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "matched", settings["agent"])
}

func TestPublicationURLFor(t *testing.T) {
	assert.Equal(t, "https://notes.substack.com", substack.PublicationURLFor(substack.Publication{Subdomain: "notes"}))
	assert.Equal(t, "https://www.example.com", substack.PublicationURLFor(substack.Publication{
		Subdomain:    "notes",
		CustomDomain: "www.example.com",
	}))
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("SUBSTACK_TEST_VALUE", "set")
	assert.Equal(t, "set", substack.GetEnvOrDefault("SUBSTACK_TEST_VALUE", "default"))
	assert.Equal(t, "default", substack.GetEnvOrDefault("SUBSTACK_TEST_UNSET", "default"))

	t.Setenv("SUBSTACK_TEST_BOOL", "true")
	assert.True(t, substack.GetEnvBool("SUBSTACK_TEST_BOOL", false))
	t.Setenv("SUBSTACK_TEST_BOOL", "maybe")
	assert.False(t, substack.GetEnvBool("SUBSTACK_TEST_BOOL", false))
}

func TestLoginKeepsEmailOutOfLogs(t *testing.T) {
	server := startFake(t)
	var buf bytes.Buffer
	l, err := logger.New().FromBuffer(&buf).WithDebug(true).Make()
	require.NoError(t, err)

	newTestClient(t, server, func(cfg *substack.Config) {
		cfg.Logger = l
	})

	assert.Contains(t, buf.String(), "logged in")
	assert.NotContains(t, buf.String(), fakesubstack.DefaultEmail)
}
