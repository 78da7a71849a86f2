package substack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/ma2za/substack.go/pkg/constants"
)

const cookiesFilePermission = 0600

type loginRequest struct {
	CaptchaResponse *string `json:"captcha_response"`
	Email           string  `json:"email"`
	ForPub          string  `json:"for_pub"`
	Password        string  `json:"password"`
	Redirect        string  `json:"redirect"`
}

// Login opens a session with an email and password. The session cookies are kept
// in the client's cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) (map[string]any, error) {
	var out map[string]any
	err := c.sendJSON(ctx, http.MethodPost, c.baseEndpoint("/login"), loginRequest{
		Email:    email,
		Password: password,
		Redirect: "/",
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.forgetProfile()
	c.log.Info("logged in")
	return out, nil
}

// ImportCookies loads a JSON object of cookie names to values into the session.
func (c *Client) ImportCookies(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading cookies: %w", err)
	}
	var cookies map[string]string
	if err := json.Unmarshal(b, &cookies); err != nil {
		return fmt.Errorf("decoding cookies file %s: %w", path, err)
	}
	c.cookies = cookies
	c.applyCookies(c.baseURL)
	c.log.Info("loaded cookies", "path", path, "count", len(cookies))
	return nil
}

// applyCookies installs the imported cookies for u's host.
func (c *Client) applyCookies(u *url.URL) {
	if len(c.cookies) == 0 {
		return
	}
	cookies := make([]*http.Cookie, 0, len(c.cookies))
	for name, value := range c.cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	c.httpClient.Jar.SetCookies(u, cookies)
}

// Cookies returns the session cookies for the Substack host and the selected
// publication, by name.
func (c *Client) Cookies() map[string]string {
	out := make(map[string]string)
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		out[cookie.Name] = cookie.Value
	}
	if c.publication != nil {
		if u, err := url.Parse(c.publication.URL()); err == nil {
			for _, cookie := range c.httpClient.Jar.Cookies(u) {
				out[cookie.Name] = cookie.Value
			}
		}
	}
	return out
}

// ExportCookies writes the session cookies to path so that a later [New] can reuse
// them through [Config.CookiesPath]. Cookies rotate over time, so re-export them
// after each session.
func (c *Client) ExportCookies(path string) error {
	b, err := json.Marshal(c.Cookies())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, cookiesFilePermission); err != nil {
		return fmt.Errorf("writing cookies: %w", err)
	}
	return nil
}

// ChangePublication points publication scoped calls at pub and completes the
// sign-in for it.
func (c *Client) ChangePublication(ctx context.Context, pub *Publication) error {
	if pub == nil {
		return constants.ErrNoPublication
	}
	pubURL := pub.URL()
	api, err := url.JoinPath(pubURL, "api/v1")
	if err != nil {
		return fmt.Errorf("invalid publication URL %q: %w", pubURL, err)
	}

	selected := *pub
	selected.PublicationURL = pubURL
	c.publication = &selected
	c.publicationAPI = api
	if u, err := url.Parse(pubURL); err == nil {
		c.applyCookies(u)
	}
	c.log.Info("selected publication", "subdomain", pub.Subdomain, "url", pubURL)

	return c.signInForPublication(ctx, pub)
}

// signInForPublication completes the sign-in flow. The endpoint answers with a page
// rather than JSON, so malformed responses are not errors.
func (c *Client) signInForPublication(ctx context.Context, pub *Publication) error {
	signIn := url.URL{Scheme: c.baseURL.Scheme, Host: c.baseURL.Host, Path: "/sign-in"}
	query := url.Values{
		"redirect": {"/"},
		"for_pub":  {pub.Subdomain},
	}

	err := c.get(ctx, signIn.String(), query, nil)
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sign-in for %s: %w", pub.Subdomain, err)
	}
	return nil
}
