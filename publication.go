package substack

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ma2za/substack.go/pkg/constants"
)

const profileCacheKey = "profile"

var subdomainPattern = regexp.MustCompile(`https://(.*).substack.com`)

// Publication is a newsletter the user writes for.
type Publication struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Subdomain    string `json:"subdomain"`
	CustomDomain string `json:"custom_domain"`
	Hostname     string `json:"hostname,omitempty"`
	// PublicationURL is filled in by the client, see [PublicationURLFor].
	PublicationURL string `json:"publication_url,omitempty"`
}

// URL returns PublicationURL when set and the derived URL otherwise.
func (p Publication) URL() string {
	if p.PublicationURL != "" {
		return p.PublicationURL
	}
	return PublicationURLFor(p)
}

// PublicationURLFor returns https://<custom domain> when the publication has one and
// https://<subdomain>.substack.com otherwise.
func PublicationURLFor(p Publication) string {
	if p.CustomDomain != "" {
		return "https://" + p.CustomDomain
	}
	return fmt.Sprintf("https://%s.substack.com", p.Subdomain)
}

// PublicationUser links the user to one of their publications.
type PublicationUser struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"user_id"`
	PublicationID int64       `json:"publication_id"`
	Role          string      `json:"role"`
	Publication   Publication `json:"publication"`
}

// Profile is the logged-in user's profile.
type Profile struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	Handle             string            `json:"handle"`
	PhotoURL           string            `json:"photo_url"`
	Bio                string            `json:"bio"`
	PrimaryPublication *Publication      `json:"primaryPublication"`
	PublicationUsers   []PublicationUser `json:"publicationUsers"`
}

// Section is a section of a publication.
type Section struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	IsLive bool   `json:"is_live"`
}

// UserProfile returns the logged-in user's profile. The profile is cached for
// [Config.ProfileCacheTTL]; do not modify the returned value.
func (c *Client) UserProfile(ctx context.Context) (*Profile, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(profileCacheKey); ok {
			return cached.(*Profile), nil
		}
	}

	var profile Profile
	if err := c.get(ctx, c.baseEndpoint("/user/profile/self"), nil, &profile); err != nil {
		return nil, fmt.Errorf("user profile: %w", err)
	}

	if c.cache != nil {
		c.cache.SetDefault(profileCacheKey, &profile)
	}
	return &profile, nil
}

func (c *Client) forgetProfile() {
	if c.cache != nil {
		c.cache.Delete(profileCacheKey)
	}
}

// UserID returns the logged-in user's id, as used in draft bylines.
func (c *Client) UserID(ctx context.Context) (int64, error) {
	profile, err := c.UserProfile(ctx)
	if err != nil {
		return 0, err
	}
	return profile.ID, nil
}

// UserSettings returns the account settings.
func (c *Client) UserSettings(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, c.baseEndpoint("/settings"), nil, &out); err != nil {
		return nil, fmt.Errorf("user settings: %w", err)
	}
	return out, nil
}

// UserPublications lists every publication the user belongs to, with their URLs.
func (c *Client) UserPublications(ctx context.Context) ([]Publication, error) {
	profile, err := c.UserProfile(ctx)
	if err != nil {
		return nil, err
	}
	pubs := make([]Publication, 0, len(profile.PublicationUsers))
	for _, pu := range profile.PublicationUsers {
		pub := pu.Publication
		pub.PublicationURL = PublicationURLFor(pub)
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

// PrimaryPublication returns the user's primary publication, with its URL.
func (c *Client) PrimaryPublication(ctx context.Context) (*Publication, error) {
	profile, err := c.UserProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile.PrimaryPublication == nil {
		return nil, constants.ErrNoPublication
	}
	pub := *profile.PrimaryPublication
	pub.PublicationURL = PublicationURLFor(pub)
	return &pub, nil
}

// findPublication returns the user's publication whose subdomain appears in
// publicationURL, or the primary publication when publicationURL is empty.
func (c *Client) findPublication(ctx context.Context, publicationURL string) (*Publication, error) {
	if publicationURL == "" {
		return c.PrimaryPublication(ctx)
	}

	var subdomain string
	if m := subdomainPattern.FindStringSubmatch(strings.ToLower(publicationURL)); m != nil {
		subdomain = m[1]
	}

	pubs, err := c.UserPublications(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pubs {
		if subdomain != "" && pubs[i].Subdomain == subdomain {
			return &pubs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", constants.ErrPublicationNotFound, publicationURL)
}

// PublicationUsers lists the users of the selected publication.
func (c *Client) PublicationUsers(ctx context.Context) ([]map[string]any, error) {
	u, err := c.publicationEndpoint("/publication/users")
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	if err := c.get(ctx, u, nil, &out); err != nil {
		return nil, fmt.Errorf("publication users: %w", err)
	}
	return out, nil
}

// SubscriberCount returns the selected publication's subscriber count.
func (c *Client) SubscriberCount(ctx context.Context) (int64, error) {
	u, err := c.publicationEndpoint("/publication_launch_checklist")
	if err != nil {
		return 0, err
	}
	var out struct {
		SubscriberCount int64 `json:"subscriberCount"`
	}
	if err := c.get(ctx, u, nil, &out); err != nil {
		return 0, fmt.Errorf("subscriber count: %w", err)
	}
	return out.SubscriberCount, nil
}

// Sections lists the sections of the selected publication.
func (c *Client) Sections(ctx context.Context) ([]Section, error) {
	u, err := c.publicationEndpoint("/subscriptions")
	if err != nil {
		return nil, err
	}
	var out struct {
		Publications []struct {
			Hostname string    `json:"hostname"`
			Sections []Section `json:"sections"`
		} `json:"publications"`
	}
	if err := c.get(ctx, u, nil, &out); err != nil {
		return nil, fmt.Errorf("sections: %w", err)
	}
	for _, pub := range out.Publications {
		if pub.Hostname != "" && strings.Contains(c.publicationAPI, pub.Hostname) {
			return pub.Sections, nil
		}
	}
	return nil, fmt.Errorf("%w: no subscription matches %s", constants.ErrPublicationNotFound, c.publicationAPI)
}

// PublicationEmbed asks the publication to resolve url into embeddable metadata.
func (c *Client) PublicationEmbed(ctx context.Context, url string) (map[string]any, error) {
	raw, err := c.Call(ctx, "/publication/embed", "GET", map[string][]string{"url": {url}})
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("publication embed: %w", err)
	}
	return out, nil
}
