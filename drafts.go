package substack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ma2za/substack.go/pkg/constants"
	"github.com/ma2za/substack.go/pkg/post"
)

// scheduleLayout matches the ISO 8601 form Substack expects for post_date.
const scheduleLayout = "2006-01-02T15:04:05.999999-07:00"

// deleteAllBatch is the number of drafts listed per round of [Client.DeleteAllDrafts].
const deleteAllBatch = 10

// DraftID identifies a draft or post. Substack sends it as a number but accepts it
// as a string in paths, so it is kept opaque.
type DraftID string

func (id DraftID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a JSON number or string.
func (id *DraftID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = DraftID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("draft id: %w", err)
	}
	*id = DraftID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers and anything else as a string.
func (id DraftID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Draft is a draft or post as returned by the drafts and posts endpoints.
type Draft struct {
	ID                      DraftID       `json:"id"`
	UUID                    string        `json:"uuid,omitempty"`
	Title                   string        `json:"title,omitempty"`
	Subtitle                string        `json:"subtitle,omitempty"`
	Slug                    string        `json:"slug,omitempty"`
	Type                    string        `json:"type,omitempty"`
	DraftTitle              string        `json:"draft_title,omitempty"`
	DraftSubtitle           string        `json:"draft_subtitle,omitempty"`
	DraftBody               string        `json:"draft_body,omitempty"`
	DraftBylines            []post.Byline `json:"draft_bylines,omitempty"`
	Audience                post.Audience `json:"audience,omitempty"`
	WriteCommentPermissions post.Audience `json:"write_comment_permissions,omitempty"`
	IsPublished             bool          `json:"is_published"`
	PostDate                *time.Time    `json:"post_date,omitempty"`
	DraftCreatedAt          *time.Time    `json:"draft_created_at,omitempty"`
	DraftUpdatedAt          *time.Time    `json:"draft_updated_at,omitempty"`
	CanonicalURL            string        `json:"canonical_url,omitempty"`
}

// DisplayTitle returns the published title, falling back to the draft title.
func (d Draft) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.DraftTitle
}

// DraftsQuery filters [Client.Drafts]. Nil fields are not sent.
type DraftsQuery struct {
	// Filter is usually "draft" to exclude published posts.
	Filter string
	Offset *int
	Limit  *int
}

func (q DraftsQuery) values() url.Values {
	v := url.Values{}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if q.Offset != nil {
		v.Set("offset", strconv.Itoa(*q.Offset))
	}
	if q.Limit != nil {
		v.Set("limit", strconv.Itoa(*q.Limit))
	}
	return v
}

// Int returns a pointer to v, for the optional fields of queries.
func Int(v int) *int {
	return &v
}

// PublishOptions controls [Client.PublishDraft].
type PublishOptions struct {
	// Send emails the post to subscribers.
	Send               bool `json:"send"`
	ShareAutomatically bool `json:"share_automatically"`
}

func (c *Client) draftEndpoint(id DraftID, suffix string) (string, error) {
	if id == "" {
		return "", constants.ErrEmptyDraftID
	}
	return c.publicationEndpoint("/drafts/" + url.PathEscape(id.String()) + suffix)
}

// Drafts lists drafts and posts of the selected publication.
func (c *Client) Drafts(ctx context.Context, q DraftsQuery) ([]Draft, error) {
	u, err := c.publicationEndpoint("/drafts")
	if err != nil {
		return nil, err
	}
	var out []Draft
	if err := c.get(ctx, u, q.values(), &out); err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return out, nil
}

// Draft fetches one draft.
func (c *Client) Draft(ctx context.Context, id DraftID) (*Draft, error) {
	u, err := c.draftEndpoint(id, "")
	if err != nil {
		return nil, err
	}
	var out Draft
	if err := c.get(ctx, u, nil, &out); err != nil {
		return nil, fmt.Errorf("get draft %s: %w", id, err)
	}
	return &out, nil
}

// DeleteDraft deletes one draft.
func (c *Client) DeleteDraft(ctx context.Context, id DraftID) error {
	u, err := c.draftEndpoint(id, "")
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, u, nil, nil, "", nil); err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	c.log.Debug("deleted draft", "id", id)
	return nil
}

// PostDraft creates a draft from a serialized post.
func (c *Client) PostDraft(ctx context.Context, draft *post.Draft) (*Draft, error) {
	u, err := c.publicationEndpoint("/drafts")
	if err != nil {
		return nil, err
	}
	var out Draft
	if err := c.sendJSON(ctx, http.MethodPost, u, draft, &out); err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	c.log.Info("created draft", "id", out.ID, "title", draft.Title)
	return &out, nil
}

// PutDraft updates the given fields of a draft, for example draft_title or
// draft_section_id.
func (c *Client) PutDraft(ctx context.Context, id DraftID, fields map[string]any) (*Draft, error) {
	u, err := c.draftEndpoint(id, "")
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	var out Draft
	if err := c.sendJSON(ctx, http.MethodPut, u, fields, &out); err != nil {
		return nil, fmt.Errorf("update draft %s: %w", id, err)
	}
	return &out, nil
}

// UpdateDraft replaces the content of a draft with a serialized post.
func (c *Client) UpdateDraft(ctx context.Context, id DraftID, draft *post.Draft) (*Draft, error) {
	u, err := c.draftEndpoint(id, "")
	if err != nil {
		return nil, err
	}
	var out Draft
	if err := c.sendJSON(ctx, http.MethodPut, u, draft, &out); err != nil {
		return nil, fmt.Errorf("update draft %s: %w", id, err)
	}
	return &out, nil
}

// PrepublishDraft runs the checks Substack performs before publishing.
func (c *Client) PrepublishDraft(ctx context.Context, id DraftID) (map[string]any, error) {
	u, err := c.draftEndpoint(id, "/prepublish")
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := c.get(ctx, u, nil, &out); err != nil {
		return nil, fmt.Errorf("prepublish draft %s: %w", id, err)
	}
	return out, nil
}

// PublishDraft publishes a draft.
func (c *Client) PublishDraft(ctx context.Context, id DraftID, opts PublishOptions) (*Draft, error) {
	u, err := c.draftEndpoint(id, "/publish")
	if err != nil {
		return nil, err
	}
	var out Draft
	if err := c.sendJSON(ctx, http.MethodPost, u, opts, &out); err != nil {
		return nil, fmt.Errorf("publish draft %s: %w", id, err)
	}
	c.log.Info("published draft", "id", id, "send", opts.Send)
	return &out, nil
}

type scheduleRequest struct {
	PostDate *string `json:"post_date"`
}

// ScheduleDraft schedules a draft to be published at the given time.
func (c *Client) ScheduleDraft(ctx context.Context, id DraftID, at time.Time) (map[string]any, error) {
	date := at.Format(scheduleLayout)
	return c.schedule(ctx, id, scheduleRequest{PostDate: &date})
}

// UnscheduleDraft cancels a scheduled publication.
func (c *Client) UnscheduleDraft(ctx context.Context, id DraftID) (map[string]any, error) {
	return c.schedule(ctx, id, scheduleRequest{})
}

func (c *Client) schedule(ctx context.Context, id DraftID, body scheduleRequest) (map[string]any, error) {
	u, err := c.draftEndpoint(id, "/schedule")
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := c.sendJSON(ctx, http.MethodPost, u, body, &out); err != nil {
		return nil, fmt.Errorf("schedule draft %s: %w", id, err)
	}
	return out, nil
}

// DeleteAllDrafts deletes unpublished drafts until none is left and returns how many
// were deleted.
func (c *Client) DeleteAllDrafts(ctx context.Context) (int, error) {
	deleted := 0
	for {
		drafts, err := c.Drafts(ctx, DraftsQuery{Filter: "draft", Offset: Int(0), Limit: Int(deleteAllBatch)})
		if err != nil {
			return deleted, err
		}
		if len(drafts) == 0 {
			return deleted, nil
		}
		for _, d := range drafts {
			if err := c.DeleteDraft(ctx, d.ID); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
}
