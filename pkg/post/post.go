package post

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Audience restricts who can read a post, or who can comment on it.
type Audience string

const (
	AudienceEveryone Audience = "everyone"
	AudienceOnlyPaid Audience = "only_paid"
	AudienceFounding Audience = "founding"
	AudienceOnlyFree Audience = "only_free"

	// CommentsNone disables comments. It is only valid as a comment permission.
	CommentsNone Audience = "none"
)

func (a Audience) validAudience() bool {
	switch a {
	case AudienceEveryone, AudienceOnlyPaid, AudienceFounding, AudienceOnlyFree:
		return true
	}
	return false
}

func (a Audience) validCommentPermission() bool {
	switch a {
	case CommentsNone, AudienceOnlyPaid, AudienceEveryone:
		return true
	}
	return false
}

// Byline attributes a draft to a user.
type Byline struct {
	ID      int64 `json:"id"`
	IsGuest bool  `json:"is_guest"`
}

// Draft is the envelope accepted by the create and update draft endpoints.
type Draft struct {
	Title              string   `json:"draft_title"`
	Subtitle           string   `json:"draft_subtitle"`
	Bylines            []Byline `json:"draft_bylines"`
	Audience           Audience `json:"audience"`
	CommentPermissions Audience `json:"write_comment_permissions"`
	// Body is the JSON encoding of the document tree.
	Body string `json:"draft_body"`
}

// Post is an incrementally built draft document.
// A Post is not safe for concurrent use.
type Post struct {
	title    string
	subtitle string
	bylines  []Byline

	audience           Audience
	commentPermissions Audience
	commentsSet        bool

	blocks []Node
	// last is the index of the block that text and marks apply to, -1 when empty.
	last int

	err error
}

// Option configures a Post at construction.
type Option func(*Post)

// WithAudience sets who can read the post. Defaults to [AudienceEveryone].
func WithAudience(a Audience) Option {
	return func(p *Post) {
		if !a.validAudience() {
			p.fail(fmt.Errorf("%w: audience %q", ErrInvalidAttribute, a))
			return
		}
		p.audience = a
	}
}

// WithCommentPermissions sets who can comment. Defaults to the audience.
func WithCommentPermissions(a Audience) Option {
	return func(p *Post) {
		if !a.validCommentPermission() {
			p.fail(fmt.Errorf("%w: comment permission %q", ErrInvalidAttribute, a))
			return
		}
		p.commentPermissions = a
		p.commentsSet = true
	}
}

// New creates an empty post authored by the given user.
func New(title, subtitle string, authorID int64, opts ...Option) *Post {
	p := &Post{
		title:    title,
		subtitle: subtitle,
		bylines:  []Byline{{ID: authorID, IsGuest: false}},
		audience: AudienceEveryone,
		last:     -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if !p.commentsSet {
		p.commentPermissions = p.audience
	}
	return p
}

// ParseAuthorID converts a textual user id, as found in environment variables
// or configuration files, into the numeric id used in bylines.
func ParseAuthorID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: author id %q", ErrInvalidAttribute, s)
	}
	return id, nil
}

// Err returns the first error recorded while building the post.
func (p *Post) Err() error {
	return p.err
}

// Len returns the number of blocks in the body.
func (p *Post) Len() int {
	return len(p.blocks)
}

func (p *Post) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// Document returns a copy of the body tree.
func (p *Post) Document() *Document {
	content := make([]Node, len(p.blocks))
	for i, b := range p.blocks {
		content[i] = cloneNode(b)
	}
	return &Document{Type: docType, Content: content}
}

// Body returns the JSON encoding of the body tree.
func (p *Post) Body() (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.Document().String()
}

// Serialize returns the draft envelope for the create and update draft endpoints.
// It does not modify the post and can be called repeatedly.
func (p *Post) Serialize() (*Draft, error) {
	body, err := p.Body()
	if err != nil {
		return nil, err
	}
	bylines := make([]Byline, len(p.bylines))
	copy(bylines, p.bylines)
	return &Draft{
		Title:              p.title,
		Subtitle:           p.subtitle,
		Bylines:            bylines,
		Audience:           p.audience,
		CommentPermissions: p.commentPermissions,
		Body:               body,
	}, nil
}

// MarshalJSON encodes the serialized draft envelope.
func (p *Post) MarshalJSON() ([]byte, error) {
	d, err := p.Serialize()
	if err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

func cloneNode(n Node) Node {
	out := n
	if n.Attrs != nil {
		out.Attrs = append(json.RawMessage(nil), n.Attrs...)
	}
	if n.Text != nil {
		text := *n.Text
		out.Text = &text
	}
	if n.Content != nil {
		out.Content = make([]Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = cloneNode(c)
		}
	}
	if n.Marks != nil {
		out.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			if m.Attrs != nil {
				attrs := *m.Attrs
				m.Attrs = &attrs
			}
			out.Marks[i] = m
		}
	}
	return out
}
