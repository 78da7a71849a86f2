package substack

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ma2za/substack.go/pkg/constants"
)

// PublishedPostsQuery pages through [Client.PublishedPosts]. Zero fields take
// Substack's defaults: 25 posts ordered by post_date, newest first.
type PublishedPostsQuery struct {
	Offset         int
	Limit          int
	OrderBy        string
	OrderDirection string
}

func (q PublishedPostsQuery) values() url.Values {
	if q.Limit == 0 {
		q.Limit = constants.DefaultPageSize
	}
	if q.OrderBy == "" {
		q.OrderBy = "post_date"
	}
	if q.OrderDirection == "" {
		q.OrderDirection = "desc"
	}
	return url.Values{
		"offset":          {strconv.Itoa(q.Offset)},
		"limit":           {strconv.Itoa(q.Limit)},
		"order_by":        {q.OrderBy},
		"order_direction": {q.OrderDirection},
	}
}

// PostList is one page of published posts.
type PostList struct {
	Posts  []Draft `json:"posts"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
	Total  int     `json:"total"`
}

// PublishedPosts lists the selected publication's published posts.
func (c *Client) PublishedPosts(ctx context.Context, q PublishedPostsQuery) (*PostList, error) {
	u, err := c.publicationEndpoint("/post_management/published")
	if err != nil {
		return nil, err
	}
	var out PostList
	if err := c.get(ctx, u, q.values(), &out); err != nil {
		return nil, fmt.Errorf("published posts: %w", err)
	}
	return &out, nil
}

// ReaderPosts returns the posts in the user's reader feed.
func (c *Client) ReaderPosts(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.get(ctx, c.baseEndpoint("/reader/posts"), nil, &out); err != nil {
		return nil, fmt.Errorf("reader posts: %w", err)
	}
	return out, nil
}
