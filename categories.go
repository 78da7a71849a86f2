package substack

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CategoryKind selects which publications of a category are listed.
type CategoryKind string

const (
	CategoryAll  CategoryKind = "all"
	CategoryPaid CategoryKind = "paid"
)

// Category is a discovery category.
type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Active        bool       `json:"active"`
	Subcategories []Category `json:"subcategories,omitempty"`
}

// CategoryPage lists publications of a category.
type CategoryPage struct {
	Publications []Publication `json:"publications"`
	More         bool          `json:"more"`
}

// CategoryQuery controls [Client.SingleCategory]. With a nil Page every page is
// fetched until Substack reports no more or Limit publications are collected.
type CategoryQuery struct {
	Page  *int
	Limit *int
}

// Categories lists all discovery categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.get(ctx, c.baseEndpoint("/categories"), nil, &out); err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	return out, nil
}

// Category fetches one page of a category's publications.
func (c *Client) Category(ctx context.Context, id int64, kind CategoryKind, page int) (*CategoryPage, error) {
	endpoint := c.baseEndpoint(fmt.Sprintf("/category/public/%d/%s", id, url.PathEscape(string(kind))))
	var out CategoryPage
	if err := c.get(ctx, endpoint, url.Values{"page": {strconv.Itoa(page)}}, &out); err != nil {
		return nil, fmt.Errorf("category %d page %d: %w", id, page, err)
	}
	return &out, nil
}

// SingleCategory fetches the requested page, or accumulates pages when q.Page is nil.
func (c *Client) SingleCategory(ctx context.Context, id int64, kind CategoryKind, q CategoryQuery) (*CategoryPage, error) {
	if q.Page != nil {
		return c.Category(ctx, id, kind, *q.Page)
	}

	var (
		publications []Publication
		more         bool
	)
	for page := 0; ; page++ {
		out, err := c.Category(ctx, id, kind, page)
		if err != nil {
			return nil, err
		}
		publications = append(publications, out.Publications...)
		more = out.More
		if (q.Limit != nil && *q.Limit <= len(publications)) || !more {
			break
		}
	}

	if q.Limit != nil && *q.Limit < len(publications) {
		publications = publications[:max(*q.Limit, 0)]
	}
	return &CategoryPage{Publications: publications, More: more}, nil
}
