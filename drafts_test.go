package substack_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	substack "github.com/ma2za/substack.go"
	"github.com/ma2za/substack.go/internal/fakesubstack"
	"github.com/ma2za/substack.go/pkg/constants"
	"github.com/ma2za/substack.go/pkg/post"
)

func newDraft(t *testing.T, title string) *post.Draft {
	t.Helper()
	draft, err := post.New(title, "A subtitle", fakesubstack.DefaultUserID, post.WithAudience(post.AudienceOnlyPaid)).
		Heading(2, post.Plain("Intro")).
		Paragraph().Text("Hello ").Text("world").Marks(post.Bold()).
		HorizontalRule().
		Serialize()
	require.NoError(t, err)
	return draft
}

func TestDraftLifecycle(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	envelope := newDraft(t, "First")
	created, err := client.PostDraft(ctx, envelope)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "First", created.DraftTitle)
	assert.Equal(t, post.AudienceOnlyPaid, created.Audience)
	assert.Equal(t, post.AudienceOnlyPaid, created.WriteCommentPermissions)
	assert.Equal(t, envelope.Body, created.DraftBody)
	assert.Equal(t, []post.Byline{{ID: fakesubstack.DefaultUserID}}, created.DraftBylines)

	fetched, err := client.Draft(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.False(t, fetched.IsPublished)

	doc, err := post.ParseBody(fetched.DraftBody)
	require.NoError(t, err)
	require.Len(t, doc.Content, 3)
	assert.Equal(t, "heading", doc.Content[0].Type)

	renamed, err := client.PutDraft(ctx, created.ID, map[string]any{"draft_title": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.DraftTitle)
	assert.Equal(t, envelope.Body, renamed.DraftBody)

	replacement := newDraft(t, "Replaced")
	updated, err := client.UpdateDraft(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, "Replaced", updated.DraftTitle)

	checks, err := client.PrepublishDraft(ctx, created.ID)
	require.NoError(t, err)
	assert.Contains(t, checks, "warnings")

	published, err := client.PublishDraft(ctx, created.ID, substack.PublishOptions{Send: true})
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	assert.Equal(t, "Replaced", published.DisplayTitle())
	require.NotNil(t, published.PostDate)

	stored, ok := server.Draft(fakeID(t, created.ID))
	require.True(t, ok)
	assert.True(t, stored.Sent)

	list, err := client.PublishedPosts(ctx, substack.PublishedPostsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 25, list.Limit)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, created.ID, list.Posts[0].ID)

	require.NoError(t, client.DeleteDraft(ctx, created.ID))
	_, err = client.Draft(ctx, created.ID)
	var apiErr *substack.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Post not found", apiErr.Message)
}

func fakeID(t *testing.T, id substack.DraftID) int64 {
	t.Helper()
	n, err := strconv.ParseInt(id.String(), 10, 64)
	require.NoError(t, err)
	return n
}

func TestScheduleDraft(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	created, err := client.PostDraft(ctx, newDraft(t, "Later"))
	require.NoError(t, err)

	at := time.Date(2030, time.January, 2, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	out, err := client.ScheduleDraft(ctx, created.ID, at)
	require.NoError(t, err)
	assert.Equal(t, "2030-01-02T15:04:05+01:00", out["post_date"])

	fetched, err := client.Draft(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.PostDate)
	assert.True(t, at.Equal(*fetched.PostDate))

	out, err = client.UnscheduleDraft(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, out["post_date"])

	fetched, err = client.Draft(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.PostDate)
}

func TestDraftsQuery(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		server.PutDraft(fakesubstack.Draft{DraftTitle: fmt.Sprintf("Draft %d", i), IsPublished: i == 0})
	}

	all, err := client.Drafts(ctx, substack.DraftsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	unpublished, err := client.Drafts(ctx, substack.DraftsQuery{Filter: "draft"})
	require.NoError(t, err)
	assert.Len(t, unpublished, 4)

	page, err := client.Drafts(ctx, substack.DraftsQuery{Filter: "draft", Offset: substack.Int(1), Limit: substack.Int(2)})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Draft 2", page[0].DraftTitle)
	assert.Equal(t, "Draft 3", page[1].DraftTitle)
}

func TestDeleteAllDrafts(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)

	for i := 0; i < 23; i++ {
		server.PutDraft(fakesubstack.Draft{DraftTitle: fmt.Sprintf("Draft %d", i)})
	}
	server.PutDraft(fakesubstack.Draft{DraftTitle: "Published", IsPublished: true})

	deleted, err := client.DeleteAllDrafts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 23, deleted)

	remaining := server.Drafts()
	require.Len(t, remaining, 1)
	assert.Equal(t, "Published", remaining[0].DraftTitle)
	// batches of 10, 10 and 3, then the empty listing that ends the loop
	assert.Equal(t, 4, server.Hits("/api/v1/drafts"))
}

func TestEmptyDraftID(t *testing.T) {
	server := startFake(t)
	client := newTestClient(t, server)

	_, err := client.Draft(context.Background(), "")
	require.ErrorIs(t, err, constants.ErrEmptyDraftID)
}

func TestDraftIDDecoding(t *testing.T) {
	var d substack.Draft
	require.NoError(t, json.Unmarshal([]byte(`{"id":123456789012}`), &d))
	assert.Equal(t, substack.DraftID("123456789012"), d.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc"}`), &d))
	assert.Equal(t, substack.DraftID("abc"), d.ID)

	require.Error(t, json.Unmarshal([]byte(`{"id":true}`), &d))

	b, err := json.Marshal(substack.DraftID("42"))
	require.NoError(t, err)
	assert.Equal(t, `42`, string(b))

	b, err = json.Marshal(substack.DraftID("abc"))
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(b))

	for _, id := range []string{"007", "+5", "-0"} {
		b, err = json.Marshal(substack.Draft{ID: substack.DraftID(id)})
		require.NoError(t, err, id)
		var back substack.Draft
		require.NoError(t, json.Unmarshal(b, &back), id)
		assert.Equal(t, substack.DraftID(id), back.ID)
	}
}
