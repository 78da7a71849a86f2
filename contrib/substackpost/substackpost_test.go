package substackpost

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ma2za/substack.go/internal/fakesubstack"
	"github.com/ma2za/substack.go/pkg/post"
)

const draftYAML = `
title: Weekly notes
subtitle: Things I read
audience: only_paid
body:
  - type: heading
    level: 2
    content: Links
  - type: paragraph
    content:
      - content: bold
        marks: [{type: bold}]
      - content: " and plain"
  - type: captioned_image
    src: chart.jpg
  - type: captioned_image
    src: https://example.com/remote.png
`

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, NewConfig().Validate())
	})

	t.Run("post is required", func(t *testing.T) {
		c := NewConfig()
		c.PostPath = ""
		require.ErrorIs(t, c.Validate(), ErrNoPost)
	})

	t.Run("publish and schedule", func(t *testing.T) {
		c := NewConfig()
		c.Publish = true
		c.Schedule = "2030-01-02T15:04:05Z"
		require.ErrorIs(t, c.Validate(), ErrMutuallyExclusive)
	})

	t.Run("share without publish", func(t *testing.T) {
		c := NewConfig()
		c.Share = true
		require.ErrorIs(t, c.Validate(), ErrInvalidShareFlag)
	})

	t.Run("publishing emails subscribers by default", func(t *testing.T) {
		c := NewConfig()
		assert.True(t, c.Send)
		require.NoError(t, c.Validate())
	})

	t.Run("bad schedule", func(t *testing.T) {
		c := NewConfig()
		c.Schedule = "tomorrow"
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid -schedule")
	})
}

func TestReadPostFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("list body", func(t *testing.T) {
		path := filepath.Join(dir, "list.yaml")
		require.NoError(t, os.WriteFile(path, []byte(draftYAML), 0600))

		f, err := ReadPostFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Weekly notes", f.Title)
		assert.Equal(t, post.AudienceOnlyPaid, f.Audience)
		require.Len(t, f.Body, 4)
		assert.Equal(t, post.BlockHeading, f.Body[0].Type)
		assert.Equal(t, filepath.Join(dir, "chart.jpg"), f.localPath(f.Body[2].Src))
		assert.Empty(t, f.localPath(f.Body[3].Src))
	})

	t.Run("mapping body keeps document order", func(t *testing.T) {
		path := filepath.Join(dir, "map.yaml")
		content := "title: T\nbody:\n  0:\n    type: paragraph\n    content: first\n  1:\n    type: paragraph\n    content: second\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		f, err := ReadPostFile(path)
		require.NoError(t, err)
		require.Len(t, f.Body, 2)
		assert.Equal(t, "second", f.Body[1].Content.Text)
	})

	t.Run("scalar body", func(t *testing.T) {
		path := filepath.Join(dir, "scalar.yaml")
		require.NoError(t, os.WriteFile(path, []byte("title: T\nbody: nope\n"), 0600))

		_, err := ReadPostFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "body must be a list or a mapping")
	})
}

func setup(t *testing.T) (*fakesubstack.Server, *Config) {
	t.Helper()
	for _, key := range []string{"EMAIL", "PASSWORD", "PUBLICATION_URL", "COOKIES_PATH", "USER_ID", "SUBSTACK_BASE_URL", "SUBSTACK_DEBUG", "SUBSTACK_LOG_FILE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	server := fakesubstack.NewServer()
	server.Start()
	t.Cleanup(server.Stop)

	dir := t.TempDir()
	settings := "email = \"" + fakesubstack.DefaultEmail + "\"\n" +
		"password = \"" + fakesubstack.DefaultPassword + "\"\n" +
		"base_url = \"" + server.BaseURL() + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(settings), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.yaml"), []byte(draftYAML), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chart.jpg"), []byte("jpeg"), 0600))

	config := NewConfig()
	config.ConfigPath = filepath.Join(dir, "config.toml")
	config.PostPath = filepath.Join(dir, "draft.yaml")
	config.HTTPClient = server.Client()
	config.Out = &bytes.Buffer{}
	return server, config
}

func TestDoCreatesDraft(t *testing.T) {
	server, config := setup(t)

	require.NoError(t, Do(context.Background(), config))

	drafts := server.Drafts()
	require.Len(t, drafts, 1)
	d := drafts[0]
	assert.Equal(t, "Weekly notes", d.DraftTitle)
	assert.Equal(t, "only_paid", d.Audience)
	assert.Equal(t, []post.Byline{{ID: fakesubstack.DefaultUserID}}, d.DraftBylines)
	assert.False(t, d.IsPublished)
	assert.Equal(t, "1001\n", config.Out.(*bytes.Buffer).String())

	// only the local image is uploaded
	require.Len(t, server.Images(), 1)
	assert.True(t, strings.HasPrefix(server.Images()[0], "data:image/jpeg;base64,"))

	doc, err := post.ParseBody(d.DraftBody)
	require.NoError(t, err)
	require.Len(t, doc.Content, 4)
	assert.Contains(t, string(doc.Content[2].Attrs), "/public/images/1.jpeg")
	assert.Contains(t, string(doc.Content[3].Attrs), "https://example.com/remote.png")
}

func TestDoPublishes(t *testing.T) {
	server, config := setup(t)
	config.Publish = true
	config.ExportCookies = filepath.Join(t.TempDir(), "cookies.json")

	require.NoError(t, Do(context.Background(), config))

	drafts := server.Drafts()
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].IsPublished)
	assert.True(t, drafts[0].Sent)

	b, err := os.ReadFile(config.ExportCookies)
	require.NoError(t, err)
	assert.Contains(t, string(b), fakesubstack.SessionCookie)
}

func TestDoSchedules(t *testing.T) {
	server, config := setup(t)
	config.Schedule = "2030-01-02T15:04:05Z"

	require.NoError(t, Do(context.Background(), config))

	drafts := server.Drafts()
	require.Len(t, drafts, 1)
	require.NotNil(t, drafts[0].PostDate)
	assert.False(t, drafts[0].IsPublished)
}

func TestDoInvalidPost(t *testing.T) {
	server, config := setup(t)
	bad := "title: T\nbody:\n  - type: carousel\n"
	require.NoError(t, os.WriteFile(config.PostPath, []byte(bad), 0600))

	err := Do(context.Background(), config)
	require.ErrorIs(t, err, post.ErrInvalidAttribute)
	assert.Empty(t, server.Drafts())
}

func TestDoPublishWithoutEmail(t *testing.T) {
	server, config := setup(t)
	config.Publish = true
	config.Send = false

	require.NoError(t, Do(context.Background(), config))

	drafts := server.Drafts()
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].IsPublished)
	assert.False(t, drafts[0].Sent)
}

func TestDoWritesConfiguredLogFile(t *testing.T) {
	_, config := setup(t)
	logFile := filepath.Join(t.TempDir(), "substack.log")
	t.Setenv("SUBSTACK_LOG_FILE", logFile)
	t.Setenv("SUBSTACK_DEBUG", "true")

	require.NoError(t, Do(context.Background(), config))

	b, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"created draft"`)
	assert.Contains(t, string(b), `"level":"debug"`)
}
