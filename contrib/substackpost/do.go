package substackpost

import (
	"context"
	"fmt"
	"io"
	"os"

	substack "github.com/ma2za/substack.go"
	"github.com/ma2za/substack.go/contrib/substackenv"
	"github.com/ma2za/substack.go/pkg/logger"
	"github.com/ma2za/substack.go/pkg/post"
)

// Do creates the draft described by config.PostPath and optionally publishes
// or schedules it. The id of the draft is written to config.Out.
func Do(ctx context.Context, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	settings, err := substackenv.Load(config.ConfigPath, config.EnvFiles...)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.Debug = settings.Debug || config.Verbose

	file, err := ReadPostFile(config.PostPath)
	if err != nil {
		return err
	}

	client, cleanup, err := substackenv.Connect(ctx, settings, func(cfg *substack.Config) {
		if config.HTTPClient != nil {
			cfg.HTTPClient = config.HTTPClient
		}
		if !settings.Debug && settings.LogFile == "" {
			cfg.Logger = logger.Nop()
		}
	})
	if err != nil {
		return err
	}
	defer cleanup()

	authorID := settings.UserID
	if authorID == 0 {
		if authorID, err = client.UserID(ctx); err != nil {
			return fmt.Errorf("failed to look up the user id: %w", err)
		}
	}

	if err := resolveImages(ctx, client, file); err != nil {
		return err
	}

	draft, err := post.New(file.Title, file.Subtitle, authorID, file.Options()...).
		AddAll(file.Body...).
		Serialize()
	if err != nil {
		return fmt.Errorf("failed to build the draft: %w", err)
	}

	created, err := client.PostDraft(ctx, draft)
	if err != nil {
		return fmt.Errorf("failed to create the draft: %w", err)
	}

	switch {
	case config.Publish:
		if _, err := client.PrepublishDraft(ctx, created.ID); err != nil {
			return fmt.Errorf("prepublish check failed: %w", err)
		}
		opts := substack.PublishOptions{Send: config.Send, ShareAutomatically: config.Share}
		if _, err := client.PublishDraft(ctx, created.ID, opts); err != nil {
			return fmt.Errorf("failed to publish the draft: %w", err)
		}
	case !config.scheduleAt.IsZero():
		if _, err := client.ScheduleDraft(ctx, created.ID, config.scheduleAt); err != nil {
			return fmt.Errorf("failed to schedule the draft: %w", err)
		}
	}

	if config.ExportCookies != "" {
		if err := client.ExportCookies(config.ExportCookies); err != nil {
			return fmt.Errorf("failed to export cookies: %w", err)
		}
	}

	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	_, err = io.WriteString(out, created.ID.String()+"\n")
	return err
}

// resolveImages uploads local image files so the draft references hosted copies.
func resolveImages(ctx context.Context, client *substack.Client, file *PostFile) error {
	for i, item := range file.Body {
		if item.Type != post.BlockCaptionedImage {
			continue
		}
		path := file.localPath(item.Src)
		if path == "" {
			continue
		}
		src, err := client.ResolveImage(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", item.Src, err)
		}
		if src != path {
			file.Body[i].Src = src
		}
	}
	return nil
}
