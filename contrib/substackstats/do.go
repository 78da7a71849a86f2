package substackstats

import (
	"context"
	"fmt"
	"os"

	substack "github.com/ma2za/substack.go"
	"github.com/ma2za/substack.go/contrib/substackenv"
	"github.com/ma2za/substack.go/pkg/logger"
)

// Do prints the subscriber count of the configured publication and,
// optionally, its drafts and published posts.
func Do(ctx context.Context, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	settings, err := substackenv.Load(config.ConfigPath, config.EnvFiles...)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.Debug = settings.Debug || config.Verbose

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

	report, err := collect(ctx, client, config)
	if err != nil {
		return err
	}

	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	return Render(out, report)
}

func collect(ctx context.Context, client *substack.Client, config *Config) (Report, error) {
	report := Report{Publication: *client.Publication()}

	count, err := client.SubscriberCount(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get the subscriber count: %w", err)
	}
	report.Subscribers = count

	if config.Drafts {
		drafts, err := client.Drafts(ctx, substack.DraftsQuery{
			Filter: "draft",
			Offset: substack.Int(0),
			Limit:  substack.Int(config.Limit),
		})
		if err != nil {
			return Report{}, fmt.Errorf("failed to list drafts: %w", err)
		}
		report.Drafts = append([]substack.Draft{}, drafts...)
	}

	if config.Posts {
		list, err := client.PublishedPosts(ctx, substack.PublishedPostsQuery{Limit: config.Limit})
		if err != nil {
			return Report{}, fmt.Errorf("failed to list published posts: %w", err)
		}
		report.Posts = append([]substack.Draft{}, list.Posts...)
		report.TotalPosts = list.Total
	}
	return report, nil
}
