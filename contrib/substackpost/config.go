package substackpost

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ma2za/substack.go/contrib/substackenv"
)

// Configuration validation errors
var (
	// ErrNoPost is returned when -post is empty
	ErrNoPost = errors.New("-post is required.\nUsage:\n" +
		"  Create a draft:      substackpost -post draft.yaml\n" +
		"  Publish right away:  substackpost -post draft.yaml -publish\n" +
		"  Schedule:            substackpost -post draft.yaml -schedule 2030-01-02T15:04:05Z")

	// ErrMutuallyExclusive is returned when both -publish and -schedule are set
	ErrMutuallyExclusive = errors.New("-publish and -schedule are mutually exclusive")

	// ErrInvalidShareFlag is returned when -share is used without -publish
	ErrInvalidShareFlag = errors.New("-share can only be used with -publish")
)

// Config holds all configuration for the post operation
type Config struct {
	// Settings sources

	// Path of the TOML settings file
	ConfigPath string
	// Extra .env files, the local .env is read when empty
	EnvFiles []string

	// Post options

	// YAML file describing the draft
	PostPath string
	// Publish the draft after creating it
	Publish bool
	// Email the post to subscribers when publishing, on by default
	Send bool
	// Share the post automatically (used with Publish)
	Share bool
	// RFC 3339 time to schedule the draft at
	Schedule string
	// Write the session cookies here after a successful run
	ExportCookies string
	// Enable verbose logging
	Verbose bool

	// Out receives the draft id, defaults to stdout
	Out io.Writer
	// HTTPClient overrides the client used to reach Substack
	HTTPClient *http.Client

	scheduleAt time.Time
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		ConfigPath: substackenv.DefaultConfigPath,
		PostPath:   "draft.yaml",
		Send:       true,
		Out:        os.Stdout,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.PostPath == "" {
		return ErrNoPost
	}
	if c.Publish && c.Schedule != "" {
		return ErrMutuallyExclusive
	}
	if !c.Publish && c.Share {
		return ErrInvalidShareFlag
	}
	if c.Schedule != "" {
		at, err := time.Parse(time.RFC3339, c.Schedule)
		if err != nil {
			return fmt.Errorf("invalid -schedule: %w", err)
		}
		c.scheduleAt = at
	}
	return nil
}
