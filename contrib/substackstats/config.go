package substackstats

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/ma2za/substack.go/contrib/substackenv"
)

// ErrInvalidLimit is returned when -limit is not positive
var ErrInvalidLimit = errors.New("-limit must be greater than zero")

// Config holds all configuration for the stats report
type Config struct {
	// Path of the TOML settings file
	ConfigPath string
	// Extra .env files, the local .env is read when empty
	EnvFiles []string

	// List unpublished drafts
	Drafts bool
	// List published posts
	Posts bool
	// Maximum rows per table
	Limit int
	// Enable verbose logging
	Verbose bool

	// Out receives the report, defaults to stdout
	Out io.Writer
	// HTTPClient overrides the client used to reach Substack
	HTTPClient *http.Client
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		ConfigPath: substackenv.DefaultConfigPath,
		Limit:      10,
		Out:        os.Stdout,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if (c.Drafts || c.Posts) && c.Limit <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
