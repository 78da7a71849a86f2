// Package substackenv resolves client settings for the command line tools.
//
// Settings are layered: built-in defaults, then the TOML file at
// [DefaultConfigPath], then any .env files, then the process environment.
// The environment variables are EMAIL, PASSWORD, PUBLICATION_URL,
// COOKIES_PATH, USER_ID, SUBSTACK_BASE_URL, SUBSTACK_DEBUG and
// SUBSTACK_LOG_FILE.
package substackenv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	substack "github.com/ma2za/substack.go"
	"github.com/ma2za/substack.go/pkg/constants"
	"github.com/ma2za/substack.go/pkg/logger"
	"github.com/ma2za/substack.go/pkg/post"
)

const (
	DefaultConfigPath = "~/.config/substack/config.toml"
	DefaultEnvFile    = ".env"
)

// Settings is everything the tools need to build a client.
type Settings struct {
	Email          string
	Password       string
	PublicationURL string
	CookiesPath    string
	BaseURL        string
	LogFile        string
	UserID         int64
	Debug          bool
}

type fileSettings struct {
	Email          string `toml:"email"`
	Password       string `toml:"password"`
	PublicationURL string `toml:"publication_url"`
	CookiesPath    string `toml:"cookies_path"`
	BaseURL        string `toml:"base_url"`
	LogFile        string `toml:"log_file"`
	UserID         int64  `toml:"user_id"`
	Debug          bool   `toml:"debug"`
}

// Load reads the config file at path (the default path when empty), then the
// given .env files, then the environment. A missing config file or a missing
// default .env file is not an error.
func Load(path string, envFiles ...string) (Settings, error) {
	s, err := loadFile(path)
	if err != nil {
		return Settings{}, err
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return Settings{}, err
	}
	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func loadFile(path string) (Settings, error) {
	s := Settings{BaseURL: constants.DefaultBaseURL}

	resolved, err := resolvePath(path)
	if err != nil {
		return Settings{}, err
	}
	b, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileSettings
	if err := toml.Unmarshal(b, &raw); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}

	s.Email = strings.TrimSpace(raw.Email)
	s.Password = raw.Password
	s.PublicationURL = strings.TrimSpace(raw.PublicationURL)
	s.UserID = raw.UserID
	s.Debug = raw.Debug
	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		s.BaseURL = v
	}
	if v := strings.TrimSpace(raw.CookiesPath); v != "" {
		s.CookiesPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		s.LogFile = mustExpand(v)
	}
	return s, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", DefaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

func (s *Settings) applyEnv() error {
	s.Email = substack.GetEnvOrDefault("EMAIL", s.Email)
	s.Password = substack.GetEnvOrDefault("PASSWORD", s.Password)
	s.PublicationURL = substack.GetEnvOrDefault("PUBLICATION_URL", s.PublicationURL)
	s.BaseURL = substack.GetEnvOrDefault("SUBSTACK_BASE_URL", s.BaseURL)
	s.Debug = substack.GetEnvBool("SUBSTACK_DEBUG", s.Debug)
	if v := os.Getenv("COOKIES_PATH"); v != "" {
		s.CookiesPath = mustExpand(v)
	}
	if v := os.Getenv("SUBSTACK_LOG_FILE"); v != "" {
		s.LogFile = mustExpand(v)
	}
	if v := os.Getenv("USER_ID"); v != "" {
		id, err := post.ParseAuthorID(v)
		if err != nil {
			return fmt.Errorf("USER_ID: %w", err)
		}
		s.UserID = id
	}
	return nil
}

// Config converts the settings into a client configuration.
func (s Settings) Config() substack.Config {
	return substack.Config{
		Email:          s.Email,
		Password:       s.Password,
		CookiesPath:    s.CookiesPath,
		BaseURL:        s.BaseURL,
		PublicationURL: s.PublicationURL,
		Debug:          s.Debug,
	}
}

// Connect builds a logger from the settings and signs the client in. The
// returned cleanup closes the log file.
func Connect(ctx context.Context, s Settings, mutate ...func(*substack.Config)) (*substack.Client, func(), error) {
	build := logger.New().WithDebug(s.Debug)
	if s.LogFile != "" {
		build = build.FromPath(s.LogFile)
	}
	l, err := build.Make()
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	cleanup := func() {
		if closeErr := l.Close(); closeErr != nil {
			log.Printf("Warning: failed to close log file: %v", closeErr)
		}
	}

	cfg := s.Config()
	cfg.Logger = l
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := substack.New(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to connect to Substack: %w", err)
	}
	return client, cleanup, nil
}

// Quiet is a Connect option that discards client logs.
func Quiet(cfg *substack.Config) {
	cfg.Logger = logger.Nop()
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
