package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ma2za/substack.go/contrib/substackstats"
)

func main() {
	config := substackstats.NewConfig()
	var envFile string

	flag.StringVar(&config.ConfigPath, "config", config.ConfigPath, "TOML settings file")
	flag.StringVar(&envFile, "env", "", "Additional .env file (defaults to ./.env)")
	flag.BoolVar(&config.Drafts, "drafts", false, "List unpublished drafts")
	flag.BoolVar(&config.Posts, "posts", false, "List published posts")
	flag.IntVar(&config.Limit, "limit", config.Limit, "Maximum rows per table")
	flag.BoolVar(&config.Verbose, "verbose", false, "Enable verbose logging")

	flag.Parse()

	if envFile != "" {
		config.EnvFiles = []string{envFile}
	}

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if err := substackstats.Do(context.Background(), config); err != nil {
		log.Fatal(err)
	}
}
