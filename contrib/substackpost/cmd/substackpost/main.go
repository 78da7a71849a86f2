package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ma2za/substack.go/contrib/substackpost"
)

func main() {
	config := substackpost.NewConfig()
	var envFile string

	flag.StringVar(&config.ConfigPath, "config", config.ConfigPath, "TOML settings file")
	flag.StringVar(&envFile, "env", "", "Additional .env file (defaults to ./.env)")
	flag.StringVar(&config.PostPath, "post", config.PostPath, "YAML file containing the post to publish")
	flag.BoolVar(&config.Publish, "publish", false, "Publish the draft")
	flag.BoolVar(&config.Send, "send", config.Send, "Email the post to subscribers when publishing (-send=false to skip)")
	flag.BoolVar(&config.Share, "share", false, "Share the post automatically (used with -publish)")
	flag.StringVar(&config.Schedule, "schedule", "", "Schedule the draft at an RFC 3339 time")
	flag.StringVar(&config.ExportCookies, "export-cookies", "", "Write the session cookies to this file")
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

	if err := substackpost.Do(context.Background(), config); err != nil {
		log.Fatal(err)
	}
}
