package main

import (
	"context"
	"log"
	"os"
	"time"

	"facebook-post-scraper/internal/app"
	"facebook-post-scraper/pkg/types"
)

const entry = "run-hashtag-scrape"

type options struct {
	app.Options
	Args struct {
		URL      string `positional-arg-name:"url" required:"yes" description:"Hashtag or search result page"`
		MaxPosts int    `positional-arg-name:"maxPostCount" description:"Posts to collect (default from config)"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	ok, err := app.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		log.Printf("Invalid or missing hashtag parameters: %v", err)
		return 1
	}
	if !ok {
		return 0
	}

	ctx := context.Background()
	a, err := app.New(ctx, opts.Config)
	if err != nil {
		log.Printf("Failed to start: %v", err)
		return 1
	}
	defer a.Close()

	runCtx, cancel := a.RunContext(ctx)
	defer cancel()

	started := time.Now()
	var result *types.RunResult
	err = a.StartBrowser(runCtx)
	if err == nil {
		result, err = a.Scraper.ScrapeHashtag(runCtx, opts.Args.URL, opts.Args.MaxPosts)
	}
	a.Finish(entry, opts.Args.URL, result, started, err)

	if err != nil {
		return 1
	}
	return 0
}
