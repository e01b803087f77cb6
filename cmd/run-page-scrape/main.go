package main

import (
	"context"
	"log"
	"os"
	"time"

	"facebook-post-scraper/internal/app"
	"facebook-post-scraper/pkg/types"
)

const entry = "run-page-scrape"

type options struct {
	app.Options
	Args struct {
		URL   string `positional-arg-name:"url" required:"yes" description:"Page or profile timeline"`
		Until string `positional-arg-name:"untilDate" required:"yes" description:"Stop once posts reach this date (ISO 8601)"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	ok, err := app.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		log.Printf("Invalid or missing page parameters: %v", err)
		return 1
	}
	if !ok {
		return 0
	}

	until, err := app.ParseUntil(opts.Args.Until)
	if err != nil {
		log.Printf("Invalid or missing page parameters: %v", err)
		return 1
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
		result, err = a.Scraper.ScrapePage(runCtx, opts.Args.URL, until)
	}
	a.Finish(entry, opts.Args.URL, result, started, err)

	if err != nil {
		return 1
	}
	return 0
}
