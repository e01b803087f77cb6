package main

import (
	"context"
	"log"
	"os"
	"time"

	"facebook-post-scraper/internal/app"
	"facebook-post-scraper/pkg/types"
)

const entry = "run-image-download"

type options struct {
	app.Options
	Args struct {
		Post string `positional-arg-name:"singlePostJSON" required:"yes" description:"Single post document as JSON"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	ok, err := app.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		log.Printf("Invalid or missing image parameters: %v", err)
		return 1
	}
	if !ok {
		return 0
	}

	post, err := app.DecodeSinglePost(opts.Args.Post)
	if err != nil {
		log.Printf("[ERROR] %v", err)
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
		result, err = a.Scraper.DownloadImages(runCtx, &post)
	}
	a.Finish(entry, post.PostID, result, started, err)

	if err != nil {
		return 1
	}
	return 0
}
