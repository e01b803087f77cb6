package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"facebook-post-scraper/internal/app"
	"facebook-post-scraper/internal/config"
	"facebook-post-scraper/internal/scraper"
	"facebook-post-scraper/internal/utils"
)

type options struct {
	app.Options
	Online bool `long:"online" description:"Also request a logged-in page with the cookies"`
}

func main() {
	var opts options
	ok, err := app.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		return
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closeLog, err := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	authManager, err := scraper.NewAuthManager(cfg.Env.CookiePath, cfg.Scraper.BaseURL, cfg.Browser.UserAgent, logger)
	if err != nil {
		log.Fatalf("Failed to create auth manager: %v", err)
	}

	fmt.Println("Testing cookie loading...")
	if err := authManager.LoadCookies(); err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}
	if err := authManager.ValidateFormat(); err != nil {
		log.Fatalf("Cookie check failed: %v", err)
	}

	if opts.Online {
		fmt.Println("Testing authentication...")
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()
		if err := authManager.ValidateSession(ctx); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
	}

	fmt.Println("Cookies are valid")
}
