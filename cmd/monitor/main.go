package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"facebook-post-scraper/internal/app"
	"facebook-post-scraper/internal/monitoring"
)

type options struct {
	app.Options
	Report bool `long:"report" description:"Generate and display the monitoring report"`
	Alerts bool `long:"alerts" description:"Check and display alerts"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	ok, err := app.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		log.Print(err)
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

	monitor := a.Monitor

	if opts.Report {
		fmt.Println(monitor.GenerateReport())

		countCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		count, err := a.Store.CountPosts(countCtx)
		if err != nil {
			a.Logger.Errorf("Failed to get database stats: %v", err)
			return 1
		}
		fmt.Println("\nDatabase Statistics:")
		fmt.Printf("- Stored Feed Posts: %d\n", count)
		return 0
	}

	if opts.Alerts {
		alerts := monitoring.NewAlertManager(monitor, a.Logger).CheckAlerts()
		if len(alerts) == 0 {
			fmt.Println("No alerts - system is healthy")
		} else {
			fmt.Println("Active Alerts:")
			for _, alert := range alerts {
				fmt.Printf("  - %s\n", alert)
			}
		}
		return 0
	}

	health := monitor.GetHealthStatus()
	fmt.Println("Facebook Post Scraper Status:")
	fmt.Printf("- Status: %s\n", health["status"])
	fmt.Printf("- Last Run: %s\n", health["last_run"])
	fmt.Printf("- Total Runs: %v\n", health["total_runs"])
	fmt.Printf("- Error Rate: %s\n", health["error_rate"])
	fmt.Printf("- Average Runtime: %s\n", health["average_runtime"])

	if warning, exists := health["warning"]; exists {
		fmt.Printf("- Warning: %s\n", warning)
	}
	return 0
}
