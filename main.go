package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"polovni_scraper/api"
	"polovni_scraper/config"
	"polovni_scraper/crawler"
	"polovni_scraper/fetcher"
	"polovni_scraper/logging"
	"polovni_scraper/parser"
	"polovni_scraper/scheduler"
	"polovni_scraper/storage"
)

var (
	scrapeNow = flag.Bool("scrape", false, "Run a crawl once and exit")
	scrapeURL = flag.String("url", "", "Search URL for -scrape (defaults to every enabled saved search)")
)

func main() {
	flag.Parse()

	logFile, err := logging.Setup("scraper.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting polovni_scraper...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded %d saved searches", len(cfg.Searches))
	for id, search := range cfg.Searches {
		log.Printf("  - %s (%s, enabled=%t)", search.Name, id, search.Enabled)
	}

	ctx := context.Background()

	connectCtx, cancelConnect := context.WithTimeout(ctx, 15*time.Second)
	store, err := storage.NewMongoStore(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Retention)
	cancelConnect()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close(ctx)
	log.Printf("Connected to MongoDB: %s", maskConnectionString(cfg.Mongo.URI))

	crawl := crawler.New(store, fetcher.New(), parser.Extract)

	// Handle one-shot commands
	if *scrapeNow {
		if *scrapeURL != "" {
			run, err := crawl.Run(ctx, *scrapeURL)
			if err != nil {
				log.Fatalf("Crawl failed: %v", err)
			}
			log.Printf("Crawl complete: %d pages, %d created, %d refreshed",
				run.PagesWalked, run.AdsCreated, run.LightUpdates)
			return
		}
		scheduler.New(cfg, crawl).RunAll(ctx)
		log.Println("Crawl complete!")
		return
	}

	// Daemon mode
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, crawl)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	server := api.NewServer(cfg.APIAddr, store, crawl)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API shutdown: %v", err)
	}
	log.Println("Goodbye!")
}

// maskConnectionString masks the password in a connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
