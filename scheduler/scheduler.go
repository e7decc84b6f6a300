package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"polovni_scraper/config"
	"polovni_scraper/crawler"
)

// Scheduler drives the crawler over every enabled saved search, either on a
// cron expression or a fixed interval.
type Scheduler struct {
	cfg    *config.Config
	crawl  *crawler.Crawler
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
}

func New(cfg *config.Config, crawl *crawler.Crawler) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		crawl:  crawl,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			s.RunAll(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.RunAll(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, crawls run only on demand")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// RunAll walks every enabled saved search in sequence. An overlapping tick
// finds the crawler still locked and backs off until the next one.
func (s *Scheduler) RunAll(ctx context.Context) {
	for id, search := range s.cfg.Searches {
		if !search.Enabled {
			continue
		}

		run, err := s.crawl.RunPages(ctx, search.SearchURL, 1, search.MaxPages)
		if errors.Is(err, crawler.ErrRunInProgress) {
			log.Printf("Scheduled run %s skipped: previous run still in progress", id)
			return
		}
		if err != nil {
			log.Printf("Scheduled run %s error: %v", id, err)
			continue
		}
		log.Printf("Scheduled run %s: %d pages, %d created, %d refreshed",
			id, run.PagesWalked, run.AdsCreated, run.LightUpdates)
	}
}
