package models

import (
	"time"

	"github.com/google/uuid"
)

// CrawlRun records one pass over a search URL.
type CrawlRun struct {
	ID           uuid.UUID  `json:"id"`
	SearchURL    string     `json:"search_url"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
	Status       string     `json:"status"` // running, completed, failed
	PagesWalked  int        `json:"pages_walked"`
	AdsSeen      int        `json:"ads_seen"`
	AdsCreated   int        `json:"ads_created"`
	LightUpdates int        `json:"light_updates"`
	ErrorsCount  int        `json:"errors_count"`
}

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
