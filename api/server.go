package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"polovni_scraper/crawler"
	"polovni_scraper/filters"
	"polovni_scraper/models"
	"polovni_scraper/parser"
	"polovni_scraper/storage"
)

// Store is the read side of the repository the API serves from.
type Store interface {
	Find(ctx context.Context, filter bson.M) ([]models.Car, error)
	AggregateGrouped(ctx context.Context, groupBy []string, filter bson.M, minCount int) ([]storage.CarGroup, error)
	MakesAndModels(ctx context.Context) (map[string][]string, error)
}

// Runner starts a crawl on demand.
type Runner interface {
	RunPages(ctx context.Context, searchURL string, startPage, maxPages int) (*models.CrawlRun, error)
}

type Server struct {
	store  Store
	runner Runner
	http   *http.Server
}

func NewServer(addr string, store Store, runner Runner) *Server {
	s := &Server{store: store, runner: runner}

	mux := http.NewServeMux()
	mux.HandleFunc("/cars", s.handleCars)
	mux.HandleFunc("/cars/grouped", s.handleCarsGrouped)
	mux.HandleFunc("/cars/makes", s.handleCarsMakes)
	mux.HandleFunc("/ads", s.handleAds)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      cors(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}
	return s
}

func (s *Server) Start() error {
	log.Printf("API listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleCars lists cars matching simple equality filters. Make and model go
// through the same normalization the extractor applies, so lookups are case
// and hyphen insensitive.
func (s *Server) handleCars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := bson.M{}
	if v := r.URL.Query().Get("make"); v != "" {
		filter["make"] = parser.NormalizeName(v)
	}
	if v := r.URL.Query().Get("model"); v != "" {
		filter["model"] = parser.NormalizeName(v)
	}
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "year must be an integer")
			return
		}
		filter["year"] = year
	}

	cars, err := s.store.Find(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}
	if cars == nil {
		cars = []models.Car{}
	}
	writeJSON(w, http.StatusOK, cars)
}

// handleCarsGrouped buckets cars by the requested fields, with an optional
// compiled search filter and make include/exclude sets.
func (s *Server) handleCarsGrouped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()

	groupBy := splitList(q.Get("group_by"))
	if len(groupBy) == 0 {
		groupBy = []string{"make", "model"}
	}

	minCount := 1
	if v := q.Get("min_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "min_count must be an integer")
			return
		}
		minCount = n
	}

	var specs []filters.Specification
	if rawURL := q.Get("search_url"); rawURL != "" {
		compiled, err := filters.CompileSearchURL(rawURL)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		specs = append(specs, compiled...)
	}

	makeModel := filters.MakeModel{}
	if raw := q.Get("makes_to_include"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &makeModel.Include); err != nil {
			badRequest(w, "makes_to_include must be a JSON object of make to model list")
			return
		}
	}
	if raw := q.Get("makes_to_exclude"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &makeModel.Exclude); err != nil {
			badRequest(w, "makes_to_exclude must be a JSON object of make to model list")
			return
		}
	}
	specs = append(specs, makeModel)

	groups, err := s.store.AggregateGrouped(r.Context(), groupBy, filters.Merge(specs), minCount)
	if errors.Is(err, storage.ErrInvalidGroupField) {
		badRequest(w, err.Error())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if groups == nil {
		groups = []storage.CarGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCarsMakes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	makes, err := s.store.MakesAndModels(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, makes)
}

type adsRequest struct {
	SearchURL string `json:"search_url"`
	StartPage int    `json:"start_page"`
	MaxPages  int    `json:"max_pages"`
}

// handleAds runs a crawl for the posted search URL and returns the run
// stats. A crawl already in flight answers 409.
func (s *Server) handleAds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req adsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.SearchURL == "" {
		badRequest(w, "search_url is required")
		return
	}
	if req.StartPage < 1 {
		req.StartPage = 1
	}

	run, err := s.runner.RunPages(r.Context(), req.SearchURL, req.StartPage, req.MaxPages)
	if errors.Is(err, crawler.ErrRunInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		// The partial run stats still tell the caller how far it got.
		if run != nil {
			writeJSON(w, http.StatusBadGateway, run)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	http.Error(w, msg, http.StatusBadRequest)
}

func internalError(w http.ResponseWriter, err error) {
	log.Printf("api: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
