package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"polovni_scraper/models"
	"polovni_scraper/parser"
)

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to parse fixture %s: %v", name, err)
	}
	return doc
}

// fakeFetcher serves canned documents keyed by URL.
type fakeFetcher struct {
	docs    map[string]*goquery.Document
	fetched []string
	block   chan struct{}
}

func (f *fakeFetcher) Get(_ context.Context, url string) (*goquery.Document, error) {
	if f.block != nil {
		<-f.block
	}
	f.fetched = append(f.fetched, url)
	doc, ok := f.docs[url]
	if !ok {
		return nil, fmt.Errorf("no document for %s", url)
	}
	return doc, nil
}

func (f *fakeFetcher) Pause(context.Context) {}

// fakeStore records pipeline writes in memory.
type fakeStore struct {
	mu       sync.Mutex
	known    map[int]bool
	upserted []int
	light    [][]models.CarShortInfo
}

func newFakeStore(known ...int) *fakeStore {
	s := &fakeStore{known: make(map[int]bool)}
	for _, n := range known {
		s.known[n] = true
	}
	return s
}

func (s *fakeStore) Exists(_ context.Context, adNumber int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.known[adNumber], nil
}

func (s *fakeStore) Upsert(_ context.Context, car *models.Car) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[car.AdNumber] = true
	s.upserted = append(s.upserted, car.AdNumber)
	return nil
}

func (s *fakeStore) BulkLightUpdate(_ context.Context, shorts []models.CarShortInfo) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.light = append(s.light, shorts)
	return int64(len(shorts)), nil
}

func stubExtract(short models.CarShortInfo, _ *goquery.Document) (*models.Car, error) {
	return &models.Car{AdNumber: short.AdNumber, Link: short.Link}, nil
}

func detailDoc(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

const testSearchURL = "https://example.com/auto-oglasi/pretraga?sort=basic"

func newTestCrawler(t *testing.T, store Store, extract Extractor) (*Crawler, *fakeFetcher) {
	t.Helper()

	page1, err := UpdatePageNumber(testSearchURL, 1)
	if err != nil {
		t.Fatal(err)
	}
	page2, err := UpdatePageNumber(testSearchURL, 2)
	if err != nil {
		t.Fatal(err)
	}

	fetch := &fakeFetcher{docs: map[string]*goquery.Document{
		page1: loadFixture(t, "listing_page_1.html"),
		page2: loadFixture(t, "listing_page_2.html"),
	}}
	detail := detailDoc(t)
	for _, link := range []string{
		"/auto-oglasi/11111111/bmw-serija-3-320d",
		"/auto-oglasi/22222222/audi-a4-2-0-tdi",
		"/auto-oglasi/33333333/fiat-punto-1-3-mjet",
		"/auto-oglasi/44444444/opel-astra-1-7-cdti",
	} {
		fetch.docs["https://example.com"+link] = detail
	}

	c := New(store, fetch, extract)
	c.SetBaseURL("https://example.com")
	return c, fetch
}

func TestRun_WalksAllPagesAndIngestsUnknownAds(t *testing.T) {
	store := newFakeStore()
	c, _ := newTestCrawler(t, store, stubExtract)

	run, err := c.Run(context.Background(), testSearchURL)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed run, got %s", run.Status)
	}
	if run.PagesWalked != 2 {
		t.Fatalf("expected 2 pages walked, got %d", run.PagesWalked)
	}
	if run.AdsSeen != 4 {
		t.Fatalf("expected 4 ads seen (hidden card excluded), got %d", run.AdsSeen)
	}
	if run.AdsCreated != 4 || len(store.upserted) != 4 {
		t.Fatalf("expected 4 upserts, got run=%d store=%d", run.AdsCreated, len(store.upserted))
	}
	if run.FinishedAt == nil {
		t.Fatal("expected FinishedAt to be set")
	}
}

func TestRun_KnownAdsGetOneBulkUpdatePerPage(t *testing.T) {
	store := newFakeStore(11111111, 22222222)
	c, fetch := newTestCrawler(t, store, stubExtract)

	run, err := c.Run(context.Background(), testSearchURL)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.LightUpdates != 2 {
		t.Fatalf("expected 2 light updates, got %d", run.LightUpdates)
	}
	if len(store.light) != 1 {
		t.Fatalf("expected a single bulk write for page 1, got %d", len(store.light))
	}
	if got := len(store.light[0]); got != 2 {
		t.Fatalf("expected 2 ads in the bulk write, got %d", got)
	}
	if run.AdsCreated != 2 {
		t.Fatalf("expected the page 2 ads created, got %d", run.AdsCreated)
	}
	for _, url := range fetch.fetched {
		if strings.Contains(url, "11111111") || strings.Contains(url, "22222222") {
			t.Fatalf("known ad must not cost a detail fetch: %s", url)
		}
	}
}

func TestRun_ExtractionFailureSkipsAdOnly(t *testing.T) {
	store := newFakeStore()
	failing := func(short models.CarShortInfo, doc *goquery.Document) (*models.Car, error) {
		if short.AdNumber == 33333333 {
			return nil, &parser.ExtractionError{Field: "make", Link: short.Link}
		}
		return stubExtract(short, doc)
	}
	c, _ := newTestCrawler(t, store, failing)

	run, err := c.Run(context.Background(), testSearchURL)
	if err != nil {
		t.Fatalf("run should survive a bad ad: %v", err)
	}

	if run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed run, got %s", run.Status)
	}
	if run.ErrorsCount != 1 {
		t.Fatalf("expected 1 error, got %d", run.ErrorsCount)
	}
	if run.AdsCreated != 3 {
		t.Fatalf("expected 3 ads created, got %d", run.AdsCreated)
	}
	for _, n := range store.upserted {
		if n == 33333333 {
			t.Fatal("failed ad must not be upserted")
		}
	}
}

func TestRun_ListingFetchFailureAbortsRun(t *testing.T) {
	store := newFakeStore()
	fetch := &fakeFetcher{docs: map[string]*goquery.Document{}}
	c := New(store, fetch, stubExtract)

	run, err := c.Run(context.Background(), testSearchURL)
	if err == nil {
		t.Fatal("expected run to fail on listing fetch error")
	}
	if run.Status != models.RunStatusFailed {
		t.Fatalf("expected failed run, got %s", run.Status)
	}
	if len(store.upserted) != 0 {
		t.Fatalf("expected no writes, got %v", store.upserted)
	}
}

func TestRun_MaxPagesStopsEarly(t *testing.T) {
	store := newFakeStore()
	c, fetch := newTestCrawler(t, store, stubExtract)

	run, err := c.RunPages(context.Background(), testSearchURL, 1, 1)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if run.PagesWalked != 1 {
		t.Fatalf("expected 1 page walked, got %d", run.PagesWalked)
	}
	for _, url := range fetch.fetched {
		if strings.Contains(url, "page=2") {
			t.Fatal("page 2 must not be fetched with maxPages 1")
		}
	}
}

func TestRun_ConcurrentRunRejected(t *testing.T) {
	store := newFakeStore()
	c, fetch := newTestCrawler(t, store, stubExtract)
	fetch.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := c.Run(context.Background(), testSearchURL)
		done <- err
	}()

	// Wait until the first run holds the lock inside its first fetch.
	fetch.block <- struct{}{}

	_, err := c.Run(context.Background(), testSearchURL)
	if !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}

	close(fetch.block)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestParseAdSummaries(t *testing.T) {
	doc := loadFixture(t, "listing_page_1.html")
	shorts := parseAdSummaries(doc)

	if len(shorts) != 2 {
		t.Fatalf("expected 2 visible ads, got %d", len(shorts))
	}
	first := shorts[0]
	if first.Link != "/auto-oglasi/11111111/bmw-serija-3-320d" {
		t.Fatalf("expected query-stripped link, got %q", first.Link)
	}
	if first.AdNumber != 11111111 {
		t.Fatalf("expected ad number 11111111, got %d", first.AdNumber)
	}
	if first.ImgSrc != "https://img.example/11111111.jpg 320w" {
		t.Fatalf("unexpected img src %q", first.ImgSrc)
	}
}

func TestAdCounter(t *testing.T) {
	doc := loadFixture(t, "listing_page_2.html")
	counter, err := adCounter(doc)
	if err != nil {
		t.Fatalf("counter parse failed: %v", err)
	}
	if counter.From != 3 || counter.To != 4 || counter.Total != 4 {
		t.Fatalf("unexpected counter %+v", counter)
	}
}

func TestUpdatePageNumber(t *testing.T) {
	got, err := UpdatePageNumber("https://example.com/pretraga?page=3&sort=basic", 7)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "page=7") || strings.Contains(got, "page=3") {
		t.Fatalf("page not rewritten: %q", got)
	}
	if !strings.Contains(got, "sort=basic") {
		t.Fatalf("other query params lost: %q", got)
	}
}

func TestAdNumberFromLink(t *testing.T) {
	tests := []struct {
		link string
		want int
	}{
		{"/auto-oglasi/11111111/bmw-serija-3", 11111111},
		{"/auto-oglasi/22222222", 22222222},
		{"/auto-oglasi/bez-broja", 0},
	}
	for _, tt := range tests {
		if got := adNumberFromLink(tt.link); got != tt.want {
			t.Errorf("adNumberFromLink(%q) = %d, want %d", tt.link, got, tt.want)
		}
	}
}
