package crawler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"polovni_scraper/models"
)

const DefaultBaseURL = "https://www.polovniautomobili.com"

// ErrRunInProgress is returned when a second crawl of the same Crawler is
// attempted while one is still running. Two uncoordinated runs over the
// same search URL would race on upserts, so the Crawler serializes itself.
var ErrRunInProgress = errors.New("crawl run already in progress")

// Store is the slice of the repository the crawl pipeline needs.
type Store interface {
	Exists(ctx context.Context, adNumber int) (bool, error)
	Upsert(ctx context.Context, car *models.Car) error
	BulkLightUpdate(ctx context.Context, shorts []models.CarShortInfo) (int64, error)
}

// Fetcher fetches one page as a parsed document.
type Fetcher interface {
	Get(ctx context.Context, url string) (*goquery.Document, error)
	Pause(ctx context.Context)
}

// Extractor turns a detail-page document into a full record.
type Extractor func(short models.CarShortInfo, doc *goquery.Document) (*models.Car, error)

// Crawler walks a paginated search result, giving unknown ads the full
// fetch-extract-upsert treatment and already-known ads a batched metadata
// refresh.
type Crawler struct {
	store   Store
	fetch   Fetcher
	extract Extractor
	baseURL string

	mu sync.Mutex
}

func New(store Store, fetch Fetcher, extract Extractor) *Crawler {
	return &Crawler{
		store:   store,
		fetch:   fetch,
		extract: extract,
		baseURL: DefaultBaseURL,
	}
}

// SetBaseURL overrides the detail-page host, used by tests.
func (c *Crawler) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// Run walks every result page of the search URL until the ad counter says
// the last page has been reached.
func (c *Crawler) Run(ctx context.Context, searchURL string) (*models.CrawlRun, error) {
	return c.RunPages(ctx, searchURL, 1, 0)
}

// RunPages walks result pages starting at startPage; maxPages of 0 means
// until completion. A listing-page fetch failure aborts the run; failures
// on a single ad are logged and skipped.
func (c *Crawler) RunPages(ctx context.Context, searchURL string, startPage, maxPages int) (*models.CrawlRun, error) {
	if !c.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.mu.Unlock()

	run := &models.CrawlRun{
		ID:        uuid.New(),
		SearchURL: searchURL,
		StartedAt: time.Now().UTC(),
		Status:    models.RunStatusRunning,
	}
	defer func() {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}()

	if startPage < 1 {
		startPage = 1
	}

	log.Printf("crawl %s: starting run %s", searchURL, run.ID)

	for page := startPage; ; page++ {
		if maxPages > 0 && page >= startPage+maxPages {
			break
		}

		pageURL, err := UpdatePageNumber(searchURL, page)
		if err != nil {
			run.Status = models.RunStatusFailed
			return run, fmt.Errorf("page url: %w", err)
		}

		doc, err := c.fetch.Get(ctx, pageURL)
		if err != nil {
			run.Status = models.RunStatusFailed
			return run, fmt.Errorf("listing page %d: %w", page, err)
		}
		run.PagesWalked++

		if err := c.processPage(ctx, run, doc); err != nil {
			run.Status = models.RunStatusFailed
			return run, err
		}

		counter, err := adCounter(doc)
		if err != nil {
			run.Status = models.RunStatusFailed
			return run, fmt.Errorf("page %d: %w", page, err)
		}
		if counter.To >= counter.Total {
			break
		}
	}

	run.Status = models.RunStatusCompleted
	log.Printf("crawl %s: run %s done: %d pages, %d ads seen, %d created, %d light updates, %d errors",
		searchURL, run.ID, run.PagesWalked, run.AdsSeen, run.AdsCreated, run.LightUpdates, run.ErrorsCount)
	return run, nil
}

// processPage handles every ad summary on one listing page. Known ads are
// queued and flushed as a single bulk light update; unknown ads cost a
// detail fetch each.
func (c *Crawler) processPage(ctx context.Context, run *models.CrawlRun, doc *goquery.Document) error {
	shorts := parseAdSummaries(doc)
	run.AdsSeen += len(shorts)

	var lightQueue []models.CarShortInfo
	for _, short := range shorts {
		known, err := c.store.Exists(ctx, short.AdNumber)
		if err != nil {
			return fmt.Errorf("exists %d: %w", short.AdNumber, err)
		}
		if known {
			lightQueue = append(lightQueue, short)
			continue
		}

		if err := c.ingestAd(ctx, short); err != nil {
			log.Printf("crawl: skipping ad %d: %v", short.AdNumber, err)
			run.ErrorsCount++
			continue
		}
		run.AdsCreated++
		c.fetch.Pause(ctx)
	}

	if len(lightQueue) > 0 {
		if _, err := c.store.BulkLightUpdate(ctx, lightQueue); err != nil {
			return fmt.Errorf("bulk light update: %w", err)
		}
		run.LightUpdates += len(lightQueue)
	}
	return nil
}

func (c *Crawler) ingestAd(ctx context.Context, short models.CarShortInfo) error {
	doc, err := c.fetch.Get(ctx, c.baseURL+short.Link)
	if err != nil {
		return err
	}
	car, err := c.extract(short, doc)
	if err != nil {
		return err
	}
	return c.store.Upsert(ctx, car)
}

var (
	adClassPattern    = regexp.MustCompile(`\bclassified\b.*\bad-\d+`)
	numberPattern     = regexp.MustCompile(`\d+`)
	pathSegmentDigits = regexp.MustCompile(`/(\d+)(?:/|$)`)
)

// parseAdSummaries pulls link, thumbnail and ad number out of every visible
// ad card on a listing page.
func parseAdSummaries(doc *goquery.Document) []models.CarShortInfo {
	var shorts []models.CarShortInfo
	doc.Find("article").Each(func(_ int, el *goquery.Selection) {
		class, _ := el.Attr("class")
		if !adClassPattern.MatchString(class) || strings.Contains(class, "uk-hidden") {
			return
		}

		linkTag := el.Find("a.firstImage").First()
		href, ok := linkTag.Attr("href")
		if !ok {
			return
		}
		link := stripQueryParameters(href)
		adNumber := adNumberFromLink(link)
		if link == "" || adNumber == 0 {
			return
		}

		short := models.CarShortInfo{Link: link, AdNumber: adNumber}
		if img := linkTag.Find("img.lazy.lead").First(); img.Length() > 0 {
			short.ImgSrc, _ = img.Attr("data-srcset")
		}
		shorts = append(shorts, short)
	})
	return shorts
}

// stripQueryParameters reduces an ad href to its path, dropping the
// tracking parameters that would otherwise make the same ad look like a
// different URL on every crawl.
func stripQueryParameters(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	return parsed.Path
}

// adNumberFromLink reads the numeric path segment that is the ad identity.
func adNumberFromLink(link string) int {
	m := pathSegmentDigits.FindStringSubmatch(link)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// pageCounter is the "from-to of total" region of a listing page.
type pageCounter struct {
	From  int
	To    int
	Total int
}

// adCounter reads the counter the site renders next to the filter bar; when
// To equals Total the current page is the last one.
func adCounter(doc *goquery.Document) (pageCounter, error) {
	region := doc.Find(".js-hide-on-filter").First()
	if region.Length() == 0 {
		return pageCounter{}, errors.New("ad counter region not found")
	}
	text := region.NextAllFiltered("small").First().Text()
	if text == "" {
		text = region.Find("small").First().Text()
	}

	numbers := numberPattern.FindAllString(text, -1)
	if len(numbers) < 3 {
		return pageCounter{}, fmt.Errorf("ad counter malformed: %q", strings.TrimSpace(text))
	}
	from, _ := strconv.Atoi(numbers[0])
	to, _ := strconv.Atoi(numbers[1])
	total, _ := strconv.Atoi(numbers[2])
	return pageCounter{From: from, To: to, Total: total}, nil
}

// UpdatePageNumber rewrites the page query parameter of a search URL,
// leaving the rest of the query intact.
func UpdatePageNumber(rawURL string, page int) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := parsed.Query()
	q.Set("page", strconv.Itoa(page))
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
