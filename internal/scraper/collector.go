package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/etchedheadplate/spimex-scraper/internal/logger"
)

// resultsPath is the oil-products trading-results listing under the exchange
// website root. Pages after the first are addressed as "?page=page-N".
const resultsPath = "/markets/oil_products/trades/results/"

// Bulletin filenames embed a 14-digit publication stamp:
// eight-digit date followed by six-digit time.
var bulletinFilePattern = regexp.MustCompile(`oil_xls_(\d{14})\.xls`)

const bulletinStampLayout = "20060102150405"

// Collector walks the paginated trading-results listing and streams the
// absolute URLs of bulletins whose embedded timestamp falls inside the
// requested window. It is the producing side of the scrape queue.
type Collector struct {
	client    *http.Client
	baseURL   *url.URL
	startDate time.Time
	endDate   time.Time
	log       zerolog.Logger

	found int
}

// NewCollector builds a collector for one ingestion window. The HTTP client
// is injected so tests can point it at a fixture server.
func NewCollector(client *http.Client, baseURL string, startDate, endDate time.Time) (*Collector, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	return &Collector{
		client:    client,
		baseURL:   u,
		startDate: startDate,
		endDate:   endDate,
		log:       logger.With("collector"),
	}, nil
}

// Run paginates from page 1 until a page advertises zero bulletin links (the
// end-of-listing sentinel), sending every in-window link on out as soon as it
// is discovered so downloaders start before collection finishes. It closes
// out before returning, which is how every consumer observes termination.
//
// The stop condition counts all bulletin anchors on the page, not just the
// in-window ones: the listing is newest-first, so pages ahead of the window
// carry only filtered-out links and pagination must keep going past them.
func (c *Collector) Run(ctx context.Context, out chan<- string) error {
	defer close(out)

	for page := 1; ; page++ {
		pageURL := c.pageURL(page)
		links, candidates := c.extractLinks(ctx, pageURL)
		if candidates == 0 {
			c.log.Info().Int("page", page).Msg("empty page, listing ends")
			break
		}
		for _, link := range links {
			select {
			case out <- link:
				c.found++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	c.log.Info().Int("links", c.found).Msg("collection done")
	return nil
}

// Found reports how many links were enqueued. Valid after Run returns.
func (c *Collector) Found() int {
	return c.found
}

func (c *Collector) pageURL(page int) string {
	u := *c.baseURL
	u.Path = resultsPath
	if page > 1 {
		u.RawQuery = fmt.Sprintf("page=page-%d", page)
	}
	return u.String()
}

// extractLinks fetches one listing page and returns the in-window bulletin
// URLs it advertises, plus the total number of bulletin anchors seen. Fetch
// and parse problems fail soft: the page simply contributes zero links.
func (c *Collector) extractLinks(ctx context.Context, pageURL string) ([]string, int) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		c.log.Warn().Str("url", pageURL).Err(err).Msg("build page request failed")
		return nil, 0
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Str("url", pageURL).Err(err).Msg("page fetch failed")
		return nil, 0
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Str("url", pageURL).Int("status", resp.StatusCode).Msg("page fetch failed")
		return nil, 0
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.log.Warn().Str("url", pageURL).Err(err).Msg("page parse failed")
		return nil, 0
	}

	var links []string
	candidates := 0
	doc.Find("a.xls").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		m := bulletinFilePattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		candidates++
		stamp, err := time.Parse(bulletinStampLayout, m[1])
		if err != nil {
			return
		}
		// Window bounds are inclusive on both ends.
		if stamp.Before(c.startDate) || stamp.After(c.endDate) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := c.baseURL.ResolveReference(ref).String()
		c.log.Debug().Str("url", abs).Msg("bulletin link found")
		links = append(links, abs)
	})
	return links, candidates
}
