package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sentinlk/internal/domain"
	"sentinlk/internal/scanner"
)

const (
	defaultBatchLimit   = 12
	perSelectorLimit    = 10
	defaultFetchTimeout = 15 * time.Second
)

// headlineSelectors is a cascade of selectors covering the layouts of the
// supported news portals. Order matters: the most specific hit first.
var headlineSelectors = []string{
	"h4.posts-listunit-title a",
	"h1 a",
	"h3 a",
	".col-md-8 h3 a",
	".news-custom-heading a",
	".story-text a",
	".news-block a",
	".main-news-block a",
	"h2 a",
}

// HTMLScanner crawls portal pages and extracts headline candidates.
type HTMLScanner struct {
	client     *http.Client
	batchLimit int
	now        func() time.Time
}

// NewHTMLScanner wires an HTTP client; the batch is capped at 12 items per
// endpoint to keep one noisy page from dominating a cycle.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTMLScanner{client: client, batchLimit: defaultBatchLimit, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return "html"
}

// Scan walks through each endpoint URL and returns headline candidates.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.CandidateItem, error) {
	if len(req.Endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints provided for site %s", req.SiteName)
	}

	results := make([]domain.CandidateItem, 0)
	// One dedupe set per scan: endpoints of the same site often share
	// headlines (front page vs section page).
	seenInBatch := map[string]struct{}{}
	for _, endpoint := range req.Endpoints {
		doc, err := h.fetchDocument(ctx, endpoint.URL)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", endpoint.Name, err)
		}

		results = append(results, h.extractCandidates(doc, req.SiteName, endpoint.URL, seenInBatch)...)
	}

	return results, nil
}

func (h *HTMLScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	fresh, err := cacheBustedURL(pageURL, h.now().Unix())
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fresh, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.0.0 Safari/537.36")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func (h *HTMLScanner) extractCandidates(doc *goquery.Document, siteName, baseURL string, seenInBatch map[string]struct{}) []domain.CandidateItem {
	var collected []domain.CandidateItem
	fetchedAt := h.now().UTC()

	for _, selector := range headlineSelectors {
		doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
			if i >= perSelectorLimit || len(collected) >= h.batchLimit {
				return false
			}

			title := strings.TrimSpace(sel.Text())
			href, exists := sel.Attr("href")
			if title == "" || !exists || href == "" {
				return true
			}

			href = absoluteLink(href, baseURL)
			if _, ok := seenInBatch[href]; ok {
				return true
			}
			seenInBatch[href] = struct{}{}

			collected = append(collected, domain.CandidateItem{
				Title:       fmt.Sprintf("[%s] %s", siteName, title),
				Link:        href,
				Source:      siteName,
				PublishedAt: fetchedAt,
			})
			return true
		})
		if len(collected) >= h.batchLimit {
			break
		}
	}

	return collected
}

func absoluteLink(href, baseURL string) string {
	if !strings.HasPrefix(href, "/") {
		return href
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return href
	}

	return parsed.Scheme + "://" + parsed.Host + href
}

func cacheBustedURL(base string, unix int64) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("t", strconv.FormatInt(unix, 10))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
