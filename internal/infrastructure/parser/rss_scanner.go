package parser

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"sentinlk/internal/domain"
	"sentinlk/internal/scanner"
)

// RSSScanner pulls candidates from RSS/Atom feeds.
type RSSScanner struct {
	client    *http.Client
	itemLimit int
	now       func() time.Time
}

// NewRSSScanner wires an HTTP client; the per-feed item cap defaults to 12
// and can be overridden with the "limit" site option.
func NewRSSScanner(client *http.Client) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &RSSScanner{client: client, itemLimit: defaultBatchLimit, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Scan fetches and parses every configured feed URL.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.CandidateItem, error) {
	if len(req.Endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints provided for site %s", req.SiteName)
	}

	limit := r.itemLimit
	if raw, ok := req.Options["limit"]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	parser := gofeed.NewParser()
	results := make([]domain.CandidateItem, 0)

	for _, endpoint := range req.Endpoints {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: build request: %w", endpoint.Name, err)
		}

		resp, err := r.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: request feed: %w", endpoint.Name, err)
		}

		feed, err := parser.Parse(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: parse feed: %w", endpoint.Name, err)
		}

		for i, item := range feed.Items {
			if i >= limit {
				break
			}
			results = append(results, r.toCandidate(item, req.SiteName))
		}
	}

	return results, nil
}

func (r *RSSScanner) toCandidate(item *gofeed.Item, siteName string) domain.CandidateItem {
	publishedAt := r.now().UTC()
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	}

	fullText := item.Content
	if fullText == "" {
		fullText = item.Description
	}

	return domain.CandidateItem{
		Title:       fmt.Sprintf("[%s] %s", siteName, item.Title),
		Link:        item.Link,
		Source:      siteName,
		PublishedAt: publishedAt,
		FullText:    fullText,
	}
}
