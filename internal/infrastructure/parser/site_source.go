package parser

import (
	"context"
	"fmt"
	"log/slog"

	"sentinlk/internal/config"
	"sentinlk/internal/domain"
	"sentinlk/internal/ports"
	"sentinlk/internal/scanner"
)

// siteSource binds one configured site to its scanner strategy. Each site
// becomes an independent SignalSource so the pipeline can fan out one fetch
// per source.
type siteSource struct {
	strategy scanner.Scanner
	site     config.SiteConfig
	logger   *slog.Logger
}

var _ ports.SignalSource = (*siteSource)(nil)

// BuildSources resolves every configured site against the registry and
// returns one SignalSource per site.
func BuildSources(reg *scanner.Registry, sites []config.SiteConfig, logger *slog.Logger) ([]ports.SignalSource, error) {
	if reg == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	sources := make([]ports.SignalSource, 0, len(sites))
	for _, site := range sites {
		strategy, err := reg.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		var siteLogger *slog.Logger
		if logger != nil {
			siteLogger = logger.With("site", site.Name)
		}
		sources = append(sources, &siteSource{strategy: strategy, site: site, logger: siteLogger})
	}

	return sources, nil
}

// Name reports the configured site name.
func (s *siteSource) Name() string {
	return s.site.Name
}

// Fetch executes the site's scanner strategy.
func (s *siteSource) Fetch(ctx context.Context) ([]domain.CandidateItem, error) {
	req := scanner.Request{
		SiteName:  s.site.Name,
		Options:   s.site.Options,
		Endpoints: toScannerEndpoints(s.site.Endpoints),
	}

	results, err := s.strategy.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("scan site %s: %w", s.site.Name, err)
	}

	for i := range results {
		if results[i].Source == "" {
			results[i].Source = s.site.Name
		}
	}

	if s.logger != nil {
		s.logger.Debug("site produced candidates", "count", len(results))
	}
	return results, nil
}

func toScannerEndpoints(cfg []config.EndpointConfig) []scanner.Endpoint {
	endpoints := make([]scanner.Endpoint, 0, len(cfg))
	for _, e := range cfg {
		endpoints = append(endpoints, scanner.Endpoint{Name: e.Name, URL: e.URL})
	}
	return endpoints
}
