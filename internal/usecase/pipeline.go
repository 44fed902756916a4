package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sentinlk/internal/domain"
	"sentinlk/internal/memory"
	"sentinlk/internal/novelty"
	"sentinlk/internal/ports"
	"sentinlk/internal/scoring"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Sources      []ports.SignalSource
	Repository   ports.SignalRepository
	Novelty      *novelty.Classifier
	Engine       *scoring.Engine
	Weather      ports.WeatherProvider
	Broadcaster  ports.Broadcaster
	Embedder     ports.Embedder
	Cache        *memory.EmbeddingCache
	Seen         *memory.SeenLinks
	SeenLinkSeed int
	CacheWarmup  int
	Logger       *slog.Logger
}

// Pipeline implements the signal-ingestion workflow: fetch fan-out, dedup,
// hybrid scoring, batched persistence and best-effort broadcast. No failure
// inside a cycle ever aborts the loop; everything degrades to "skip this
// item" or "skip this cycle".
type Pipeline struct {
	sources      []ports.SignalSource
	repository   ports.SignalRepository
	novelty      *novelty.Classifier
	engine       *scoring.Engine
	weather      ports.WeatherProvider
	broadcaster  ports.Broadcaster
	embedder     ports.Embedder
	cache        *memory.EmbeddingCache
	seen         *memory.SeenLinks
	seenLinkSeed int
	cacheWarmup  int
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		sources:      deps.Sources,
		repository:   deps.Repository,
		novelty:      deps.Novelty,
		engine:       deps.Engine,
		weather:      deps.Weather,
		broadcaster:  deps.Broadcaster,
		embedder:     deps.Embedder,
		cache:        deps.Cache,
		seen:         deps.Seen,
		seenLinkSeed: deps.SeenLinkSeed,
		cacheWarmup:  deps.CacheWarmup,
		logger:       deps.Logger,
	}
}

// Warmup seeds the seen-link set and the embedding cache from the newest
// persisted signals so a restart does not re-ingest recent history. All
// failures are logged and ignored; an empty warm start is acceptable.
func (p *Pipeline) Warmup(ctx context.Context) {
	if p.repository == nil {
		return
	}

	if links, err := p.repository.RecentLinks(ctx, p.seenLinkSeed); err != nil {
		p.warn("seed seen links", err)
	} else {
		p.seen.AddAll(links)
	}

	if p.embedder == nil || p.cache == nil || p.cacheWarmup <= 0 {
		return
	}

	headlines, err := p.repository.RecentHeadlines(ctx, p.cacheWarmup)
	if err != nil {
		p.warn("load recent headlines", err)
		return
	}
	if len(headlines) == 0 {
		return
	}

	vectors, err := p.embedder.Embed(ctx, headlines)
	if err != nil {
		p.warn("warm embedding cache", err)
		return
	}
	for i, headline := range headlines {
		p.cache.Append(headline, vectors[i])
	}
}

// RunCycle executes one full ingestion cycle.
func (p *Pipeline) RunCycle(ctx context.Context, now time.Time) {
	weatherStatus := p.fetchWeatherStatus(ctx)

	candidates := p.fetchAll(ctx)
	if len(candidates) == 0 {
		return
	}

	type pending struct {
		item    domain.CandidateItem
		text    string
		novelty novelty.Result
	}

	// Novelty runs sequentially: each decision must observe cache state,
	// and duplicates must not race each other into the batch. Links are also
	// deduped within the cycle: the same URL from two sources must not put
	// two rows behind one ON CONFLICT key, which Postgres rejects.
	var queue []pending
	cycleLinks := map[string]struct{}{}
	for _, item := range candidates {
		if item.Link == "" || p.seen.Has(item.Link) {
			continue
		}
		if _, ok := cycleLinks[item.Link]; ok {
			continue
		}
		cycleLinks[item.Link] = struct{}{}

		text := item.Text()
		result := p.novelty.Classify(ctx, text)
		if result.Verdict == novelty.Duplicate {
			p.seen.Add(item.Link)
			continue
		}

		queue = append(queue, pending{item: item, text: text, novelty: result})
	}

	if len(queue) == 0 {
		return
	}

	recentContext := p.buildContext(weatherStatus)

	assessments := make([]domain.RiskAssessment, len(queue))
	var wg sync.WaitGroup
	for i := range queue {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			corroborated := queue[i].novelty.Verdict == novelty.Corroborated
			assessments[i] = p.engine.Assess(ctx, queue[i].text, recentContext, corroborated)
		}(i)
	}
	wg.Wait()

	var (
		batch   []domain.Signal
		toCache []memory.Entry
	)
	for i, item := range queue {
		assessment := assessments[i]
		if assessment.Priority == domain.PriorityTrash {
			p.seen.Add(item.item.Link)
			continue
		}

		vectors, err := domain.Vectors{
			Lat:             assessment.Location.Lat,
			Lon:             assessment.Location.Lon,
			LogisticsImpact: assessment.Logistics,
			SentimentType:   assessment.Sentiment,
		}.Encode()
		if err != nil {
			p.warn("encode vectors", err)
			continue
		}

		batch = append(batch, domain.Signal{
			Link:      item.item.Link,
			Timestamp: item.item.PublishedAt,
			Source:    item.item.Source,
			Headline:  item.item.Title,
			FullText:  item.text,
			RiskScore: assessment.Score,
			Priority:  assessment.Priority,
			Reason:    assessment.Reason,
			Vectors:   vectors,
		})
		if item.novelty.Vector != nil {
			toCache = append(toCache, memory.Entry{Text: item.text, Vector: item.novelty.Vector})
		}
	}

	if len(batch) == 0 {
		return
	}

	if err := p.repository.UpsertBatch(ctx, batch); err != nil {
		// Nothing is marked seen: if the same links reappear next cycle
		// they are retried, and the upsert keeps that idempotent.
		p.warn("persist batch", err)
		return
	}

	links := make([]string, len(batch))
	for i, s := range batch {
		links[i] = s.Link
	}
	p.seen.AddAll(links)

	for _, entry := range toCache {
		p.cache.Append(entry.Text, entry.Vector)
	}

	if p.broadcaster != nil {
		for _, signal := range batch {
			if err := p.broadcaster.Publish(ctx, signal); err != nil {
				p.warn("broadcast signal", err)
			}
		}
	}

	if p.logger != nil {
		p.logger.Info("cycle complete",
			"fetched", len(candidates),
			"scored", len(queue),
			"persisted", len(batch),
			"seen", p.seen.Len(),
			"cached", p.cache.Len(),
			"weather", weatherStatus)
	}
}

func (p *Pipeline) fetchAll(ctx context.Context) []domain.CandidateItem {
	var (
		mu        sync.Mutex
		collected []domain.CandidateItem
		wg        sync.WaitGroup
	)

	for _, source := range p.sources {
		wg.Add(1)
		go func(source ports.SignalSource) {
			defer wg.Done()
			items, err := source.Fetch(ctx)
			if err != nil {
				if p.logger != nil {
					p.logger.Warn("source fetch failed", "source", source.Name(), "error", err)
				}
				return
			}
			mu.Lock()
			collected = append(collected, items...)
			mu.Unlock()
		}(source)
	}
	wg.Wait()

	return collected
}

func (p *Pipeline) fetchWeatherStatus(ctx context.Context) string {
	if p.weather == nil {
		return ""
	}

	report, err := p.weather.CurrentRisk(ctx)
	if err != nil {
		p.warn("weather lookup", err)
		return ""
	}
	return report.Status
}

// buildContext joins the last few cached headlines (and any active weather
// alert) into the short context window handed to the classifier.
func (p *Pipeline) buildContext(weatherStatus string) string {
	parts := p.cache.RecentTexts(3)
	if weatherStatus != "" && weatherStatus != "CLEAR" {
		parts = append(parts, "WEATHER: "+weatherStatus)
	}
	return strings.Join(parts, " | ")
}

func (p *Pipeline) warn(msg string, err error) {
	if p.logger != nil {
		p.logger.Warn(msg, "error", err)
	}
}
