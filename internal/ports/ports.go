package ports

import (
	"context"
	"time"

	"sentinlk/internal/domain"
)

// SignalSource pulls fresh candidate items from one upstream feed or page.
type SignalSource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.CandidateItem, error)
}

// SignalRepository persists scored signals and exposes recent history for
// seeding the in-process caches at startup.
type SignalRepository interface {
	UpsertBatch(ctx context.Context, signals []domain.Signal) error
	RecentLinks(ctx context.Context, limit int) ([]string, error)
	RecentHeadlines(ctx context.Context, limit int) ([]string, error)
}

// Classifier invokes the external neural model on a candidate text with a
// short window of recent context.
type Classifier interface {
	Classify(ctx context.Context, text, recentContext string) (domain.ClassifierVerdict, error)
}

// Embedder converts texts into fixed-length vectors for novelty detection.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Gazetteer resolves location names and raw text mentions to coordinates.
type Gazetteer interface {
	Resolve(name string) (domain.GeoPoint, bool)
	ScanText(text string) (domain.GeoPoint, bool)
	Fallback() domain.GeoPoint
}

// WeatherProvider looks up current ground-truth conditions.
type WeatherProvider interface {
	CurrentRisk(ctx context.Context) (domain.WeatherReport, error)
}

// Broadcaster pushes accepted signals to live subscribers, best-effort.
type Broadcaster interface {
	Publish(ctx context.Context, signal domain.Signal) error
}

// Scheduler controls when pipeline cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
