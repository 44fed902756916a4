package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"sentinlk/internal/domain"
	"sentinlk/internal/ports"
)

// infrastructureSectors maps critical-infrastructure sectors to the phrases
// that indicate a signal concerns them.
var infrastructureSectors = map[string][]string{
	"PORT":    {"colombo port", "harbour", "terminal", "customs", "container"},
	"AIRPORT": {"bia", "katunayake", "mattala", "flights", "airline"},
	"HIGHWAY": {"southern expressway", "kandy road", "galle road", "expressway", "interchange"},
	"POWER":   {"norochcholai", "sapugaskanda", "ceb", "grid", "substation"},
	"FINANCE": {"cse", "colombo stock exchange", "cbsl", "central bank", "forex"},
}

// EngineConfig carries the tunable thresholds of the hybrid engine.
type EngineConfig struct {
	RescueThreshold int
	InfraBonus      int
	SwarmBonus      int
	ScoreFloor      int
}

// DefaultEngineConfig mirrors the production tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RescueThreshold: 40,
		InfraBonus:      15,
		SwarmBonus:      10,
		ScoreFloor:      10,
	}
}

// Engine composes the symbolic scorer, the neural classifier adapter and the
// infrastructure-impact rules into one final risk assessment per candidate.
type Engine struct {
	classifier ports.Classifier
	gazetteer  ports.Gazetteer
	cfg        EngineConfig
	logger     *slog.Logger
}

// NewEngine wires the external collaborators into the scoring state machine.
// Zero config fields fall back to the production defaults field by field.
func NewEngine(classifier ports.Classifier, gazetteer ports.Gazetteer, cfg EngineConfig, logger *slog.Logger) *Engine {
	defaults := DefaultEngineConfig()
	if cfg.RescueThreshold == 0 {
		cfg.RescueThreshold = defaults.RescueThreshold
	}
	if cfg.InfraBonus == 0 {
		cfg.InfraBonus = defaults.InfraBonus
	}
	if cfg.SwarmBonus == 0 {
		cfg.SwarmBonus = defaults.SwarmBonus
	}
	if cfg.ScoreFloor == 0 {
		cfg.ScoreFloor = defaults.ScoreFloor
	}
	return &Engine{classifier: classifier, gazetteer: gazetteer, cfg: cfg, logger: logger}
}

// Assess runs one candidate text through the filtering/priority state
// machine. Corroborated marks the text as one of several near-identical
// reports; it earns a swarm bonus. A TRASH priority means the item was
// filtered out and must not be persisted.
func (e *Engine) Assess(ctx context.Context, text, recentContext string, corroborated bool) domain.RiskAssessment {
	sym := SymbolicScan(text)
	if !sym.Relevant {
		return domain.RiskAssessment{
			Priority:  domain.PriorityTrash,
			Reason:    "noise filter",
			Sentiment: domain.SentimentRisk,
			Logistics: domain.LogisticsClear,
		}
	}

	verdict := e.classify(ctx, text, recentContext)

	if !verdict.Valid {
		if sym.Score <= e.cfg.RescueThreshold {
			return domain.RiskAssessment{
				Priority:  domain.PriorityTrash,
				Reason:    "classifier rejected",
				Sentiment: domain.SentimentRisk,
				Logistics: domain.LogisticsClear,
			}
		}
		verdict = domain.ClassifierVerdict{
			Valid:     true,
			Score:     sym.Score,
			Reason:    "symbolic rescue",
			Sentiment: sym.Sentiment,
			Logistics: domain.LogisticsClear,
		}
	}

	score := verdict.Score
	reason := verdict.Reason
	if score == 0 {
		score = sym.Score
		reason = "symbolic fallback"
		if verdict.Sentiment == "" || verdict.Sentiment == domain.SentimentRisk {
			verdict.Sentiment = sym.Sentiment
		}
	}

	sentiment := verdict.Sentiment
	if sentiment == "" {
		sentiment = domain.SentimentRisk
	}
	logistics := verdict.Logistics
	if logistics == "" {
		logistics = domain.LogisticsClear
	}

	if sentiment == domain.SentimentRisk {
		if sectors := infrastructureHits(text); len(sectors) > 0 {
			reason = fmt.Sprintf("%s [IMPACT: %s]", reason, strings.Join(sectors, ", "))
			score += e.cfg.InfraBonus
			if logistics == domain.LogisticsClear {
				logistics = domain.LogisticsPotentialDelay
			}
		}
	}

	if corroborated {
		reason += " [CORROBORATED]"
		score += e.cfg.SwarmBonus
	}

	// The symbolic score is a lower bound: a degraded neural verdict never
	// drags an obviously hot keyword profile down.
	if sym.Score > score {
		score = sym.Score
	}
	if score < e.cfg.ScoreFloor {
		score = e.cfg.ScoreFloor
	}
	if score > 100 {
		score = 100
	}

	priority := domain.PriorityMedium
	switch {
	case score > 80:
		priority = domain.PriorityCritical
	case score > 40:
		priority = domain.PriorityHigh
	}

	return domain.RiskAssessment{
		Score:     score,
		Priority:  priority,
		Reason:    reason,
		Sentiment: sentiment,
		Logistics: logistics,
		Location:  e.resolveLocation(verdict, text),
	}
}

func (e *Engine) classify(ctx context.Context, text, recentContext string) domain.ClassifierVerdict {
	if e.classifier == nil {
		return domain.ClassifierVerdict{
			Valid:     true,
			Reason:    "classifier unavailable",
			Sentiment: domain.SentimentRisk,
			Logistics: domain.LogisticsClear,
		}
	}

	verdict, err := e.classifier.Classify(ctx, text, recentContext)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("classifier call failed, degrading to symbolic", "error", err)
		}
		return domain.ClassifierVerdict{
			Valid:     true,
			Reason:    "classifier error",
			Sentiment: domain.SentimentRisk,
			Logistics: domain.LogisticsClear,
		}
	}

	return verdict
}

func (e *Engine) resolveLocation(verdict domain.ClassifierVerdict, text string) domain.GeoPoint {
	if !verdict.Location.IsZero() {
		return verdict.Location
	}

	if e.gazetteer == nil {
		return domain.GeoPoint{}
	}

	if verdict.LocationName != "" {
		if point, ok := e.gazetteer.Resolve(verdict.LocationName); ok {
			return point
		}
	}

	if point, ok := e.gazetteer.ScanText(text); ok {
		return point
	}

	return e.gazetteer.Fallback()
}

func infrastructureHits(text string) []string {
	lower := strings.ToLower(text)

	var sectors []string
	for sector, keywords := range infrastructureSectors {
		for _, word := range keywords {
			if strings.Contains(lower, word) {
				sectors = append(sectors, sector)
				break
			}
		}
	}

	sort.Strings(sectors)
	return sectors
}
