package scoring

import (
	"strings"

	"sentinlk/internal/domain"
)

const (
	keywordIncrement = 15
	urgencyBonus     = 20
)

// noiseTriggers hard-ban sports, gossip and ceremonial chatter regardless of
// any other score.
var noiseTriggers = []string{"cricket", "ipl", "match", "wedding", "gossip", "horoscope"}

var urgencyMarkers = []string{"urgent", "breaking", "alert"}

// growthCategory keywords imply OPPORTUNITY rather than RISK.
const growthCategory = "growth"

var categoryKeywords = map[string][]string{
	"political": {"election", "parliament", "president", "gazette", "cabinet", "minister"},
	"economic":  {"imf", "tax", "inflation", "dollar", "debt", "stock market", "rupee"},
	"social":    {"protest", "strike", "riot", "tear gas", "police", "blockade", "curfew"},
	"environmental": {
		"flood", "rain", "warning", "landslide", "cyclone", "disaster", "monsoon",
	},
	"infrastructure": {
		"water", "nwsdb", "electricity", "fuel", "litro", "gas", "telecom", "supply", "grid",
	},
	"power":        {"power cut", "blackout", "ceb", "leco", "outage"},
	growthCategory: {"investment", "tourism", "exports", "expansion", "fdi", "recovery"},
	"general-risk": {"explosion", "attack", "accident", "emergency", "evacuation"},
}

// SymbolicResult is the outcome of the pure keyword scan.
type SymbolicResult struct {
	Relevant  bool
	Score     int
	Sentiment domain.Sentiment
}

// SymbolicScan is the deterministic fallback scorer: ban-vocabulary check,
// then a fixed increment per category keyword hit, an urgency bonus, and a
// clamp to [0,100]. Relevant=false means a hard ban term matched and the
// caller must treat the item as trash.
func SymbolicScan(text string) SymbolicResult {
	lower := strings.ToLower(text)

	for _, noise := range noiseTriggers {
		if strings.Contains(lower, noise) {
			return SymbolicResult{Relevant: false}
		}
	}

	score := 0
	growthHits := 0
	riskHits := 0
	for category, keywords := range categoryKeywords {
		for _, word := range keywords {
			if strings.Contains(lower, word) {
				score += keywordIncrement
				if category == growthCategory {
					growthHits++
				} else {
					riskHits++
				}
			}
		}
	}

	for _, marker := range urgencyMarkers {
		if strings.Contains(lower, marker) {
			score += urgencyBonus
			break
		}
	}

	if score > 100 {
		score = 100
	}

	sentiment := domain.SentimentRisk
	if growthHits > riskHits {
		sentiment = domain.SentimentOpportunity
	}

	return SymbolicResult{Relevant: true, Score: score, Sentiment: sentiment}
}
