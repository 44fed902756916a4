package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// CandidateItem is a raw news/social item produced by a fetcher. It lives for
// a single pipeline cycle and is discarded after the scoring decision.
type CandidateItem struct {
	Title       string
	Link        string
	Source      string
	PublishedAt time.Time
	FullText    string
}

// Text returns the richest text available for scoring.
func (c CandidateItem) Text() string {
	if c.FullText != "" {
		return c.FullText
	}
	return c.Title
}

// Priority buckets accepted signals for the dashboard and alert routing.
type Priority string

const (
	PriorityTrash    Priority = "TRASH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Sentiment distinguishes downside risk from upside opportunity.
type Sentiment string

const (
	SentimentRisk        Sentiment = "RISK"
	SentimentOpportunity Sentiment = "OPPORTUNITY"
)

// LogisticsImpact describes the expected effect on supply-chain movement.
type LogisticsImpact string

const (
	LogisticsClear          LogisticsImpact = "CLEAR"
	LogisticsPotentialDelay LogisticsImpact = "POTENTIAL_DELAY"
	LogisticsDisrupted      LogisticsImpact = "DISRUPTED"
	LogisticsBoost          LogisticsImpact = "BOOST"
)

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// IsZero reports whether the point carries no usable coordinate.
func (g GeoPoint) IsZero() bool {
	return g.Lat == 0 && g.Lon == 0
}

// RiskAssessment is the hybrid engine's verdict for one candidate.
type RiskAssessment struct {
	Score     int
	Priority  Priority
	Reason    string
	Sentiment Sentiment
	Logistics LogisticsImpact
	Location  GeoPoint
}

// ClassifierVerdict is the normalized result of the external neural
// classifier. Valid=false means the classifier explicitly flagged the
// content as irrelevant; degraded calls stay Valid with a zero score.
type ClassifierVerdict struct {
	Valid        bool
	Score        int
	Reason       string
	Sentiment    Sentiment
	Logistics    LogisticsImpact
	LocationName string
	Location     GeoPoint
}

// Vectors is the serialized geo/impact payload stored on each signal row.
type Vectors struct {
	Lat             float64         `json:"lat"`
	Lon             float64         `json:"lon"`
	LogisticsImpact LogisticsImpact `json:"logistics_impact"`
	SentimentType   Sentiment       `json:"sentiment_type"`
}

// Encode serializes the payload for the signals table.
func (v Vectors) Encode() (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal vectors: %w", err)
	}
	return string(raw), nil
}

// DecodeVectors parses a stored vectors payload.
func DecodeVectors(raw string) (Vectors, error) {
	var v Vectors
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Vectors{}, fmt.Errorf("unmarshal vectors: %w", err)
	}
	return v, nil
}

// Signal is a deduplicated, scored item persisted to the signals table.
// Rows are keyed on Link and written once via idempotent upsert.
type Signal struct {
	Link      string
	Timestamp time.Time
	Source    string
	Headline  string
	FullText  string
	RiskScore int
	Priority  Priority
	Reason    string
	Vectors   string
}

// WeatherReport is the ground-truth weather snapshot attached to a cycle.
type WeatherReport struct {
	PrecipMM float64
	Status   string
}
