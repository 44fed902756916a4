package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sentinlk/internal/config"
	"sentinlk/internal/domain"
	"sentinlk/internal/ports"
)

const systemPrompt = `Analyze the text for Sri Lankan business risk. Return JSON:
{"relevant": bool, "score": 0-100, "reason": string, "sentiment_type": "RISK"|"OPPORTUNITY", "logistics_status": "CLEAR"|"POTENTIAL_DELAY"|"DISRUPTED"|"BOOST", "location_name": string, "lat": number, "lon": number}
Set relevant=false only for content with no bearing on risk or opportunity.`

// GroqClassifier implements ports.Classifier against Groq's OpenAI-compatible
// chat-completions API. All failure modes degrade to a zero-score verdict so
// the engine falls back to symbolic scoring; only an explicit irrelevance
// verdict from the model yields Valid=false.
type GroqClassifier struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.Classifier = (*GroqClassifier)(nil)

// NewGroqClassifier builds a client from configuration.
func NewGroqClassifier(cfg config.ClassifierConfig, logger *slog.Logger) *GroqClassifier {
	return &GroqClassifier{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

// Classify sends the candidate text plus recent context for scoring.
func (c *GroqClassifier) Classify(ctx context.Context, text, recentContext string) (domain.ClassifierVerdict, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return degradedVerdict("classifier unavailable"), nil
	}

	userContent := "TEXT: " + text
	if recentContext != "" {
		userContent = "RECENT: " + recentContext + "\n" + userContent
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userContent},
		},
		"temperature":     0,
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return domain.ClassifierVerdict{}, fmt.Errorf("marshal classifier payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ClassifierVerdict{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.warn("classifier request failed", err)
		return degradedVerdict("classifier error"), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.warn("classifier returned error status", fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(payload))))
		return degradedVerdict("classifier error"), nil
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		c.warn("classifier response undecodable", err)
		return degradedVerdict("classifier error"), nil
	}
	if len(completion.Choices) == 0 {
		return degradedVerdict("classifier error"), nil
	}

	return parseVerdict(completion.Choices[0].Message.Content), nil
}

func (c *GroqClassifier) warn(msg string, err error) {
	if c.logger != nil {
		c.logger.Warn(msg, "error", err)
	}
}

// rawVerdict tolerates the loosely-shaped model output; every field is
// optional and substituted with a documented default.
type rawVerdict struct {
	Relevant        *bool    `json:"relevant"`
	Score           *float64 `json:"score"`
	Reason          string   `json:"reason"`
	SentimentType   string   `json:"sentiment_type"`
	LogisticsStatus string   `json:"logistics_status"`
	LocationName    string   `json:"location_name"`
	Lat             float64  `json:"lat"`
	Lon             float64  `json:"lon"`
}

func parseVerdict(content string) domain.ClassifierVerdict {
	var raw rawVerdict
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return degradedVerdict("classifier error")
	}

	if raw.Relevant != nil && !*raw.Relevant {
		return domain.ClassifierVerdict{Valid: false, Reason: "classifier rejected"}
	}

	score := 0
	if raw.Score != nil {
		score = int(*raw.Score)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	reason := strings.TrimSpace(raw.Reason)
	if reason == "" {
		reason = "AI"
	}

	return domain.ClassifierVerdict{
		Valid:        true,
		Score:        score,
		Reason:       reason,
		Sentiment:    normalizeSentiment(raw.SentimentType),
		Logistics:    normalizeLogistics(raw.LogisticsStatus),
		LocationName: strings.TrimSpace(raw.LocationName),
		Location:     domain.GeoPoint{Lat: raw.Lat, Lon: raw.Lon},
	}
}

func degradedVerdict(reason string) domain.ClassifierVerdict {
	return domain.ClassifierVerdict{
		Valid:     true,
		Score:     0,
		Reason:    reason,
		Sentiment: domain.SentimentRisk,
		Logistics: domain.LogisticsClear,
	}
}

func normalizeSentiment(value string) domain.Sentiment {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "OPPORTUNITY":
		return domain.SentimentOpportunity
	default:
		return domain.SentimentRisk
	}
}

func normalizeLogistics(value string) domain.LogisticsImpact {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch normalized {
	case string(domain.LogisticsPotentialDelay):
		return domain.LogisticsPotentialDelay
	case string(domain.LogisticsDisrupted):
		return domain.LogisticsDisrupted
	case string(domain.LogisticsBoost):
		return domain.LogisticsBoost
	default:
		return domain.LogisticsClear
	}
}
