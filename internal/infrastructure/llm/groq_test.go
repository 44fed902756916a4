package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sentinlk/internal/config"
	"sentinlk/internal/domain"
)

func completionBody(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return body
}

func TestClassifyUnconfiguredDegrades(t *testing.T) {
	t.Parallel()

	classifier := NewGroqClassifier(config.ClassifierConfig{}, nil)

	verdict, err := classifier.Classify(context.Background(), "some text", "")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if !verdict.Valid || verdict.Score != 0 {
		t.Fatalf("expected valid zero-score verdict, got %+v", verdict)
	}
	if verdict.Reason != "classifier unavailable" {
		t.Fatalf("unexpected reason: %s", verdict.Reason)
	}
}

func TestClassifyParsesVerdict(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write(completionBody(`{
			"relevant": true,
			"score": 85,
			"reason": "port strike escalating",
			"sentiment_type": "RISK",
			"logistics_status": "POTENTIAL DELAY",
			"location_name": "Colombo",
			"lat": 6.9, "lon": 79.8
		}`))
	}))
	defer server.Close()

	classifier := NewGroqClassifier(config.ClassifierConfig{
		Endpoint: server.URL,
		Model:    "llama-3.3-70b-versatile",
		APIKey:   "test-key",
	}, nil)

	verdict, err := classifier.Classify(context.Background(), "port strike", "recent context")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}

	if !verdict.Valid {
		t.Fatal("expected valid verdict")
	}
	if verdict.Score != 85 {
		t.Fatalf("expected score 85, got %d", verdict.Score)
	}
	if verdict.Logistics != domain.LogisticsPotentialDelay {
		t.Fatalf("expected normalized POTENTIAL_DELAY, got %s", verdict.Logistics)
	}
	if verdict.LocationName != "Colombo" {
		t.Fatalf("unexpected location name: %s", verdict.LocationName)
	}
	if verdict.Location.IsZero() {
		t.Fatal("expected coordinates from the model")
	}
}

func TestClassifyRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(completionBody(`{"relevant": false, "reason": "celebrity gossip"}`))
	}))
	defer server.Close()

	classifier := NewGroqClassifier(config.ClassifierConfig{
		Endpoint: server.URL, Model: "m", APIKey: "k",
	}, nil)

	verdict, err := classifier.Classify(context.Background(), "gossip", "")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if verdict.Valid {
		t.Fatal("expected rejection verdict")
	}
}

func TestClassifyServerErrorDegrades(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	classifier := NewGroqClassifier(config.ClassifierConfig{
		Endpoint: server.URL, Model: "m", APIKey: "k",
	}, nil)

	verdict, err := classifier.Classify(context.Background(), "anything", "")
	if err != nil {
		t.Fatalf("Classify must not surface transport errors, got %v", err)
	}
	if !verdict.Valid || verdict.Score != 0 || verdict.Reason != "classifier error" {
		t.Fatalf("expected degraded verdict, got %+v", verdict)
	}
}

func TestParseVerdictDefaults(t *testing.T) {
	t.Parallel()

	verdict := parseVerdict(`{}`)
	if !verdict.Valid {
		t.Fatal("missing relevant field must default to valid")
	}
	if verdict.Score != 0 {
		t.Fatalf("expected default score 0, got %d", verdict.Score)
	}
	if verdict.Sentiment != domain.SentimentRisk {
		t.Fatalf("expected default RISK, got %s", verdict.Sentiment)
	}
	if verdict.Logistics != domain.LogisticsClear {
		t.Fatalf("expected default CLEAR, got %s", verdict.Logistics)
	}
}

func TestParseVerdictClampsScore(t *testing.T) {
	t.Parallel()

	if got := parseVerdict(`{"score": 250}`).Score; got != 100 {
		t.Fatalf("expected clamp to 100, got %d", got)
	}
	if got := parseVerdict(`{"score": -5}`).Score; got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestParseVerdictMalformedContent(t *testing.T) {
	t.Parallel()

	verdict := parseVerdict("not json at all")
	if !verdict.Valid || verdict.Score != 0 {
		t.Fatalf("malformed content must degrade, got %+v", verdict)
	}
}
