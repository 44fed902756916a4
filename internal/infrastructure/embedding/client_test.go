package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbedPostsTextsAndDecodesVectors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("unexpected auth header %q", got)
		}

		var payload struct {
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if len(payload.Texts) != 2 {
			t.Errorf("expected 2 texts, got %d", len(payload.Texts))
		}

		_ = json.NewEncoder(w).Encode(map[string][][]float32{
			"vectors": {{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	vectors, err := client.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vector payload: %v", vectors[1])
	}
}

func TestEmbedUnconfiguredEndpoint(t *testing.T) {
	t.Parallel()

	client := NewClient("", "")
	if _, err := client.Embed(context.Background(), []string{"text"}); err == nil {
		t.Fatal("expected error for unconfigured endpoint")
	}
}

func TestEmbedVectorCountMismatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][][]float32{
			"vectors": {{0.1}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.Embed(context.Background(), []string{"one", "two"}); err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestEmbedErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.Embed(context.Background(), []string{"one"}); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
