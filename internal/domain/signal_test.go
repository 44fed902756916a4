package domain

import (
	"testing"
	"time"
)

func TestVectorsRoundTrip(t *testing.T) {
	t.Parallel()

	original := Vectors{
		Lat:             6.927,
		Lon:             79.861,
		LogisticsImpact: LogisticsPotentialDelay,
		SentimentType:   SentimentRisk,
	}

	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded, err := DecodeVectors(encoded)
	if err != nil {
		t.Fatalf("DecodeVectors error: %v", err)
	}

	if decoded != original {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestDecodeVectorsMalformed(t *testing.T) {
	t.Parallel()

	if _, err := DecodeVectors("{not json"); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestCandidateItemText(t *testing.T) {
	t.Parallel()

	item := CandidateItem{Title: "headline", PublishedAt: time.Now()}
	if item.Text() != "headline" {
		t.Fatalf("expected title fallback, got %q", item.Text())
	}

	item.FullText = "the full story"
	if item.Text() != "the full story" {
		t.Fatalf("expected full text, got %q", item.Text())
	}
}
