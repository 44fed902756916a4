package geo

import (
	"testing"

	"sentinlk/internal/domain"
)

func TestResolveCaseInsensitive(t *testing.T) {
	t.Parallel()

	g := NewGazetteer()

	point, ok := g.Resolve("  Kandy ")
	if !ok {
		t.Fatal("expected Kandy to resolve")
	}
	if point != (domain.GeoPoint{Lat: 7.291, Lon: 80.636}) {
		t.Fatalf("unexpected coordinates: %+v", point)
	}

	if _, ok := g.Resolve("Atlantis"); ok {
		t.Fatal("unknown places must not resolve")
	}
}

func TestScanTextPrefersLongestName(t *testing.T) {
	t.Parallel()

	g := NewGazetteer()

	point, ok := g.ScanText("Landslide blocks the road to Nuwara Eliya this morning")
	if !ok {
		t.Fatal("expected a match")
	}
	if point != (domain.GeoPoint{Lat: 6.949, Lon: 80.789}) {
		t.Fatalf("expected Nuwara Eliya, got %+v", point)
	}
}

func TestScanTextNoMatch(t *testing.T) {
	t.Parallel()

	g := NewGazetteer()
	if _, ok := g.ScanText("nothing geographic here"); ok {
		t.Fatal("expected no match")
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	g := NewGazetteer()
	if g.Fallback() != (domain.GeoPoint{Lat: 6.927, Lon: 79.861}) {
		t.Fatalf("unexpected fallback: %+v", g.Fallback())
	}
}
