package geo

import (
	"strings"

	"sentinlk/internal/domain"
	"sentinlk/internal/ports"
)

// colomboFallback is used when nothing in a signal resolves to a place.
var colomboFallback = domain.GeoPoint{Lat: 6.927, Lon: 79.861}

// locations is a static gazetteer of Sri Lankan places relevant to the
// monitored feeds, keyed by lower-cased name.
var locations = map[string]domain.GeoPoint{
	"colombo":      {Lat: 6.927, Lon: 79.861},
	"kandy":        {Lat: 7.291, Lon: 80.636},
	"galle":        {Lat: 6.053, Lon: 80.221},
	"jaffna":       {Lat: 9.665, Lon: 80.009},
	"negombo":      {Lat: 7.209, Lon: 79.838},
	"katunayake":   {Lat: 7.170, Lon: 79.884},
	"mattala":      {Lat: 6.284, Lon: 81.124},
	"hambantota":   {Lat: 6.124, Lon: 81.101},
	"trincomalee":  {Lat: 8.571, Lon: 81.233},
	"batticaloa":   {Lat: 7.717, Lon: 81.700},
	"anuradhapura": {Lat: 8.311, Lon: 80.404},
	"ratnapura":    {Lat: 6.683, Lon: 80.400},
	"kurunegala":   {Lat: 7.487, Lon: 80.365},
	"norochcholai": {Lat: 8.043, Lon: 79.725},
	"matara":       {Lat: 5.949, Lon: 80.535},
	"nuwara eliya": {Lat: 6.949, Lon: 80.789},
	"puttalam":     {Lat: 8.036, Lon: 79.828},
	"kalutara":     {Lat: 6.585, Lon: 79.960},
}

// Gazetteer resolves location names and free-text mentions to coordinates.
type Gazetteer struct{}

var _ ports.Gazetteer = (*Gazetteer)(nil)

// NewGazetteer returns the static lookup table.
func NewGazetteer() *Gazetteer {
	return &Gazetteer{}
}

// Resolve looks up an exact (case-insensitive) location name.
func (g *Gazetteer) Resolve(name string) (domain.GeoPoint, bool) {
	point, ok := locations[strings.ToLower(strings.TrimSpace(name))]
	return point, ok
}

// ScanText returns the coordinate of the first known place mentioned in the
// text, scanning longest names first so "nuwara eliya" wins over substrings.
func (g *Gazetteer) ScanText(text string) (domain.GeoPoint, bool) {
	lower := strings.ToLower(text)
	bestLen := 0
	var best domain.GeoPoint
	for name, point := range locations {
		if strings.Contains(lower, name) && len(name) > bestLen {
			bestLen = len(name)
			best = point
		}
	}
	return best, bestLen > 0
}

// Fallback is the default coordinate for unresolvable signals.
func (g *Gazetteer) Fallback() domain.GeoPoint {
	return colomboFallback
}
