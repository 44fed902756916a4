package memory

import "sync"

// Entry is a (text, vector) pair held in the novelty window.
type Entry struct {
	Text   string
	Vector []float32
}

// EmbeddingCache keeps a bounded recency window of embeddings for
// near-duplicate detection. Oldest entries are evicted first once the
// capacity is exceeded. Safe for concurrent use: scoring fans out onto
// goroutines within a cycle.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

// NewEmbeddingCache builds an empty cache; capacity must be positive.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &EmbeddingCache{capacity: capacity}
}

// Append adds an entry, evicting the oldest when the window is full.
func (c *EmbeddingCache) Append(text string, vector []float32) {
	if vector == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, Entry{Text: text, Vector: vector})
	if len(c.entries) > c.capacity {
		c.entries = c.entries[len(c.entries)-c.capacity:]
	}
}

// Snapshot returns a copy of the current window, oldest first.
func (c *EmbeddingCache) Snapshot() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// RecentTexts returns up to n of the newest cached texts, oldest first.
func (c *EmbeddingCache) RecentTexts(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > len(c.entries) {
		n = len(c.entries)
	}

	out := make([]string, 0, n)
	for _, e := range c.entries[len(c.entries)-n:] {
		out = append(out, e.Text)
	}
	return out
}

// Len reports the number of cached entries.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SeenLinks is the process-local memory of links already persisted or
// discarded this run. It grows monotonically until restart.
type SeenLinks struct {
	mu    sync.Mutex
	links map[string]struct{}
}

// NewSeenLinks builds an empty set.
func NewSeenLinks() *SeenLinks {
	return &SeenLinks{links: map[string]struct{}{}}
}

// Add marks a single link as seen.
func (s *SeenLinks) Add(link string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link] = struct{}{}
}

// AddAll marks every link in the batch as seen.
func (s *SeenLinks) AddAll(links []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, link := range links {
		s.links[link] = struct{}{}
	}
}

// Has reports whether the link was already processed this run.
func (s *SeenLinks) Has(link string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.links[link]
	return ok
}

// Len reports the set size.
func (s *SeenLinks) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}
