package search

import (
	"context"
	"sync"

	"kaleido/internal/client"
)

// SummaryAPI is the slice of the backend the cache needs. Satisfied by
// *client.ProductsClient.
type SummaryAPI interface {
	Summarize(ctx context.Context, ids []int, length int) ([]client.ProductSummary, error)
}

// SummaryCache holds generated product summaries keyed by product id so
// repeated renders of the same products do not re-request them. The cache is
// capped: once full, the oldest entries are dropped. It is owned by the
// component composing product listings and dies with it.
type SummaryCache struct {
	api    SummaryAPI
	cap    int
	length int

	mu        sync.Mutex
	summaries map[int]string
	order     []int // insertion order, oldest first
}

// NewSummaryCache builds a cache that requests summaries of the given word
// length and keeps at most cap entries.
func NewSummaryCache(api SummaryAPI, cap, length int) *SummaryCache {
	if cap <= 0 {
		cap = 512
	}
	if length <= 0 {
		length = 25
	}
	return &SummaryCache{
		api:       api,
		cap:       cap,
		length:    length,
		summaries: make(map[int]string),
	}
}

// Ensure fetches summaries for the ids not yet cached, merges them in, and
// returns the summaries for all requested ids that are now known.
func (c *SummaryCache) Ensure(ctx context.Context, ids []int) (map[int]string, error) {
	c.mu.Lock()
	var missing []int
	for _, id := range ids {
		if _, ok := c.summaries[id]; !ok {
			missing = append(missing, id)
		}
	}
	c.mu.Unlock()

	if len(missing) > 0 {
		fetched, err := c.api.Summarize(ctx, missing, c.length)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		for _, s := range fetched {
			c.insert(s.ID, s.Summary)
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	result := make(map[int]string, len(ids))
	for _, id := range ids {
		if summary, ok := c.summaries[id]; ok {
			result[id] = summary
		}
	}
	return result, nil
}

// Get returns the cached summary for a product, if known.
func (c *SummaryCache) Get(id int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	summary, ok := c.summaries[id]
	return summary, ok
}

// Len returns the number of cached summaries.
func (c *SummaryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.summaries)
}

// insert adds or refreshes one entry, evicting the oldest when over cap.
// Caller holds mu.
func (c *SummaryCache) insert(id int, summary string) {
	if _, ok := c.summaries[id]; !ok {
		for len(c.summaries) >= c.cap && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.summaries, oldest)
		}
		c.order = append(c.order, id)
	}
	c.summaries[id] = summary
}
