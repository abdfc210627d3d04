package factcheck

import (
	"slices"
	"sync"
)

const (
	// DefaultCapacity is the history bound used when none is configured.
	DefaultCapacity = 100
	// DefaultDisputedCount is the number of groups TopDisputed callers ask for by default.
	DefaultDisputedCount = 5
)

// Aggregator stores verification results newest-first up to a fixed capacity.
// It is safe for concurrent use.
type Aggregator struct {
	mu       sync.RWMutex
	capacity int
	history  []VerificationResult
}

// NewAggregator returns an empty aggregator. Non-positive capacities fall back
// to DefaultCapacity.
func NewAggregator(capacity int) *Aggregator {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Aggregator{capacity: capacity, history: make([]VerificationResult, 0, capacity)}
}

// Record inserts result at the front of the history and evicts the oldest
// entries beyond capacity. Arrival order wins over timestamps.
func (a *Aggregator) Record(result VerificationResult) {
	entry := result.clone()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = slices.Insert(a.history, 0, entry)
	if len(a.history) > a.capacity {
		clear(a.history[a.capacity:])
		a.history = a.history[:a.capacity]
	}
}

// History returns a copy of the stored results, newest first.
func (a *Aggregator) History() []VerificationResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]VerificationResult, len(a.history))
	for i, result := range a.history {
		out[i] = result.clone()
	}
	return out
}

// ResultsInRange returns results with start <= Timestamp <= end in history order.
func (a *Aggregator) ResultsInRange(start, end float64) []VerificationResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]VerificationResult, 0)
	for _, result := range a.history {
		if result.Timestamp >= start && result.Timestamp <= end {
			out = append(out, result.clone())
		}
	}
	return out
}

// TopDisputed groups false and partially true claims by exact text and returns
// at most count groups ordered by descending occurrence. Ties keep the order in
// which each text was first seen walking the history newest-first.
func (a *Aggregator) TopDisputed(count int) []DisputedClaimGroup {
	groups := make([]DisputedClaimGroup, 0)
	if count <= 0 {
		return groups
	}

	a.mu.RLock()
	index := make(map[string]int)
	for _, result := range a.history {
		for _, claim := range result.Claims {
			if !claim.Verdict.Disputed() {
				continue
			}
			if i, ok := index[claim.Text]; ok {
				groups[i].Count++
				continue
			}
			index[claim.Text] = len(groups)
			groups = append(groups, DisputedClaimGroup{Claim: claim.clone(), Count: 1})
		}
	}
	a.mu.RUnlock()

	slices.SortStableFunc(groups, func(x, y DisputedClaimGroup) int {
		return y.Count - x.Count
	})
	if len(groups) > count {
		groups = groups[:count]
	}
	return groups
}

// Clear drops every stored result.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.history)
	a.history = a.history[:0]
}

// Len returns the number of stored results.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.history)
}

// Capacity returns the history bound.
func (a *Aggregator) Capacity() int {
	return a.capacity
}
