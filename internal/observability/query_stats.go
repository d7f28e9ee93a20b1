// Package observability records query timings for the benchmark harness:
// an in-process sample store and Prometheus latency histograms.
package observability

import (
	"sort"
	"sync"
	"time"
)

// QueryStats collects timed runs per query. It is safe for concurrent use.
type QueryStats struct {
	mu      sync.RWMutex
	queries map[string]*QueryTiming
}

// QueryTiming holds every recorded run of one query.
type QueryTiming struct {
	Query    string
	Samples  []time.Duration
	Rows     int
	Failures int64
	LastSeen time.Time
}

// Total returns the sum of all samples.
func (t QueryTiming) Total() time.Duration {
	var sum time.Duration
	for _, s := range t.Samples {
		sum += s
	}
	return sum
}

// NewQueryStats creates an empty sample store.
func NewQueryStats() *QueryStats {
	return &QueryStats{queries: make(map[string]*QueryTiming)}
}

// RecordRun records one successful run of query returning rows rows.
func (q *QueryStats) RecordRun(query string, elapsed time.Duration, rows int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t := q.timing(query)
	t.Samples = append(t.Samples, elapsed)
	t.Rows = rows
	t.LastSeen = time.Now()
}

// RecordFailure records a failed run of query.
func (q *QueryStats) RecordFailure(query string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t := q.timing(query)
	t.Failures++
	t.LastSeen = time.Now()
}

// must be called with lock held
func (q *QueryStats) timing(query string) *QueryTiming {
	t, ok := q.queries[query]
	if !ok {
		t = &QueryTiming{Query: query}
		q.queries[query] = t
	}
	return t
}

// Get returns a copy of the timings of query.
func (q *QueryStats) Get(query string) (QueryTiming, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	t, ok := q.queries[query]
	if !ok {
		return QueryTiming{}, false
	}
	return copyTiming(t), true
}

// Slowest returns the n queries with the largest total time, slowest first.
func (q *QueryStats) Slowest(n int) []QueryTiming {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if n <= 0 || len(q.queries) == 0 {
		return []QueryTiming{}
	}

	out := make([]QueryTiming, 0, len(q.queries))
	for _, t := range q.queries {
		out = append(out, copyTiming(t))
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Total(), out[j].Total()
		if ti != tj {
			return ti > tj
		}
		return out[i].Query < out[j].Query
	})

	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// Reset drops every recorded run.
func (q *QueryStats) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = make(map[string]*QueryTiming)
}

func copyTiming(t *QueryTiming) QueryTiming {
	c := *t
	c.Samples = append([]time.Duration(nil), t.Samples...)
	return c
}
