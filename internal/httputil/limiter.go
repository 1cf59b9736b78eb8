package httputil

import "sync"

// Limiter caps the number of in-flight operations per client and in total.
// Searches hold a worker pool for seconds at a time, so a single client
// must not be able to occupy all of them.
type Limiter struct {
	mu        sync.Mutex
	active    map[string]int
	total     int
	perClient int
	maxTotal  int
}

// NewLimiter creates a Limiter. Non-positive limits are treated as 1.
func NewLimiter(perClient, maxTotal int) *Limiter {
	return &Limiter{
		active:    make(map[string]int),
		perClient: max(perClient, 1),
		maxTotal:  max(maxTotal, 1),
	}
}

// Acquire reserves a slot for client and reports whether one was free.
// Every successful Acquire must be paired with a Release.
func (l *Limiter) Acquire(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total >= l.maxTotal || l.active[client] >= l.perClient {
		return false
	}
	l.active[client]++
	l.total++
	return true
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release(client string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.active[client]--
	l.total--
	if l.active[client] <= 0 {
		delete(l.active, client)
	}
}

// Active returns the number of slots held by client.
func (l *Limiter) Active(client string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active[client]
}

// Total returns the number of slots held by all clients.
func (l *Limiter) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}
