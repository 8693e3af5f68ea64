package gateway

import (
	"net/http"
	"sync/atomic"
)

// Counters tracks gateway-level request counts with atomics.
type Counters struct {
	requests     atomic.Int64
	authFailures atomic.Int64
}

// Snapshot returns a point-in-time view of the counters.
func (c *Counters) Snapshot() CountersSnapshot {
	return CountersSnapshot{
		Requests:     c.requests.Load(),
		AuthFailures: c.authFailures.Load(),
	}
}

// CountersSnapshot is a serializable view of Counters.
type CountersSnapshot struct {
	Requests     int64 `json:"requests"`
	AuthFailures int64 `json:"auth_failures"`
}

func (g *Gateway) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.counters.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}
