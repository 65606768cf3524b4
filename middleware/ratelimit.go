// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter hands each client IP its own token bucket
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	retryAfter string

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per client with bursts of
// twice that
func NewRateLimiter(rps float64) *RateLimiter {
	// A non-positive or NaN rate never refills; each client gets one request.
	limit := rate.Limit(rps)
	switch {
	case !(rps > 0):
		limit = 0
	case math.IsInf(rps, 1):
		limit = rate.Inf
	}
	burst := 1
	if rps*2 > 1 {
		burst = int(math.Ceil(math.Min(rps*2, math.MaxInt32)))
	}
	return &RateLimiter{
		limit:      limit,
		burst:      burst,
		retryAfter: strconv.Itoa(retryAfterSeconds(rps)),
		visitors:   make(map[string]*visitor),
	}
}

// maxRetryAfter caps the hint sent to clients of a limiter that never refills
const maxRetryAfter = 3600

func retryAfterSeconds(rps float64) int {
	if !(rps > 0) {
		return maxRetryAfter
	}
	secs := math.Ceil(1 / rps)
	switch {
	case secs > maxRetryAfter:
		return maxRetryAfter
	case secs < 1:
		return 1
	}
	return int(secs)
}

func (rl *RateLimiter) limiterFor(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Allow reports whether a request from ip may proceed now
func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()
	return rl.limiterFor(ip, now).AllowN(now, 1)
}

// Wrap rejects requests over the client's budget with 429
func (rl *RateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			w.Header().Set("Retry-After", rl.retryAfter)
			ErrorResponse(w, http.StatusTooManyRequests, "too many commands, slow down")
			return
		}
		next(w, r)
	}
}

// Sweep forgets clients idle for longer than maxIdle
func (rl *RateLimiter) Sweep(now time.Time, maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > maxIdle {
			delete(rl.visitors, ip)
			removed++
		}
	}
	return removed
}

// RunCleanup sweeps idle clients every interval until ctx is done
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.Sweep(now, maxIdle)
		}
	}
}
