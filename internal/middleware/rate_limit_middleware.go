package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"
)

// clientState is the request counter of one client IP.
type clientState struct {
	lastRequest  time.Time
	requestCount int
	mu           sync.Mutex
}

// RateLimiter caps the number of requests per client IP in a fixed window.
type RateLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	clients map[string]*clientState
}

// NewRateLimiter returns a limiter allowing max requests per window. Idle
// client entries are purged every window until ctx is cancelled.
func NewRateLimiter(ctx context.Context, max int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{max: max, window: window, clients: make(map[string]*clientState)}
	go rl.cleanup(ctx)
	return rl
}

// Allow records a request from ip and reports whether it is within the
// limit.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	state, exists := rl.clients[ip]
	if !exists {
		state = &clientState{}
		rl.clients[ip] = state
	}
	rl.mu.Unlock()

	state.mu.Lock()
	defer state.mu.Unlock()
	if time.Since(state.lastRequest) > rl.window {
		state.requestCount = 0
		state.lastRequest = time.Now()
	}
	state.requestCount++
	return state.requestCount <= rl.max
}

// Limit applies the limiter to POST requests; page views pass through.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.Allow(ip) {
			log.Printf("Rate limit exceeded for %s on %s", ip, r.URL.Path)
			if isAJAX(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{"error": "Too Many Requests"})
				return
			}
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanup drops clients idle for two windows.
func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, state := range rl.clients {
				state.mu.Lock()
				if time.Since(state.lastRequest) > 2*rl.window {
					delete(rl.clients, ip)
				}
				state.mu.Unlock()
			}
			rl.mu.Unlock()
		}
	}
}
