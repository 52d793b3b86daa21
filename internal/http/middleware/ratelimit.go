package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Policy is the budget of one limited action: at most Limit calls per
// subject within each Window.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

var (
	// JoinRequests is keyed by join program and user.
	JoinRequests = Policy{Name: "join", Limit: 3, Window: time.Minute}
	// Responses is keyed by user.
	Responses = Policy{Name: "response", Limit: 10, Window: time.Minute}
	// Logins is keyed by client IP.
	Logins = Policy{Name: "login", Limit: 10, Window: time.Minute}
)

// Key joins the policy name and subject parts. An empty subject yields "".
func (p Policy) Key(subject ...string) string {
	for _, part := range subject {
		if part == "" {
			return ""
		}
	}
	if len(subject) == 0 {
		return ""
	}
	return p.Name + ":" + strings.Join(subject, ":")
}

func (p Policy) disabled() bool {
	return p.Limit <= 0 || p.Window <= 0
}

type Limiter interface {
	Allow(ctx context.Context, policy Policy, subject ...string) bool
}

// RateLimiter is a fixed-window counter kept in process memory.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (r *RateLimiter) Allow(_ context.Context, policy Policy, subject ...string) bool {
	key := policy.Key(subject...)
	if key == "" || policy.disabled() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	bucket, ok := r.buckets[key]
	if !ok || !now.Before(bucket.windowEnd) {
		r.sweep(now)
		r.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(policy.Window)}
		return true
	}
	if bucket.count >= policy.Limit {
		return false
	}
	bucket.count++
	return true
}

// sweep drops expired buckets once the map grows.
func (r *RateLimiter) sweep(now time.Time) {
	if len(r.buckets) < 1024 {
		return
	}
	for key, bucket := range r.buckets {
		if !now.Before(bucket.windowEnd) {
			delete(r.buckets, key)
		}
	}
}

func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
