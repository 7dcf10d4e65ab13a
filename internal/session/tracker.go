// Package session resolves who is signed in for a request. The Tracker asks
// the backend once per access token, caches the answer and drops it again
// when the backend reports an auth-state change.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ghazighazi3030/blogueee/internal/backend"
	"github.com/ghazighazi3030/blogueee/internal/models"
	"github.com/ghazighazi3030/blogueee/internal/query"
)

// KeyPrefix is the query cache prefix of resolved sessions.
var KeyPrefix = query.Key{"session"}

// State is the resolved auth state of one request. Loading is set when the
// backend could not answer; Session and User are nil then.
type State struct {
	Session *models.Session
	User    *models.Profile
	Loading bool
}

// SignedIn reports whether a live session was resolved.
func (s State) SignedIn() bool { return !s.Loading && s.Session != nil }

// Tracker resolves sessions through the query cache and keeps the cache in
// step with the backend's auth events between Start and Close.
type Tracker struct {
	auth    backend.AuthAPI
	cache   *query.Cache
	timeout time.Duration
	now     func() time.Time

	mu  sync.Mutex
	sub backend.Subscription
}

// NewTracker returns a tracker that gives the backend at most timeout to
// answer a session lookup.
func NewTracker(auth backend.AuthAPI, cache *query.Cache, timeout time.Duration) *Tracker {
	return &Tracker{auth: auth, cache: cache, timeout: timeout, now: time.Now}
}

// Start subscribes to auth-state changes. Calling Start twice keeps the
// first subscription.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sub != nil {
		return
	}
	t.sub = t.auth.OnAuthStateChange(t.handle)
}

// Close cancels the subscription. It is safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func tokenKey(token string) query.Key { return query.Key{"session", token} }

func (t *Tracker) handle(ev backend.AuthEvent) {
	switch ev.Type {
	case backend.EventSignedIn, backend.EventSignedOut, backend.EventTokenRefreshed:
		if ev.AccessToken != "" {
			t.cache.Invalidate(tokenKey(ev.AccessToken))
			return
		}
		t.cache.Invalidate(KeyPrefix)
	case backend.EventUserUpdated, backend.EventUserDeleted:
		// Profiles are embedded in every cached session.
		t.cache.Invalidate(KeyPrefix)
	}
}

// Resolve returns the auth state for token. An empty token is signed out
// without asking the backend.
func (t *Tracker) Resolve(ctx context.Context, token string) State {
	if token == "" {
		return State{}
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	sess, err := query.Fetch(ctx, t.cache, tokenKey(token), func(ctx context.Context) (*models.Session, error) {
		return t.auth.GetSession(ctx, token)
	})
	if err != nil {
		log.Printf("session: resolve failed: %v", err)
		return State{Loading: true}
	}
	if sess.Expired(t.now()) {
		t.cache.Invalidate(tokenKey(token))
		return State{}
	}
	return State{Session: sess, User: &sess.User}
}

type contextKey struct{}

// NewContext returns ctx carrying st.
func NewContext(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the state stored by NewContext, or a signed-out state.
func FromContext(ctx context.Context) State {
	st, _ := ctx.Value(contextKey{}).(State)
	return st
}
