package backend

import (
	"sync"

	"github.com/ghazighazi3030/blogueee/internal/models"
)

// AuthEventType names an auth-state change.
type AuthEventType string

const (
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEventType = "USER_UPDATED"
	EventUserDeleted    AuthEventType = "USER_DELETED"
)

// AuthEvent is delivered to OnAuthStateChange subscribers. Session is nil for
// sign-out and user events; AccessToken identifies the affected session when
// known.
type AuthEvent struct {
	Type        AuthEventType
	AccessToken string
	UserID      string
	Session     *models.Session
}

// Subscription is returned by OnAuthStateChange.
type Subscription interface {
	Unsubscribe()
}

// Notifier fans auth events out to subscribers. Adapters embed one and call
// Publish after each auth-affecting call succeeds. The zero value is ready to
// use.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(AuthEvent)
}

type subscription struct {
	n    *Notifier
	id   int
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.n.mu.Lock()
		delete(s.n.subs, s.id)
		s.n.mu.Unlock()
	})
}

// OnAuthStateChange registers fn until the returned subscription is
// cancelled.
func (n *Notifier) OnAuthStateChange(fn func(AuthEvent)) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(AuthEvent))
	}
	n.nextID++
	n.subs[n.nextID] = fn
	return &subscription{n: n, id: n.nextID}
}

// Publish delivers ev synchronously to every current subscriber.
func (n *Notifier) Publish(ev AuthEvent) {
	n.mu.RLock()
	fns := make([]func(AuthEvent), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Subscribers returns the number of live subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
