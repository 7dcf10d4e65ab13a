package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

const (
	accessTokenKey = "access_token"
	flashKey       = "flash"
	flashTypeKey   = "flash_type"
)

// NewManager returns the web session manager. The cookie only carries the
// opaque session id; the backend access token stays server-side.
func NewManager(lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = lifetime
	sm.Cookie.Name = "blog_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}

// SaveToken stores the access token after sign-in under a fresh session id.
func SaveToken(ctx context.Context, sm *scs.SessionManager, token string) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, accessTokenKey, token)
	return nil
}

// Token returns the stored access token, or "".
func Token(ctx context.Context, sm *scs.SessionManager) string {
	return sm.GetString(ctx, accessTokenKey)
}

// ClearToken forgets the access token and rotates the session id.
func ClearToken(ctx context.Context, sm *scs.SessionManager) error {
	sm.Remove(ctx, accessTokenKey)
	return sm.RenewToken(ctx)
}

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Type    string
	Message string
}

// PutFlash queues a notice for the next page.
func PutFlash(ctx context.Context, sm *scs.SessionManager, kind, msg string) {
	sm.Put(ctx, flashKey, msg)
	sm.Put(ctx, flashTypeKey, kind)
}

// PopFlash returns and clears the queued notice, or nil.
func PopFlash(ctx context.Context, sm *scs.SessionManager) *Flash {
	msg := sm.PopString(ctx, flashKey)
	if msg == "" {
		return nil
	}
	kind := sm.PopString(ctx, flashTypeKey)
	if kind == "" {
		kind = FlashInfo
	}
	return &Flash{Type: kind, Message: msg}
}
