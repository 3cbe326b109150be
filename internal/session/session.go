// Package session owns the access/refresh token pair and the decision of
// when to refresh it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vmtran/tourbook/internal/errs"
	"github.com/vmtran/tourbook/internal/model"
	"github.com/vmtran/tourbook/internal/secstore"
)

// refreshAhead is how long before expiry a token is already treated as
// needing a refresh.
const refreshAhead = 5 * time.Minute

// RefreshFunc exchanges a refresh token for a new token envelope. Provided
// by the gateway wiring so this package stays free of HTTP concerns.
type RefreshFunc func(ctx context.Context, refreshToken string) (model.TokenEnvelope, error)

// Manager holds the current session and performs refreshes. It is the only
// writer of session state; everything else reads snapshots.
type Manager struct {
	store   secstore.Store
	refresh RefreshFunc
	log     *zap.Logger
	now     func() time.Time

	mu  sync.RWMutex
	cur model.Session

	sf singleflight.Group

	onLogout func()
}

// NewManager constructs a Manager. refresh may be set later via SetRefreshFunc
// when construction order requires it.
func NewManager(store secstore.Store, refresh RefreshFunc, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, refresh: refresh, log: log, now: time.Now}
}

// SetRefreshFunc installs the refresh call. Must be called before any
// request traffic when the constructor was given nil.
func (m *Manager) SetRefreshFunc(fn RefreshFunc) { m.refresh = fn }

// OnLogout registers a hook invoked after the session has been cleared
// (e.g. to route the UI back to an unauthenticated entry point).
func (m *Manager) OnLogout(fn func()) { m.onLogout = fn }

// Session returns a snapshot of the current session.
func (m *Manager) Session() model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// AccessToken returns the current access token, possibly empty or expired.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur.AccessToken
}

// SetTokens installs a token envelope from a login or refresh response and
// persists the pair. A malformed envelope is logged and ignored, leaving
// the previous session untouched; upstream data is not trusted to be well
// formed.
func (m *Manager) SetTokens(env model.TokenEnvelope) {
	if !env.Valid() {
		m.log.Error("ignoring malformed token envelope")
		return
	}
	exp := m.now().Add(time.Duration(env.ExpiresIn) * time.Second)

	if err := m.store.Save(secstore.KeyAccessToken, env.AccessToken); err != nil {
		m.log.Warn("persist access token", zap.Error(err))
	}
	if err := m.store.Save(secstore.KeyRefreshToken, env.RefreshToken); err != nil {
		m.log.Warn("persist refresh token", zap.Error(err))
	}

	m.mu.Lock()
	m.cur = model.Session{
		AccessToken:  env.AccessToken,
		RefreshToken: env.RefreshToken,
		Role:         env.Role,
		ExpiresAt:    exp,
	}
	m.mu.Unlock()

	m.log.Info("session established",
		zap.String("role", env.Role),
		zap.Time("expiresAt", exp),
	)
}

// IsAuthenticated reports whether the access token is valid right now.
// It never triggers a refresh as a side effect; callers that need a usable
// token call RefreshIfNeeded and act on its result.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur.AccessToken != "" && m.cur.ExpiresAt.After(m.now())
}

// RefreshIfNeeded reports whether the caller now holds a valid token,
// refreshing it over the network when it is expired or within refreshAhead
// of expiry. Concurrent callers share a single in-flight refresh call and
// all receive that flight's result.
func (m *Manager) RefreshIfNeeded(ctx context.Context) bool {
	m.mu.RLock()
	cur := m.cur
	m.mu.RUnlock()

	if cur.RefreshToken == "" {
		return false
	}
	if cur.AccessToken != "" && cur.ExpiresAt.After(m.now().Add(refreshAhead)) {
		return true
	}

	v, _, _ := m.sf.Do("refresh", func() (any, error) {
		return m.doRefresh(ctx), nil
	})
	ok, _ := v.(bool)
	return ok
}

// doRefresh runs inside the single-flight group. State is re-checked first
// so a caller queued behind a completed flight does not start another one.
func (m *Manager) doRefresh(ctx context.Context) bool {
	m.mu.RLock()
	cur := m.cur
	m.mu.RUnlock()

	if cur.RefreshToken == "" {
		return false
	}
	if cur.AccessToken != "" && cur.ExpiresAt.After(m.now().Add(refreshAhead)) {
		return true
	}

	env, err := m.refresh(ctx, cur.RefreshToken)
	if errors.Is(err, errs.ErrMalformedResponse) {
		// Malformed 2xx body: keep prior state rather than crash the session,
		// but the caller still does not hold a valid token.
		m.log.Error("token refresh returned malformed envelope", zap.Error(err))
		return false
	}
	if err != nil {
		// A failed refresh is terminal: no second attempt, session dropped.
		m.log.Warn("token refresh failed", zap.Error(err))
		m.Logout()
		return false
	}
	if !env.Valid() {
		m.log.Error("token refresh returned malformed envelope")
		return false
	}
	m.SetTokens(env)
	return true
}

// Logout clears the in-memory session, deletes the persisted token pair
// and fires the logout hook. Always transitions to the anonymous state.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.cur = model.Session{}
	m.mu.Unlock()

	if err := m.store.Delete(secstore.KeyAccessToken); err != nil {
		m.log.Warn("delete persisted access token", zap.Error(err))
	}
	if err := m.store.Delete(secstore.KeyRefreshToken); err != nil {
		m.log.Warn("delete persisted refresh token", zap.Error(err))
	}
	m.log.Info("session cleared")

	if m.onLogout != nil {
		m.onLogout()
	}
}

// Restore loads a persisted token pair at startup and reports whether a
// valid session resulted. The access token's expiry and role are recovered
// from its JWT claims instead of being guessed; an unparsable token simply
// forces an immediate refresh.
func (m *Manager) Restore(ctx context.Context) bool {
	access, err := m.store.Get(secstore.KeyAccessToken)
	if err != nil {
		return false
	}
	refresh, err := m.store.Get(secstore.KeyRefreshToken)
	if err != nil {
		return false
	}

	exp, role := claimsOf(access)

	m.mu.Lock()
	m.cur = model.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         role,
		ExpiresAt:    exp,
	}
	m.mu.Unlock()

	return m.RefreshIfNeeded(ctx)
}

// claimsOf extracts exp and role from a JWT without verifying its
// signature; the server remains the authority, this only avoids a
// needless refresh for a token that is still fresh.
func claimsOf(token string) (time.Time, string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, ""
	}
	var exp time.Time
	if t, err := claims.GetExpirationTime(); err == nil && t != nil {
		exp = t.Time
	}
	role, _ := claims["role"].(string)
	return exp, role
}
