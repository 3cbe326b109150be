package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/vmtran/tourbook/internal/errs"
	"github.com/vmtran/tourbook/internal/model"
	"github.com/vmtran/tourbook/internal/secstore"
)

type fakeStore struct {
	mu sync.Mutex
	m  map[string]string

	saveErr error
}

var _ secstore.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore { return &fakeStore{m: map[string]string{}} }

func (f *fakeStore) Save(key, value string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = value
	return nil
}

func (f *fakeStore) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.m[key]
	if !ok {
		return "", errs.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, key)
	return nil
}

func envelope(access string) model.TokenEnvelope {
	return model.TokenEnvelope{
		TokenType:    "Bearer",
		AccessToken:  access,
		ExpiresIn:    3600,
		RefreshToken: "R-" + access,
		Role:         "Tourist",
	}
}

func TestSetTokens_Valid(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	m := NewManager(store, nil, zap.NewNop())

	m.SetTokens(envelope("A"))

	s := m.Session()
	if s.AccessToken != "A" || s.RefreshToken != "R-A" || s.Role != "Tourist" {
		t.Fatalf("session = %+v", s)
	}
	if s.ExpiresAt.IsZero() {
		t.Fatalf("expiresAt not set")
	}
	if got, _ := store.Get(secstore.KeyAccessToken); got != "A" {
		t.Fatalf("access token not persisted: %q", got)
	}
	if got, _ := store.Get(secstore.KeyRefreshToken); got != "R-A" {
		t.Fatalf("refresh token not persisted: %q", got)
	}
}

func TestSetTokens_MalformedIgnored(t *testing.T) {
	t.Parallel()
	m := NewManager(newFakeStore(), nil, zap.NewNop())
	m.SetTokens(envelope("A"))

	m.SetTokens(model.TokenEnvelope{AccessToken: "B"}) // no refresh token, no expiry

	if got := m.AccessToken(); got != "A" {
		t.Fatalf("malformed envelope replaced session: %q", got)
	}
}

func TestIsAuthenticated_SynchronousTruth(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	m := NewManager(newFakeStore(), func(context.Context, string) (model.TokenEnvelope, error) {
		calls.Add(1)
		return envelope("new"), nil
	}, zap.NewNop())

	if m.IsAuthenticated() {
		t.Fatalf("anonymous session reported authenticated")
	}

	m.SetTokens(envelope("A"))
	if !m.IsAuthenticated() {
		t.Fatalf("fresh session reported unauthenticated")
	}

	// Expire the token: IsAuthenticated must answer false and must not
	// kick off a refresh behind the caller's back.
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if m.IsAuthenticated() {
		t.Fatalf("expired session reported authenticated")
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("IsAuthenticated triggered %d refresh call(s)", n)
	}
}

func TestRefreshIfNeeded_NoRefreshToken(t *testing.T) {
	t.Parallel()
	m := NewManager(newFakeStore(), func(context.Context, string) (model.TokenEnvelope, error) {
		t.Fatalf("refresh must not be called")
		return model.TokenEnvelope{}, nil
	}, zap.NewNop())

	if m.RefreshIfNeeded(context.Background()) {
		t.Fatalf("want false with no refresh token")
	}
}

func TestRefreshIfNeeded_FreshTokenSkipsNetwork(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	m := NewManager(newFakeStore(), func(context.Context, string) (model.TokenEnvelope, error) {
		calls.Add(1)
		return envelope("new"), nil
	}, zap.NewNop())
	m.SetTokens(envelope("A")) // valid for 1h, well past the 5m threshold

	if !m.RefreshIfNeeded(context.Background()) {
		t.Fatalf("want true for fresh token")
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("fresh token still caused %d refresh call(s)", n)
	}
}

func TestRefreshIfNeeded_NearExpiryRefreshes(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	m := NewManager(newFakeStore(), func(_ context.Context, refreshToken string) (model.TokenEnvelope, error) {
		calls.Add(1)
		if refreshToken != "R-A" {
			t.Errorf("refresh token = %q, want R-A", refreshToken)
		}
		return envelope("new"), nil
	}, zap.NewNop())

	env := envelope("A")
	env.ExpiresIn = 60 // within the 5 minute window
	m.SetTokens(env)

	if !m.RefreshIfNeeded(context.Background()) {
		t.Fatalf("want true after successful refresh")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("refresh calls = %d, want 1", n)
	}
	if got := m.AccessToken(); got != "new" {
		t.Fatalf("access token = %q, want new", got)
	}
}

func TestRefreshIfNeeded_FailureIsTerminal(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	m := NewManager(store, func(context.Context, string) (model.TokenEnvelope, error) {
		return model.TokenEnvelope{}, fmt.Errorf("boom")
	}, zap.NewNop())

	env := envelope("A")
	env.ExpiresIn = 10
	m.SetTokens(env)

	var loggedOut bool
	m.OnLogout(func() { loggedOut = true })

	if m.RefreshIfNeeded(context.Background()) {
		t.Fatalf("want false on refresh failure")
	}
	s := m.Session()
	if s.AccessToken != "" || s.RefreshToken != "" || s.Role != "" || !s.ExpiresAt.IsZero() {
		t.Fatalf("session not cleared: %+v", s)
	}
	if _, err := store.Get(secstore.KeyAccessToken); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("persisted access token survived logout")
	}
	if _, err := store.Get(secstore.KeyRefreshToken); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("persisted refresh token survived logout")
	}
	if !loggedOut {
		t.Fatalf("logout hook not fired")
	}
}

func TestRefreshIfNeeded_MalformedKeepsState(t *testing.T) {
	t.Parallel()
	m := NewManager(newFakeStore(), func(context.Context, string) (model.TokenEnvelope, error) {
		return model.TokenEnvelope{}, fmt.Errorf("refresh: %w", errs.ErrMalformedResponse)
	}, zap.NewNop())

	env := envelope("A")
	env.ExpiresIn = 10
	m.SetTokens(env)

	if m.RefreshIfNeeded(context.Background()) {
		t.Fatalf("want false on malformed refresh response")
	}
	// State untouched: the old pair survives so a later attempt can retry.
	if got := m.Session().RefreshToken; got != "R-A" {
		t.Fatalf("refresh token dropped on malformed response: %q", got)
	}
}

func TestRefreshIfNeeded_SingleFlight(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	release := make(chan struct{})
	m := NewManager(newFakeStore(), func(context.Context, string) (model.TokenEnvelope, error) {
		calls.Add(1)
		<-release
		return envelope("new"), nil
	}, zap.NewNop())

	env := envelope("A")
	env.ExpiresIn = 10
	m.SetTokens(env)

	const n = 16
	results := make(chan bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.RefreshIfNeeded(context.Background())
		}()
	}
	// Let the callers pile up behind the in-flight refresh, then finish it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for ok := range results {
		if !ok {
			t.Fatalf("a concurrent caller missed the shared result")
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("network refresh calls = %d, want exactly 1", got)
	}
}

func signedToken(t *testing.T, exp time.Time, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"exp":  jwt.NewNumericDate(exp),
		"role": role,
	})
	s, err := tok.SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestRestore_FreshStoredToken(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	access := signedToken(t, time.Now().Add(time.Hour), "Tourist")
	_ = store.Save(secstore.KeyAccessToken, access)
	_ = store.Save(secstore.KeyRefreshToken, "R-stored")

	var calls atomic.Int32
	m := NewManager(store, func(context.Context, string) (model.TokenEnvelope, error) {
		calls.Add(1)
		return envelope("new"), nil
	}, zap.NewNop())

	if !m.Restore(context.Background()) {
		t.Fatalf("Restore = false for a fresh stored token")
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("fresh stored token still refreshed %d time(s)", n)
	}
	s := m.Session()
	if s.Role != "Tourist" || s.ExpiresAt.IsZero() {
		t.Fatalf("claims not recovered: %+v", s)
	}
}

func TestRestore_ExpiredStoredTokenRefreshes(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	access := signedToken(t, time.Now().Add(-time.Hour), "Tourist")
	_ = store.Save(secstore.KeyAccessToken, access)
	_ = store.Save(secstore.KeyRefreshToken, "R-stored")

	var calls atomic.Int32
	m := NewManager(store, func(_ context.Context, refreshToken string) (model.TokenEnvelope, error) {
		calls.Add(1)
		if refreshToken != "R-stored" {
			t.Errorf("refresh token = %q, want R-stored", refreshToken)
		}
		return envelope("new"), nil
	}, zap.NewNop())

	if !m.Restore(context.Background()) {
		t.Fatalf("Restore = false after successful refresh")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("refresh calls = %d, want 1", n)
	}
}

func TestRestore_NothingPersisted(t *testing.T) {
	t.Parallel()
	m := NewManager(newFakeStore(), nil, zap.NewNop())
	if m.Restore(context.Background()) {
		t.Fatalf("Restore = true with empty store")
	}
}

func TestRestore_UnparsableTokenForcesRefresh(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	_ = store.Save(secstore.KeyAccessToken, "not-a-jwt")
	_ = store.Save(secstore.KeyRefreshToken, "R-stored")

	var calls atomic.Int32
	m := NewManager(store, func(context.Context, string) (model.TokenEnvelope, error) {
		calls.Add(1)
		return envelope("new"), nil
	}, zap.NewNop())

	if !m.Restore(context.Background()) {
		t.Fatalf("Restore = false after refresh")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("refresh calls = %d, want 1", n)
	}
}

func TestLogout_ClearsEverything(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	m := NewManager(store, nil, zap.NewNop())
	m.SetTokens(envelope("A"))

	m.Logout()

	s := m.Session()
	if s.AccessToken != "" || s.RefreshToken != "" || s.Role != "" || !s.ExpiresAt.IsZero() {
		t.Fatalf("session fields survive logout: %+v", s)
	}
	if _, err := store.Get(secstore.KeyAccessToken); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("persisted access token survives logout")
	}
	if m.IsAuthenticated() {
		t.Fatalf("authenticated after logout")
	}
}
