package services

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/poofware/intake-service/internal/branding"
	"github.com/poofware/intake-service/internal/utils"
)

// SessionRegistry keeps one FormController per token. Entries expire
// after ttl without activity; a session that failed to load is never kept.
type SessionRegistry struct {
	gw       Gateway
	fallback branding.Theme
	notifier CompletionNotifier
	grace    time.Duration
	ttl      time.Duration

	sessions *cache.Cache
	loads    singleflight.Group
}

func NewSessionRegistry(
	gw Gateway,
	fallback branding.Theme,
	notifier CompletionNotifier,
	grace time.Duration,
	ttl time.Duration,
) *SessionRegistry {
	return &SessionRegistry{
		gw:       gw,
		fallback: fallback,
		notifier: notifier,
		grace:    grace,
		ttl:      ttl,
		sessions: cache.New(ttl, ttl/2),
	}
}

// Fallback is the theme rendered before (or without) a session.
func (r *SessionRegistry) Fallback() branding.Theme { return r.fallback }

// Open resolves a token from src and loads a fresh controller for it,
// replacing any cached one. On failure the returned controller is in
// StageError and can still be rendered.
func (r *SessionRegistry) Open(ctx context.Context, src TokenSource) (*FormController, error) {
	token, err := AwaitToken(ctx, src, r.grace)
	if err != nil {
		ctl := NewFormController(r.gw, r.fallback, r.notifier)
		_ = ctl.Start(ctx, StaticToken(""), 0)
		if errors.Is(err, utils.ErrNoToken) {
			return ctl, utils.ErrNoToken
		}
		return ctl, err
	}

	v, err, _ := r.loads.Do(token, func() (any, error) {
		ctl := NewFormController(r.gw, r.fallback, r.notifier)
		loadErr := ctl.Load(ctx, token)
		if loadErr == nil {
			r.sessions.Set(token, ctl, cache.DefaultExpiration)
		} else {
			r.sessions.Delete(token)
		}
		return ctl, loadErr
	})
	return v.(*FormController), err
}

// GetOrOpen returns the cached controller for token, loading one if absent.
func (r *SessionRegistry) GetOrOpen(ctx context.Context, token string) (*FormController, error) {
	if ctl, err := r.Get(token); err == nil {
		return ctl, nil
	}
	return r.Open(ctx, StaticToken(token))
}

// Get returns the cached controller for token and refreshes its expiry.
func (r *SessionRegistry) Get(token string) (*FormController, error) {
	if token == "" {
		return nil, utils.ErrNoToken
	}
	v, ok := r.sessions.Get(token)
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	ctl := v.(*FormController)
	r.sessions.Set(token, ctl, cache.DefaultExpiration)
	return ctl, nil
}

// Len reports how many sessions are cached.
func (r *SessionRegistry) Len() int {
	return r.sessions.ItemCount()
}
