// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MkMeheran/atlasboard/internal/logging"
	"github.com/MkMeheran/atlasboard/internal/models"
)

// ChangeEvent names why session state changed.
type ChangeEvent string

const (
	EventSignedIn  ChangeEvent = "SIGNED_IN"
	EventSignedOut ChangeEvent = "SIGNED_OUT"
	EventRefreshed ChangeEvent = "REFRESHED"
)

// Listener receives session change notifications. The session is nil on
// sign-out.
type Listener func(event ChangeEvent, sess *models.Session)

// Unsubscribe deregisters a listener. Safe to call more than once; after
// the first call the listener is never notified again.
type Unsubscribe func()

// Adapter holds the current session and fans out change notifications.
// It is the single authority on "who is signed in" for the rest of the
// process; handlers never talk to the Provider directly.
type Adapter struct {
	provider Provider

	mu        sync.RWMutex
	current   *models.Session
	listeners map[int]Listener
	nextID    int
}

// NewAdapter creates an adapter with no active session.
func NewAdapter(provider Provider) *Adapter {
	return &Adapter{
		provider:  provider,
		listeners: make(map[int]Listener),
	}
}

// SignUp registers a new user. When the provider issues a usable session
// immediately (no email confirmation step), it becomes the current one.
func (a *Adapter) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := a.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if sess.AccessToken != "" {
		a.setSession(sess, EventSignedIn)
	}
	return sess, nil
}

// SignIn exchanges credentials for a session and makes it current.
func (a *Adapter) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.setSession(sess, EventSignedIn)
	return sess, nil
}

// SignOut revokes the current session at the provider and clears it
// locally. Clearing happens even when revocation fails; a dangling
// provider-side token is preferable to a zombie local session.
func (a *Adapter) SignOut(ctx context.Context) error {
	a.mu.RLock()
	current := a.current
	a.mu.RUnlock()
	if current == nil {
		return ErrNoSession
	}

	err := a.provider.SignOut(ctx, current.AccessToken)
	a.setSession(nil, EventSignedOut)
	if err != nil {
		logging.Warn().Err(err).Msg("Provider sign-out failed, local session cleared anyway")
	}
	return nil
}

// Session returns the current session, or ErrNoSession. An expired session
// counts as absent.
func (a *Adapter) Session() (*models.Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil || a.current.Expired(time.Now()) {
		return nil, ErrNoSession
	}
	return a.current, nil
}

// User returns the signed-in user, or nil when there is none.
func (a *Adapter) User() *models.User {
	sess, err := a.Session()
	if err != nil {
		return nil
	}
	return sess.User
}

// Role returns the current user's role, RoleUser when signed out. Metadata
// wins; the access token's claims are the fallback for providers that only
// stamp the role into the JWT.
func (a *Adapter) Role() models.Role {
	sess, err := a.Session()
	if err != nil {
		return models.RoleUser
	}
	if sess.User != nil && sess.User.Metadata != nil {
		if _, ok := sess.User.Metadata["role"].(string); ok {
			return sess.User.Role()
		}
	}
	if role, ok := roleFromToken(sess.AccessToken); ok {
		return role
	}
	return sess.User.Role()
}

// HasRole reports whether the current user satisfies any of the required
// roles. Admin satisfies every check. No required roles means any
// signed-in user passes.
func (a *Adapter) HasRole(required ...models.Role) bool {
	if _, err := a.Session(); err != nil {
		return false
	}
	role := a.Role()
	if role == models.RoleAdmin {
		return true
	}
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		if role == want {
			return true
		}
	}
	return false
}

// OnChange registers a listener for session changes and returns its
// deregistration handle.
func (a *Adapter) OnChange(listener Listener) Unsubscribe {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = listener
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Refresh replaces the current session, for example after the provider
// rotates tokens. A nil session is a sign-out.
func (a *Adapter) Refresh(sess *models.Session) {
	if sess == nil {
		a.setSession(nil, EventSignedOut)
		return
	}
	a.setSession(sess, EventRefreshed)
}

// setSession swaps the session and notifies listeners outside the lock, so
// a listener may call back into the adapter.
func (a *Adapter) setSession(sess *models.Session, event ChangeEvent) {
	a.mu.Lock()
	a.current = sess
	notify := make([]Listener, 0, len(a.listeners))
	for _, l := range a.listeners {
		notify = append(notify, l)
	}
	a.mu.Unlock()

	for _, l := range notify {
		l(event, sess)
	}
}

// roleFromToken pulls a role claim out of the access token without
// verifying the signature. Verification is the provider's job; we only
// read what it already vouched for.
func roleFromToken(accessToken string) (models.Role, bool) {
	if accessToken == "" {
		return "", false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return "", false
	}

	raw, ok := claims["user_metadata"].(map[string]interface{})
	if !ok {
		return "", false
	}
	role, ok := raw["role"].(string)
	if !ok {
		return "", false
	}
	switch models.Role(role) {
	case models.RoleAdmin, models.RoleModerator, models.RoleUser:
		return models.Role(role), true
	default:
		return "", false
	}
}
