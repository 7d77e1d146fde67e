// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package models

import "time"

// Role is a user's access level, stored as metadata by the hosted auth
// provider. Roles are not hierarchical except for the admin rule: admin
// implicitly satisfies every role check.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// User is the provider-issued identity record.
type User struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	Metadata  map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
}

// Role extracts the role from user metadata, defaulting to RoleUser when
// the metadata is absent or not a known role string.
func (u *User) Role() Role {
	if u == nil || u.Metadata == nil {
		return RoleUser
	}
	raw, ok := u.Metadata["role"].(string)
	if !ok {
		return RoleUser
	}
	switch Role(raw) {
	case RoleAdmin, RoleModerator, RoleUser:
		return Role(raw)
	default:
		return RoleUser
	}
}

// Session is a user's authenticated state as issued by the hosted auth
// provider. AccessToken is an opaque bearer token (a JWT in practice);
// ExpiresAt is seconds-since-epoch per the provider's wire format.
type Session struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// Expired reports whether the session's access token is past its expiry.
// Sessions without an expiry are treated as live; the provider remains the
// authority either way.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= s.ExpiresAt
}

// AuthRequest is the body of the auth endpoint: sign-up or sign-in with
// email and password, selected by Action.
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Action   string `json:"action" validate:"omitempty,oneof=signup signin"`
}
