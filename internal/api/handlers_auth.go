// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"errors"
	"net/http"

	"github.com/MkMeheran/atlasboard/internal/models"
	"github.com/MkMeheran/atlasboard/internal/session"
)

// Authenticate handles POST /api/v1/auth: sign-up or sign-in against the
// hosted auth provider, selected by the action field (default signin).
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var (
		sess *models.Session
		err  error
	)
	if req.Action == "signup" {
		sess, err = h.session.SignUp(r.Context(), req.Email, req.Password)
	} else {
		sess, err = h.session.SignIn(r.Context(), req.Email, req.Password)
	}

	var provErr *session.ProviderError
	switch {
	case errors.Is(err, session.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, ErrCodeNotConfigured,
			"Auth provider not configured", nil)
		return
	case errors.As(err, &provErr):
		// Provider rejections (wrong password, duplicate email) pass
		// through with the provider's message.
		respondError(w, http.StatusUnauthorized, ErrCodeAuth, provErr.Message, nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Authentication failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"session": sess,
		"role":    roleOf(sess),
	})
}

// SignOut handles DELETE /api/v1/auth.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	err := h.session.SignOut(r.Context())
	if errors.Is(err, session.ErrNoSession) {
		respondError(w, http.StatusUnauthorized, ErrCodeAuth, "No active session", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Sign-out failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{"signed_out": true})
}

func roleOf(sess *models.Session) models.Role {
	if sess == nil || sess.User == nil {
		return models.RoleUser
	}
	return sess.User.Role()
}
