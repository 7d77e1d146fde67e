// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"errors"
	"net/http"

	"github.com/MkMeheran/atlasboard/internal/completion"
	"github.com/MkMeheran/atlasboard/internal/models"
)

// Complete handles POST /api/v1/ai: one round trip against the hosted
// completion API. Exactly one of prompt or messages must be present.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompletionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	for i := range req.Messages {
		if apiErr := validateRequest(&req.Messages[i]); apiErr != nil {
			respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
			return
		}
	}

	resp, err := h.completion.Complete(r.Context(), req)
	switch {
	case errors.Is(err, completion.ErrInvalidRequest):
		respondError(w, http.StatusBadRequest, ErrCodeValidation,
			"Exactly one of prompt or messages is required", nil)
		return
	case errors.Is(err, completion.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, ErrCodeNotConfigured,
			"Completion API not configured", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeUpstream,
			"Completion request failed", err)
		return
	}

	h.completionCalls.Add(1)
	respondSuccess(w, http.StatusOK, resp)
}
