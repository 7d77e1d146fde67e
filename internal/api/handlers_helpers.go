// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/MkMeheran/atlasboard/internal/logging"
	"github.com/MkMeheran/atlasboard/internal/models"
	"github.com/MkMeheran/atlasboard/internal/validation"
)

// Error codes used across handlers.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInvalidSig    = "INVALID_SIGNATURE"
	ErrCodeAuth          = "AUTHENTICATION_ERROR"
	ErrCodeNotConfigured = "NOT_CONFIGURED"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
	ErrCodeDelivery      = "DELIVERY_FAILED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// respondJSON sends a JSON response with caching and ETag headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in the success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// respondError sends the error envelope. The underlying error is logged
// sanitized, never echoed to the client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", logging.Sanitize(code)).
			Str("error", logging.Sanitize(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// generateETag creates an ETag from the response bytes using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// decodeBody reads and unmarshals a size-limited request body.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.cfg.API.MaxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body", err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Request body is not valid JSON", err)
		return false
	}
	return true
}

// validateRequest runs struct validation, returning the translated API
// error when it fails.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}
