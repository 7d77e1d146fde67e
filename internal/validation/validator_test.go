// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package validation

import (
	"strings"
	"testing"

	"github.com/MkMeheran/atlasboard/internal/models"
)

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	req := models.AuthRequest{
		Email:    "user@example.com",
		Password: "password123",
		Action:   "signin",
	}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}
}

func TestValidateStructSingleError(t *testing.T) {
	t.Parallel()

	req := models.AuthRequest{
		Email:    "not-an-email",
		Password: "password123",
	}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR code, got %s", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Email") {
		t.Errorf("Message must name the field, got %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "Email" {
		t.Errorf("Details must carry the field, got %v", apiErr.Details)
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	t.Parallel()

	req := models.AuthRequest{
		Email:    "bad",
		Password: "short",
		Action:   "delete",
	}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("Expected 3 field errors, got %d: %v", len(err.Errors()), err)
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("Details must list all failed fields, got %v", apiErr.Details)
	}
}

func TestTranslatedMessages(t *testing.T) {
	t.Parallel()

	req := models.AuthRequest{
		Email:    "user@example.com",
		Password: "short",
	}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if got := err.Error(); !strings.Contains(got, "at least 8 characters") {
		t.Errorf("Expected min-length message, got %q", got)
	}
}

func TestValidateChatMessageRole(t *testing.T) {
	t.Parallel()

	msg := models.ChatMessage{Role: "robot", Content: "hi"}
	err := ValidateStruct(&msg)
	if err == nil {
		t.Fatal("Expected role validation error")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("Expected oneof message, got %q", err.Error())
	}
}
