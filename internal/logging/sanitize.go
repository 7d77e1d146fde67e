// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

package logging

import (
	"fmt"
	"strings"
)

// Sanitize removes control characters from strings to prevent log injection.
// Webhook event names, feature properties, and auth error messages all carry
// attacker-controlled text; newlines or escape sequences in them could forge
// log entries. Control characters are replaced with their hex representation.
func Sanitize(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
