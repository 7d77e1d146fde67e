// Atlasboard - Geospatial Dashboard Backend
// Copyright 2026 MkMeheran
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MkMeheran/atlasboard

// Package webhook implements the signed relay between Atlasboard and the
// external automation engine: inbound event verification and dispatch, and
// outbound event delivery.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "x-webhook-signature"

// VerifySignature checks that payload was produced by a holder of secret.
//
// Returns false when the signature or the secret is empty: verification is
// not possible, which the relay treats as a failed check rather than an
// error. The comparison runs in constant time over fixed-length digests, so
// an attacker cannot recover the secret byte-by-byte from response timing.
// Comparing the hex strings (rather than decoded bytes) keeps the expected
// side at a fixed 64 characters; hmac.Equal rejects length mismatches
// before any byte comparison, and the digest length is public anyway.
func VerifySignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// Sign computes the hex HMAC-SHA256 signature for a payload. Used by tests
// and by callers that relay signed events onward.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
