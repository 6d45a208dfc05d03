// Package auth provides the security primitives gating the ingestion
// pipeline: webhook signature verification and encrypted secret storage.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signaturePrefix is the algorithm tag GitHub puts in front of the hex
// HMAC in the x-hub-signature-256 header.
const signaturePrefix = "sha256="

// VerifySignature validates a webhook delivery signature.
//
// body is the raw request body, signature the value of the
// x-hub-signature-256 header (e.g. "sha256=abc123"), secret the
// plaintext webhook secret. The comparison is constant time; a header
// without the sha256= prefix or with the wrong length is rejected
// without comparing content.
func VerifySignature(body []byte, signature, secret string) bool {
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := signaturePrefix + hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal is constant time and returns false on length mismatch
	// without a content-dependent branch.
	return hmac.Equal([]byte(signature), []byte(expected))
}
