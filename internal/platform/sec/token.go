// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// OpaqueTokenBytes is the entropy of a generated refresh token (256 bits).
const OpaqueTokenBytes = 32

// GenerateOpaqueToken returns a cryptographically random, URL-safe token.
//
// The plaintext is handed to the client exactly once; only [HashToken]
// output is ever persisted.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, OpaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex-encoded SHA-256 digest of an opaque token.
//
// SHA-256 is deliberate: unlike bcrypt the digest is deterministic, which
// lets refresh-token rotation run as a compare-and-swap on the previous
// hash at the storage layer. The input already carries full 256-bit
// entropy, so a fast hash is safe here.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// CompareTokenHash reports whether the plaintext token matches the stored
// digest, in constant time.
func CompareTokenHash(plaintext, storedHash string) bool {
	computed := HashToken(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
