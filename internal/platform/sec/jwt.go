// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ducpham/taskora/internal/platform/apperr"
	"github.com/ducpham/taskora/internal/platform/constants"
)

/*
# Token Service

Issues and decodes the short-lived HMAC-signed access tokens that ride the
Authorization header. Access tokens are intentionally decoded without
expiry validation: every authenticated request also checks that the
backing session row is still active, so revocation is enforced by session
state rather than by the clock. The `exp` claim is still written so other
consumers can honor it.
*/

// AccessClaims is the payload carried by every access token.
type AccessClaims struct {
	jwt.RegisteredClaims

	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// TokenService signs and verifies access tokens with a shared HMAC secret.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

/*
NewTokenService constructs a TokenService.

Parameters:
  - secret: shared HMAC signing key, must be non-empty.
  - algorithm: one of HS256, HS384, HS512.
  - ttl: lifetime written into the `exp` claim.

Returns:
  - *TokenService: the configured service.
  - error: if the secret is empty or the algorithm is not an HMAC family member.
*/
func NewTokenService(secret string, algorithm string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret must not be empty")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("sec: unsupported signing algorithm %q", algorithm)
	}

	return &TokenService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

/*
Generate issues a signed access token bound to a user and a session.

Parameters:
  - userID: subject of the token.
  - sessionID: the session the token was minted under.

Returns:
  - string: the compact JWS.
  - error: if signing fails.
*/
func (s *TokenService) Generate(userID, sessionID string) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AuthIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:    userID,
		SessionID: sessionID,
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sec_sign_token_failed: %w", err)
	}
	return signed, nil
}

/*
Decode verifies the signature of an access token and returns its claims.

Expiry is not checked here; callers are expected to verify that the
session named in the claims is still active. Any failure collapses into
a single unauthorized error so callers cannot distinguish a forged token
from a malformed one.

Parameters:
  - tokenString: the compact JWS taken from the Authorization header.

Returns:
  - *AccessClaims: the verified claims.
  - error: apperr.Unauthorized when the token is invalid.
*/
func (s *TokenService) Decode(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// TTL returns the configured access-token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
