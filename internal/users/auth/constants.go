// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package auth

import "time"

// # Authentication Constraints

const (
	// DefaultAccessTokenTTL is the duration written into the access token's
	// exp claim when no override is configured. Short, to limit the blast
	// radius of a leaked token for consumers that do honor expiry.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the duration a session's refresh token
	// remains valid. Each successful rotation extends the session by this
	// amount, so an actively used device never gets logged out.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	// TokenTypeBearer is the token_type value in every token response.
	TokenTypeBearer = "bearer"
)
