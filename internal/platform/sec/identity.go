// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package sec

// Identity is the authenticated principal attached to a request context
// after the bearer token and its backing session have been verified.
type Identity struct {
	UserID    string
	SessionID string
	Email     string
	Username  string
	FullName  string
	Role      UserRole
}
