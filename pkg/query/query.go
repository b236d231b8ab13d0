// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

// Package query contains helpers for parsing list-endpoint query parameters.
package query

import (
	"net/http"
	"strings"
	"time"
)

// String returns a trimmed query parameter, or the empty string.
func String(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// Bool reports whether the query parameter is a truthy flag ("true" or "1").
func Bool(r *http.Request, key string) bool {
	v := strings.ToLower(String(r, key))
	return v == "true" || v == "1"
}

// Time parses an RFC 3339 timestamp query parameter.
// It returns nil when the parameter is absent or malformed.
func Time(r *http.Request, key string) *time.Time {
	raw := String(r, key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
