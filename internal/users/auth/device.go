// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package auth

import (
	"net/http"
	"strings"

	"github.com/ducpham/taskora/internal/platform/middleware"
)

// DeviceInfo is a coarse description of the client that opened a session.
// It exists so users can recognize their own devices in the session list.
type DeviceInfo struct {
	DeviceName string
	DeviceOS   string
	UserAgent  string
	IPAddress  string
}

// ExtractDeviceInfo derives device metadata from request headers.
//
// The parsing is intentionally small: a browser family plus an OS family is
// enough for the "your active sessions" screen. Unknown agents degrade to
// "Browser on Unknown" rather than failing.
func ExtractDeviceInfo(request *http.Request) DeviceInfo {
	rawAgent := request.UserAgent()
	agent := strings.ToLower(rawAgent)

	var osName string
	switch {
	case strings.Contains(agent, "windows"):
		osName = "Windows"
	case strings.Contains(agent, "macintosh"), strings.Contains(agent, "mac os"), strings.Contains(agent, "macos"):
		osName = "macOS"
	case strings.Contains(agent, "iphone"), strings.Contains(agent, "ipad"):
		osName = "iOS"
	case strings.Contains(agent, "android"):
		osName = "Android"
	case strings.Contains(agent, "linux"):
		osName = "Linux"
	default:
		osName = "Unknown"
	}

	var browser string
	switch {
	case strings.Contains(agent, "edg"):
		browser = "Edge"
	case strings.Contains(agent, "chrome") && strings.Contains(agent, "safari"):
		browser = "Chrome"
	case strings.Contains(agent, "safari"):
		browser = "Safari"
	case strings.Contains(agent, "firefox"):
		browser = "Firefox"
	case strings.Contains(agent, "curl"):
		browser = "Curl"
	default:
		browser = "Browser"
	}

	return DeviceInfo{
		DeviceName: browser + " on " + osName,
		DeviceOS:   osName,
		UserAgent:  rawAgent,
		IPAddress:  middleware.RealIP(request),
	}
}
