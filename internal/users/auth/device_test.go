// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDeviceInfo(t *testing.T) {
	tests := []struct {
		name       string
		userAgent  string
		deviceName string
		deviceOS   string
	}{
		{
			"chrome_on_windows",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			"Chrome on Windows",
			"Windows",
		},
		{
			"safari_on_macos",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			"Safari on macOS",
			"macOS",
		},
		{
			"firefox_on_linux",
			"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			"Firefox on Linux",
			"Linux",
		},
		{
			"edge_on_windows",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36 Edg/120.0",
			"Edge on Windows",
			"Windows",
		},
		{
			"curl",
			"curl/8.4.0",
			"Curl on Unknown",
			"Unknown",
		},
		{
			"empty_agent",
			"",
			"Browser on Unknown",
			"Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/", nil)
			if tt.userAgent != "" {
				request.Header.Set("User-Agent", tt.userAgent)
			}

			info := ExtractDeviceInfo(request)
			assert.Equal(t, tt.deviceName, info.DeviceName)
			assert.Equal(t, tt.deviceOS, info.DeviceOS)
			assert.Equal(t, tt.userAgent, info.UserAgent)
		})
	}
}

func TestExtractDeviceInfo_IPPrecedence(t *testing.T) {
	request := httptest.NewRequest("GET", "/", nil)
	request.RemoteAddr = "10.0.0.1:9999"
	request.Header.Set("X-Real-IP", "203.0.113.7")
	request.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.2")

	info := ExtractDeviceInfo(request)
	assert.Equal(t, "198.51.100.1", info.IPAddress, "X-Forwarded-For takes precedence")

	request.Header.Del("X-Forwarded-For")
	info = ExtractDeviceInfo(request)
	assert.Equal(t, "203.0.113.7", info.IPAddress)

	request.Header.Del("X-Real-IP")
	info = ExtractDeviceInfo(request)
	assert.Equal(t, "10.0.0.1", info.IPAddress)
}
