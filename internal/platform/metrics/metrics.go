// Copyright (c) 2026 Taskora. All rights reserved.
// Author: duc.pham@taskora.dev

// Package metrics provides Prometheus instrumentation for the Taskora API.
//
// # Architecture
//
// A single [Collector] is registered at startup and shared by the middleware
// chain and the auth service. Domain packages depend on the [Recorder]
// interface so unit tests can inject a no-op implementation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by middleware and services.
type Recorder interface {
	RecordRequest(method, route string, statusCode int, duration time.Duration)
	RecordLogin(success bool)
	RecordTokenRefresh(success bool)
	RecordSessionRevoked(count int)
}

// Collector implements [Recorder] on top of Prometheus primitives.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loginTotal      *prometheus.CounterVec
	refreshTotal    *prometheus.CounterVec
	sessionsRevoked prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on the registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskora_http_requests_total",
			Help: "Total HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskora_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskora_logins_total",
			Help: "Total login attempts by outcome.",
		}, []string{"outcome"}),
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskora_token_refreshes_total",
			Help: "Total refresh-token rotations by outcome.",
		}, []string{"outcome"}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskora_sessions_revoked_total",
			Help: "Total sessions revoked via logout and logout-all.",
		}),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.loginTotal,
		c.refreshTotal,
		c.sessionsRevoked,
	)

	return c
}

// RecordRequest records a completed HTTP request.
func (c *Collector) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLogin records a login attempt outcome.
func (c *Collector) RecordLogin(success bool) {
	c.loginTotal.WithLabelValues(outcomeLabel(success)).Inc()
}

// RecordTokenRefresh records a refresh-token rotation outcome.
func (c *Collector) RecordTokenRefresh(success bool) {
	c.refreshTotal.WithLabelValues(outcomeLabel(success)).Inc()
}

// RecordSessionRevoked records one or more sessions being revoked.
func (c *Collector) RecordSessionRevoked(count int) {
	c.sessionsRevoked.Add(float64(count))
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop is a [Recorder] that discards all observations. Used in tests.
type Noop struct{}

func (Noop) RecordRequest(string, string, int, time.Duration) {}
func (Noop) RecordLogin(bool)                                 {}
func (Noop) RecordTokenRefresh(bool)                          {}
func (Noop) RecordSessionRevoked(int)                         {}
