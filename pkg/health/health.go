// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health reports whether a process is ready to serve traffic.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
)

// Metric represents anything that can report its health status.
type Metric interface {
	Healthy(context.Context) bool
}

// Binary is a Metric that is either healthy or not.
// The zero value is unhealthy.
type Binary struct {
	healthy atomic.Bool
}

// MarkHealthy
func (m *Binary) MarkHealthy() {
	m.healthy.Store(true)
}

// MarkUnhealthy
func (m *Binary) MarkUnhealthy() {
	m.healthy.Store(false)
}

// Healthy implements the Metric interface.
func (m *Binary) Healthy(_ context.Context) bool {
	return m.healthy.Load()
}

// Handler responds with 200 when m is healthy and 503 otherwise.
func Handler(m Metric) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Healthy(r.Context()) {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
}
