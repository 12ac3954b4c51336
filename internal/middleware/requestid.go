// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package middleware provides HTTP middleware shared across the API routes:
// request IDs, Prometheus instrumentation, and response compression.
package middleware

import (
	"net/http"

	"github.com/audiencegrid/audiencegrid/internal/logging"
)

// RequestID assigns each request a unique ID, reusing an upstream
// X-Request-ID when a proxy already set one. The ID is echoed in the
// response header and placed in the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
