// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	xglog "github.com/ManuGH/projector/internal/log"
)

// Correlation headers.
const (
	// HeaderRequestID carries the correlation id in both directions.
	HeaderRequestID = "X-Request-ID"
	// HeaderPlaybackSession names the remote player session posting samples.
	HeaderPlaybackSession = "X-Playback-Session"
)

// RequestID adds a unique ID to every request and records the playback
// session, when the player sends one, for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := xglog.ContextWithRequestID(r.Context(), reqID)
		if sid := r.Header.Get(HeaderPlaybackSession); sid != "" && len(sid) <= 128 {
			ctx = xglog.ContextWithSessionID(ctx, sid)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
