// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the "error" field.
const (
	codeInvalidRequest  = "invalid_request"
	codeInvalidPlayback = "invalid_playback_message"
	codeNotFound        = "not_found"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error body with a machine readable code.
func writeError(w http.ResponseWriter, status int, code string, detail string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

func writeNotFound(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusNotFound, codeNotFound, detail)
}
