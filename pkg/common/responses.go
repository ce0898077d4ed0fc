package common

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response shape for every API endpoint. The HTTP
// status carries the outcome class; the envelope carries the payload.
type Envelope struct {
	Success    bool            `json:"success"`
	Entry      json.RawMessage `json:"entry,omitempty"`
	Entries    json.RawMessage `json:"entries,omitempty"`
	Count      *int            `json:"count,omitempty"`
	EntityType string          `json:"entityType,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// RespondEntry writes a single-entry success envelope.
func RespondEntry(w http.ResponseWriter, status int, entry any, message string) {
	raw, err := json.Marshal(entry)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
	writeJSON(w, status, Envelope{Success: true, Entry: raw, Message: message})
}

// RespondEntries writes a list success envelope with the entry count.
func RespondEntries(w http.ResponseWriter, entries any, count int, entityType string) {
	raw, err := json.Marshal(entries)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Entries:    raw,
		Count:      &count,
		EntityType: entityType,
	})
}

// RespondMessage writes a success envelope with only a message (deletes).
func RespondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: true, Message: message})
}

// RespondError writes a failure envelope.
func RespondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Error: message})
}

// RespondJSON writes an arbitrary payload outside the envelope. Used by the
// health check and billing endpoints whose shapes predate the envelope.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// ParseJSONBody decodes a JSON request body with a size limit.
func ParseJSONBody(r *http.Request, v any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
