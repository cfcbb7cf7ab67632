package errs

import (
	"encoding/json"
	"net/http"
	"time"
)

// errorResponse is the JSON body rendered for a failed request. Only taxonomy
// fields are exposed; raw internal errors stay in server-side logs.
type errorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// WriteHTTP renders an Error as a structured HTTP response. The error code
// and severity are echoed as headers so edge proxies and support tooling can
// read them without parsing the body.
func WriteHTTP(w http.ResponseWriter, err error) {
	appErr := Classify(err)

	// Never leak the wrapped cause to clients.
	details := make(map[string]any, len(appErr.Details))
	for k, v := range appErr.Details {
		if k == "originalError" {
			continue
		}
		details[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", appErr.Code)
	w.Header().Set("X-Error-Severity", string(appErr.Severity))
	w.WriteHeader(appErr.Status)

	json.NewEncoder(w).Encode(errorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   details,
		Timestamp: appErr.Timestamp.Format(time.RFC3339),
	})
}
