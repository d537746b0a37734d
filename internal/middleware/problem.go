package middleware

import (
	"encoding/json"
	"net/http"
)

// Problem is the RFC 7807 body written by middleware that runs before the
// router's error handler is reachable.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render writes the problem as application/problem+json
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	return json.NewEncoder(w).Encode(p)
}

// ProblemFromStatus creates a Problem from an HTTP status code
func ProblemFromStatus(status int, detail string, traceID string) Problem {
	var problemType string

	switch status {
	case http.StatusBadRequest:
		problemType = "/errors/bad-request"
	case http.StatusUnauthorized:
		problemType = "/errors/unauthorized"
	case http.StatusNotFound:
		problemType = "/errors/not-found"
	case http.StatusTooManyRequests:
		problemType = "/errors/rate-limit-exceeded"
	case http.StatusInternalServerError:
		problemType = "/errors/internal-server-error"
	case http.StatusServiceUnavailable:
		problemType = "/errors/service-unavailable"
	case http.StatusGatewayTimeout:
		problemType = "/errors/request-timeout"
	default:
		problemType = "/errors/unknown"
	}

	return Problem{
		Type:   problemType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}
