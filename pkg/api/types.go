package api

import (
	"time"

	"github.com/dd0wney/cluso-signal/pkg/health"
	"github.com/dd0wney/cluso-signal/pkg/signal"
)

// Version is reported on the health endpoint.
const Version = "1.0.0"

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// OptimizeResponse wraps a timing result with its request identity.
type OptimizeResponse struct {
	RequestID string                     `json:"request_id"`
	Timing    *signal.IntersectionTiming `json:"timing"`
}

// OversaturatedResponse reports the oversaturation condition distinctly,
// with the critical flow ratio sum that triggered it.
type OversaturatedResponse struct {
	Error       string  `json:"error"`
	Message     string  `json:"message"`
	CriticalSum float64 `json:"critical_sum"`
}

// ConfigResponse exposes the effective timing configuration.
type ConfigResponse struct {
	Signal signal.Config `json:"signal"`
}

// HealthResponse is the JSON shape of the health endpoint.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Version   string                  `json:"version"`
	Uptime    string                  `json:"uptime"`
	Checks    map[string]health.Check `json:"checks,omitempty"`
}
