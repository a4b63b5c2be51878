package probe

import (
	"encoding/json"
	"math"
	"time"
)

// Status classifies the outcome of a single probe.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
	StatusUnknown  Status = "unknown"
)

// Result is the outcome of one probe against one service.
type Result struct {
	Service      string
	Status       Status
	ResponseTime float64 // milliseconds
	StatusCode   int     // 0 when no response was received
	Err          string
	Timestamp    time.Time
}

// MarshalJSON emits the wire form consumed by webhook receivers:
// status_code and error are null when absent, response_time_ms is
// rounded to two decimals, timestamps are RFC 3339.
func (r Result) MarshalJSON() ([]byte, error) {
	type wire struct {
		Service        string  `json:"service"`
		Status         string  `json:"status"`
		ResponseTimeMS float64 `json:"response_time_ms"`
		StatusCode     *int    `json:"status_code"`
		Error          *string `json:"error"`
		Timestamp      string  `json:"timestamp"`
	}

	w := wire{
		Service:        r.Service,
		Status:         string(r.Status),
		ResponseTimeMS: math.Round(r.ResponseTime*100) / 100,
		Timestamp:      r.Timestamp.UTC().Format(time.RFC3339),
	}
	if r.StatusCode != 0 {
		w.StatusCode = &r.StatusCode
	}
	if r.Err != "" {
		w.Error = &r.Err
	}
	return json.Marshal(w)
}
