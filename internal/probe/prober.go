// Package probe performs HTTP health probes and classifies their outcomes.
package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jy02140251/deploy-watcher/internal/config"
)

// Prober issues health probes over a single shared client. It is safe for
// concurrent use; Check never returns an error, failures become Down results.
type Prober struct {
	client *http.Client
}

// New creates a Prober with the given per-probe timeout.
func New(timeout time.Duration) *Prober {
	return &Prober{
		client: &http.Client{Timeout: timeout},
	}
}

// Check probes a single service and classifies the response.
//
// Classification order: transport timeout → Down ("Timeout"); any other
// transport failure → Down with the failure text; unexpected status code →
// Degraded; configured body substring absent → Degraded; otherwise Healthy.
func (p *Prober) Check(ctx context.Context, svc config.Service) Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, svc.Method, svc.URL, nil)
	if err != nil {
		return p.down(svc.Name, start, err.Error())
	}
	for k, v := range svc.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return p.down(svc.Name, start, "Timeout")
		}
		return p.down(svc.Name, start, err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	elapsed := elapsedMS(start)

	status := StatusHealthy
	if resp.StatusCode != svc.ExpectedStatus {
		status = StatusDegraded
	} else if svc.ExpectedBody != "" && !strings.Contains(string(body), svc.ExpectedBody) {
		status = StatusDegraded
	}

	return Result{
		Service:      svc.Name,
		Status:       status,
		ResponseTime: elapsed,
		StatusCode:   resp.StatusCode,
		Timestamp:    time.Now().UTC(),
	}
}

// Close releases idle network connections.
func (p *Prober) Close() {
	p.client.CloseIdleConnections()
}

func (p *Prober) down(service string, start time.Time, errText string) Result {
	return Result{
		Service:      service,
		Status:       StatusDown,
		ResponseTime: elapsedMS(start),
		Err:          errText,
		Timestamp:    time.Now().UTC(),
	}
}

func elapsedMS(start time.Time) float64 {
	return time.Since(start).Seconds() * 1000
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
