package api

import "log/slog"

// CallEvent records metadata about a single API call.
type CallEvent struct {
	Method    string
	Endpoint  string // route template, e.g. /mining/sessions/{id}/stop/
	RequestID string
	Status    int
	Attempts  int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about API calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a structured logger.
type LogObserver struct {
	log *slog.Logger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log *slog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"method", event.Method,
		"endpoint", event.Endpoint,
		"request_id", event.RequestID,
		"status", event.Status,
		"attempts", event.Attempts,
		"latency_ms", event.LatencyMs,
	}
	if event.Success {
		o.log.Debug("api_call", attrs...)
		return
	}
	o.log.Warn("api_call", append(attrs, "error_code", event.ErrorCode)...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// MultiObserver fans an event out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event CallEvent) {
	for _, o := range m {
		o.OnCallComplete(event)
	}
}
