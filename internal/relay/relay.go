// Package relay bridges workflow completion signals to the UI. Each call
// picks the first live surface and pushes one named event to it,
// fire-and-forget: no ack, no retry, no queueing when no surface is open.
package relay

import (
	"log/slog"

	"briefdesk/internal/events"
)

// Relay delivers briefing notifications to at most one UI surface per call.
// A nil provider behaves like an empty one.
type Relay struct {
	provider events.Provider
	logger   *slog.Logger
}

func New(provider events.Provider, logger *slog.Logger) *Relay {
	return &Relay{provider: provider, logger: logger}
}

// NotifyBriefingCreated tells the UI that briefing id now exists.
func (r *Relay) NotifyBriefingCreated(id int64) {
	r.deliver(events.Event{Type: events.BriefingCreated, BriefingID: id})
}

// NotifySummaryReady tells the UI that the summary for briefing id finished.
func (r *Relay) NotifySummaryReady(id int64) {
	r.deliver(events.Event{Type: events.SummaryReady, BriefingID: id})
}

// deliver sends e to the first non-destroyed surface, if any. Multiple open
// surfaces do not all get the event; the app has a single primary surface in
// practice, and picking one avoids duplicate refreshes in stale windows.
func (r *Relay) deliver(e events.Event) {
	if r.provider == nil {
		return
	}
	for _, s := range r.provider.Surfaces() {
		if s.Destroyed() {
			continue
		}
		s.Send(e)
		r.logger.Debug("relay: delivered", "event", e.Type, "briefing", e.BriefingID)
		return
	}
	r.logger.Debug("relay: no live surface, dropped", "event", e.Type, "briefing", e.BriefingID)
}
