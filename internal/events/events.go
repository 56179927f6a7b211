package events

// Event names pushed to UI surfaces.
const (
	BriefingCreated = "briefing-created"
	SummaryReady    = "summary-ready"
)

// Event is a real-time update pushed to a UI surface. Events are transient:
// they are never stored or replayed.
type Event struct {
	Type       string `json:"type"`
	BriefingID int64  `json:"briefing_id"`
}

// Surface is a live window or view that can receive events. Send is one-way
// and must never block; delivery is at-most-once and unconfirmed. Sending to
// a destroyed surface is a no-op -- a surface may be torn down between the
// Destroyed check and the Send.
type Surface interface {
	Send(e Event)
	Destroyed() bool
}

// Provider returns the current set of candidate surfaces, in registration
// order. Injected so callers never reach into ambient window state.
type Provider interface {
	Surfaces() []Surface
}
