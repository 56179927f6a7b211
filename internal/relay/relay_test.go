package relay_test

import (
	"io"
	"log/slog"
	"testing"

	"briefdesk/internal/events"
	"briefdesk/internal/relay"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSurface struct {
	destroyed bool
	received  []events.Event
}

func (f *fakeSurface) Send(e events.Event) { f.received = append(f.received, e) }
func (f *fakeSurface) Destroyed() bool     { return f.destroyed }

type fakeProvider struct {
	surfaces []events.Surface
}

func (f *fakeProvider) Surfaces() []events.Surface { return f.surfaces }

func TestBriefingCreated_DeliversToOneSurface(t *testing.T) {
	s := &fakeSurface{}
	r := relay.New(&fakeProvider{surfaces: []events.Surface{s}}, discardLogger())

	r.NotifyBriefingCreated(42)

	if len(s.received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(s.received))
	}
	if s.received[0].Type != events.BriefingCreated {
		t.Errorf("type: got %q want %q", s.received[0].Type, events.BriefingCreated)
	}
	if s.received[0].BriefingID != 42 {
		t.Errorf("briefing id: got %d want 42", s.received[0].BriefingID)
	}
}

func TestNotify_NoSurfaces(t *testing.T) {
	r := relay.New(&fakeProvider{}, discardLogger())
	// Must not panic or block.
	r.NotifyBriefingCreated(1)
	r.NotifySummaryReady(1)
}

func TestNotify_NilProvider(t *testing.T) {
	r := relay.New(nil, discardLogger())
	r.NotifyBriefingCreated(1)
}

func TestNotify_AllSurfacesDestroyed(t *testing.T) {
	a := &fakeSurface{destroyed: true}
	b := &fakeSurface{destroyed: true}
	r := relay.New(&fakeProvider{surfaces: []events.Surface{a, b}}, discardLogger())

	r.NotifySummaryReady(7)

	if len(a.received)+len(b.received) != 0 {
		t.Error("expected no deliveries to destroyed surfaces")
	}
}

func TestNotify_NoBroadcast(t *testing.T) {
	a := &fakeSurface{}
	b := &fakeSurface{}
	r := relay.New(&fakeProvider{surfaces: []events.Surface{a, b}}, discardLogger())

	r.NotifyBriefingCreated(3)

	if total := len(a.received) + len(b.received); total != 1 {
		t.Fatalf("expected exactly 1 delivery across all surfaces, got %d", total)
	}
	if len(a.received) != 1 {
		t.Error("expected the first surface to receive the event")
	}
}

func TestNotify_SkipsDestroyedFirstSurface(t *testing.T) {
	dead := &fakeSurface{destroyed: true}
	live := &fakeSurface{}
	r := relay.New(&fakeProvider{surfaces: []events.Surface{dead, live}}, discardLogger())

	r.NotifyBriefingCreated(9)

	if len(dead.received) != 0 {
		t.Error("destroyed surface must never be selected")
	}
	if len(live.received) != 1 {
		t.Fatalf("expected next live surface to receive the event, got %d", len(live.received))
	}
}

func TestNotify_OrderedDistinctEvents(t *testing.T) {
	s := &fakeSurface{}
	r := relay.New(&fakeProvider{surfaces: []events.Surface{s}}, discardLogger())

	r.NotifyBriefingCreated(5)
	r.NotifySummaryReady(5)

	if len(s.received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(s.received))
	}
	if s.received[0].Type != events.BriefingCreated || s.received[1].Type != events.SummaryReady {
		t.Errorf("unexpected order: %q then %q", s.received[0].Type, s.received[1].Type)
	}
	for _, e := range s.received {
		if e.BriefingID != 5 {
			t.Errorf("briefing id: got %d want 5", e.BriefingID)
		}
	}
}

func TestNotify_NoDeduplication(t *testing.T) {
	s := &fakeSurface{}
	r := relay.New(&fakeProvider{surfaces: []events.Surface{s}}, discardLogger())

	r.NotifyBriefingCreated(1)
	r.NotifyBriefingCreated(1)

	if len(s.received) != 2 {
		t.Fatalf("expected 2 independent deliveries, got %d", len(s.received))
	}
}
