package events

import "sync"

// Registry tracks attached surfaces in registration order. It implements
// Provider. The registry does not inspect destroyed state; callers that pick
// a surface are responsible for skipping destroyed ones.
type Registry struct {
	mu       sync.Mutex
	surfaces []Surface
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Attach appends s to the tracked set. Surfaces attached earlier are
// preferred by first-match selection.
func (r *Registry) Attach(s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surfaces = append(r.surfaces, s)
}

// Detach removes s from the tracked set. Detaching an unknown surface is a
// no-op.
func (r *Registry) Detach(s Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.surfaces {
		if cur == s {
			r.surfaces = append(r.surfaces[:i], r.surfaces[i+1:]...)
			return
		}
	}
}

// Surfaces returns a snapshot of the tracked surfaces in attach order.
func (r *Registry) Surfaces() []Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Surface, len(r.surfaces))
	copy(out, r.surfaces)
	return out
}
