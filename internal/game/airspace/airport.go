package airspace

import (
	"context"
	"sync"
	"time"

	"airport-sim/pkg/types"

	"github.com/labstack/gommon/log"
)

type entryRequest struct {
	aircraft types.AircraftID
	release  chan struct{}
}

// Runway admits one aircraft at a time. Requests wait in a FIFO queue and
// the admission loop started by Run grants the head of the queue whenever
// the runway is not blocked.
type Runway struct {
	Bounds types.Rect

	mu      sync.Mutex
	blocked bool
	holder  types.AircraftID
	queue   []entryRequest
}

func NewRunway(bounds types.Rect) *Runway {
	return &Runway{Bounds: bounds}
}

// RequestEntry queues the aircraft and blocks until it is granted the
// runway. The context only matters at shutdown: a cancelled request is
// withdrawn from the queue.
func (r *Runway) RequestEntry(ctx context.Context, id types.AircraftID) error {
	req := entryRequest{aircraft: id, release: make(chan struct{})}

	r.mu.Lock()
	r.queue = append(r.queue, req)
	log.Debugf("RUNWAY: %s queued at position %d", id, len(r.queue))
	r.mu.Unlock()

	select {
	case <-req.release:
		return nil
	case <-ctx.Done():
		r.withdraw(req)
		return ctx.Err()
	}
}

func (r *Runway) withdraw(req entryRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, q := range r.queue {
		if q.release == req.release {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return
		}
	}
	// Granted while we were giving up.
	if r.holder == req.aircraft {
		r.blocked = false
		r.holder = ""
	}
}

// Run is the admission loop. It wakes every interval until ctx is done.
func (r *Runway) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Admit()
		}
	}
}

// Admit grants the runway to the head of the queue if it is free. It
// reports whether an aircraft was admitted.
func (r *Runway) Admit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) == 0 || r.blocked {
		return false
	}
	head := r.queue[0]
	r.queue = r.queue[1:]
	r.blocked = true
	r.holder = head.aircraft
	close(head.release)
	log.Infof("RUNWAY: entry granted to %s", head.aircraft)
	return true
}

// Vacate clears the blocked flag if id holds the runway.
func (r *Runway) Vacate(id types.AircraftID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.blocked || r.holder != id {
		log.Warnf("RUNWAY: %s vacated a runway held by %q", id, r.holder)
		return false
	}
	r.blocked = false
	r.holder = ""
	log.Infof("RUNWAY: %s vacated", id)
	return true
}

func (r *Runway) SetBlocked(blocked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocked = blocked
	if !blocked {
		r.holder = ""
	}
}

func (r *Runway) IsBlocked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blocked
}

// Holder returns the aircraft currently admitted, or "".
func (r *Runway) Holder() types.AircraftID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.holder
}

func (r *Runway) QueueLength() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}
