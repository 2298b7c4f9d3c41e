package airspace

import (
	"fmt"
	"sync"

	"airport-sim/pkg/types"

	"github.com/labstack/gommon/log"
)

// ResourceError reports that no instance of a resource was free.
type ResourceError struct {
	Resource string
	Aircraft types.AircraftID
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("no free %s for %s", e.Resource, e.Aircraft)
}

type Terminal struct {
	Name     string
	Position types.Point

	mu       sync.Mutex
	occupied bool
	holder   types.AircraftID
}

func NewTerminal(name string, pos types.Point) *Terminal {
	return &Terminal{Name: name, Position: pos}
}

// TryAcquire claims the terminal for id if it is free.
func (t *Terminal) TryAcquire(id types.AircraftID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.occupied {
		return false
	}
	t.occupied = true
	t.holder = id
	return true
}

func (t *Terminal) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.occupied = false
	t.holder = ""
}

func (t *Terminal) IsOccupied() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.occupied
}

func (t *Terminal) Holder() types.AircraftID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.holder
}

// TerminalPool hands out gates without queueing: an aircraft either gets
// the first free gate in order or a ResourceError. Which of several
// simultaneous callers wins a gate is not defined.
type TerminalPool struct {
	terminals []*Terminal
}

func NewTerminalPool(gates []types.Point) *TerminalPool {
	p := &TerminalPool{}
	for i, g := range gates {
		p.terminals = append(p.terminals, NewTerminal(fmt.Sprintf("T%d", i+1), g))
	}
	return p
}

func (p *TerminalPool) AcquireFirstFree(id types.AircraftID) (*Terminal, error) {
	for _, t := range p.terminals {
		if t.TryAcquire(id) {
			log.Infof("TERMINAL: %s assigned to %s", t.Name, id)
			return t, nil
		}
	}
	return nil, &ResourceError{Resource: "terminal", Aircraft: id}
}

func (p *TerminalPool) Release(t *Terminal) {
	log.Infof("TERMINAL: %s released by %s", t.Name, t.Holder())
	t.Release()
}

func (p *TerminalPool) Terminals() []*Terminal {
	return p.terminals
}

// Free counts unoccupied terminals.
func (p *TerminalPool) Free() int {
	n := 0
	for _, t := range p.terminals {
		if !t.IsOccupied() {
			n++
		}
	}
	return n
}
