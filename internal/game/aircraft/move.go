package aircraft

import (
	"context"
	"time"

	"airport-sim/internal/game/airspace"
	"airport-sim/internal/game/graph"
	"airport-sim/pkg/types"

	"github.com/labstack/gommon/log"
)

type progress int

const (
	moving progress = iota
	rerouted
	arrived
)

// Fly moves the airplane along its route until it has left the airport,
// ctx is done, or a milestone fails. On failure every lease is released
// and the error is returned.
func (ac *Airplane) Fly(ctx context.Context) error {
	err := ac.fly(ctx)
	if err == nil || ctx.Err() != nil {
		return nil
	}
	ac.abort(err)
	return err
}

func (ac *Airplane) fly(ctx context.Context) error {
	for {
		p, err := ac.followPath(ctx)
		if err != nil {
			return err
		}
		switch p {
		case arrived:
			return nil
		case rerouted:
			continue
		}

		// Route exhausted without reaching a milestone.
		ac.mu.Lock()
		ac.stalled = true
		ac.mu.Unlock()
		log.Warnf("STALL: %s stopped at %s in %s", ac.Plan.Callsign, ac.Position(), ac.Status())
		<-ctx.Done()
		return ctx.Err()
	}
}

// followPath walks the segments of the current path, checking milestones
// after every tick. It returns as soon as a milestone replaces the path
// or the airplane leaves.
func (ac *Airplane) followPath(ctx context.Context) (progress, error) {
	path := ac.path
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i].Position.Vec2(), path[i+1].Position.Vec2()
		length := from.DistanceTo(to)
		if length == 0 {
			continue
		}
		ac.setHeading(from.AngleTo(to))

		dx, dy := to.X-from.X, to.Y-from.Y
		for traveled := 0.0; traveled < length; {
			if err := sleep(ctx, ac.tick); err != nil {
				return moving, err
			}
			traveled += ac.env.Timing.Step
			ac.setPosition(types.NewVec2(from.X+dx*traveled/length, from.Y+dy*traveled/length))

			p, err := ac.milestones(ctx, path[i+1])
			if err != nil || p != moving {
				return p, err
			}
		}
	}
	return moving, nil
}

func (ac *Airplane) milestones(ctx context.Context, next graph.Node) (progress, error) {
	l := ac.env.Layout
	pos := ac.Position()

	switch status := ac.Status(); {
	case status == LANDING && pos.Equals(ac.landing) && next.Position == ac.landing:
		ac.tick = ac.env.Timing.TaxiTick
		if err := ac.replan(l.HoldingPoint); err != nil {
			return moving, err
		}
		ac.setStatus(LANDED)
		return rerouted, nil

	case status == LANDED && pos.Y == float64(l.RunwayBorder()):
		ac.mu.Lock()
		ac.holdsRunway = false
		ac.mu.Unlock()
		ac.env.Runway.Vacate(ac.ID)
		ac.setStatus(LEFTRUNWAY)

	case status == LEFTRUNWAY && pos.Equals(l.HoldingPoint) && ac.leasedTerminal() == nil:
		term, err := ac.env.Terminals.AcquireFirstFree(ac.ID)
		if err != nil {
			return moving, err
		}
		ac.mu.Lock()
		ac.terminal = term
		ac.mu.Unlock()
		if err := ac.replan(term.Position); err != nil {
			return moving, err
		}
		return rerouted, nil

	case status == LEFTRUNWAY && ac.atTerminal(pos):
		return ac.offboard(ctx)

	case status == DEPARTED && !ac.checkpointDone && pos.Equals(l.Checkpoint):
		ac.checkpointDone = true
		log.Infof("CHECKPOINT: %s requesting runway", ac.Plan.Callsign)
		if err := ac.RequestRunway(ctx); err != nil {
			return moving, err
		}

	case status == DEPARTED && !ac.finalDone && pos.Equals(l.FinalApproach):
		ac.finalDone = true
		if err := sleep(ctx, ac.env.Timing.FinalCheck); err != nil {
			return moving, err
		}
		ac.tick = ac.env.Timing.Tick

	case status == DEPARTED && pos.Equals(l.Endpoint):
		ac.mu.Lock()
		holds := ac.holdsRunway
		ac.holdsRunway = false
		ac.mu.Unlock()
		if holds {
			ac.env.Runway.Vacate(ac.ID)
		}
		ac.setStatus(HASLEFT)
		return arrived, nil
	}
	return moving, nil
}

// offboard dwells at the terminal, then routes to the runway end and gives
// the gate back.
func (ac *Airplane) offboard(ctx context.Context) (progress, error) {
	ac.setStatus(OFFBOARDING)
	dwell := time.Duration(ac.Plan.Passengers) * ac.env.Timing.BoardingPerPassenger
	if err := sleep(ctx, dwell); err != nil {
		return moving, err
	}
	if err := ac.replan(ac.env.Layout.Endpoint); err != nil {
		return moving, err
	}
	ac.setStatus(DEPARTED)

	ac.mu.Lock()
	term := ac.terminal
	ac.terminal = nil
	ac.mu.Unlock()
	ac.env.Terminals.Release(term)
	return rerouted, nil
}

func (ac *Airplane) leasedTerminal() *airspace.Terminal {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return ac.terminal
}

func (ac *Airplane) atTerminal(pos types.Vec2) bool {
	t := ac.leasedTerminal()
	return t != nil && pos.Equals(t.Position)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
