package system

import (
	"fmt"
	"time"
)

// Runner runs systems phase by phase. Systems in the same phase keep their
// registration order.
type Runner struct {
	phases [phaseCount][]System
	spent  [phaseCount]time.Duration
	n      int
}

func NewRunner() *Runner { return &Runner{} }

// Register appends s to its phase. It panics on an out-of-range phase, which
// is a wiring mistake.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic(fmt.Sprintf("system %T has invalid phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
	r.n++
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return r.n }

// Tick runs one full tick and returns the wall time it took.
func (r *Runner) Tick(dt time.Duration) time.Duration {
	start := time.Now()
	for p := range r.phases {
		t0 := time.Now()
		for _, s := range r.phases[p] {
			s.Update(dt)
		}
		r.spent[p] = time.Since(t0)
	}
	return time.Since(start)
}

// Spent returns how long phase took during the last Tick.
func (r *Runner) Spent(p Phase) time.Duration {
	if p < 0 || p >= phaseCount {
		return 0
	}
	return r.spent[p]
}

// Slowest returns the phase that took longest during the last Tick.
func (r *Runner) Slowest() (Phase, time.Duration) {
	best := PhaseInput
	for p := range r.spent {
		if r.spent[p] > r.spent[best] {
			best = Phase(p)
		}
	}
	return best, r.spent[best]
}
