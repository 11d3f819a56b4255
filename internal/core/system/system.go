package system

import "time"

// Phase orders systems inside one tick.
type Phase int

const (
	PhaseInput      Phase = iota // drain packet queues
	PhasePreUpdate               // dispatch last tick's events
	PhaseUpdate                  // boss phases, carriers, danmaku
	PhasePostUpdate              // pickups, regen, respawn
	PhaseOutput                  // flush session buffers
	PhasePersist                 // autosave
	PhaseCleanup                 // recycle entity ids
	phaseCount
)

var phaseNames = [phaseCount]string{"input", "pre-update", "update", "post-update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p >= 0 && p < phaseCount {
		return phaseNames[p]
	}
	return "unknown"
}

// System is one unit of per-tick work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
