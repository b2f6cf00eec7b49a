// pkg/engine/mode.go
package engine

// Mode is the active layout mode. Exactly one is active per tick.
type Mode int

const (
	Orbiting Mode = iota
	Swarming
	Resetting
	StagedIntro
	StagedReset
	IdleCircular
)

func (m Mode) String() string {
	switch m {
	case Orbiting:
		return "orbiting"
	case Swarming:
		return "swarming"
	case Resetting:
		return "resetting"
	case StagedIntro:
		return "staged_intro"
	case StagedReset:
		return "staged_reset"
	case IdleCircular:
		return "idle_circular"
	default:
		return "unknown"
	}
}

// Constrained reports whether the mode belongs to the narrow-viewport layouts
func (m Mode) Constrained() bool {
	return m == StagedIntro || m == StagedReset || m == IdleCircular
}

// Phase is the sub-step of a staged mode
type Phase int

const (
	PhaseNone Phase = iota
	PhaseQueue
	PhaseFormation
	PhaseOpen
	PhaseRotate
	PhaseReturn
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseQueue:
		return "queue"
	case PhaseFormation:
		return "formation"
	case PhaseOpen:
		return "open"
	case PhaseRotate:
		return "rotate"
	case PhaseReturn:
		return "return"
	default:
		return "unknown"
	}
}
