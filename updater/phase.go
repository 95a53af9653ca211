package updater

import "fmt"

// phase is where the loop currently is in its tick cycle. It exists so logs
// always say what the loop was doing when something went wrong.
type phase int

const (
	phaseIdle phase = iota
	phaseResolving
	phaseComparing
	phasePublishing
	phaseSleeping
	phaseStopped
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseResolving:
		return "resolving"
	case phaseComparing:
		return "comparing"
	case phasePublishing:
		return "publishing"
	case phaseSleeping:
		return "sleeping"
	case phaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown<%d>", int(p))
	}
}
