package domain

// DefaultMaxActiveTasks is the fallback capacity limit when none is configured.
const DefaultMaxActiveTasks = 7

// Guard decides whether a user may hold one more task in an active status.
// It is pure: callers supply the authoritative active count, read from the
// store inside the same serialized unit that performs the write.
type Guard struct {
	Max int
}

// Decision is the outcome of a capacity evaluation.
type Decision struct {
	Allowed     bool
	ActiveCount int
}

func NewGuard(max int) Guard {
	if max <= 0 {
		max = DefaultMaxActiveTasks
	}
	return Guard{Max: max}
}

// Evaluate applies the capacity rule. activeCount must already exclude the
// task being mutated, so a task never counts against its own transition.
// Leaving the active set is always allowed.
func (g Guard) Evaluate(activeCount int, target Status) Decision {
	if !target.Active() {
		return Decision{Allowed: true, ActiveCount: activeCount}
	}
	return Decision{Allowed: activeCount < g.Max, ActiveCount: activeCount}
}
