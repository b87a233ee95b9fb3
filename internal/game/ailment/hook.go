package ailment

// TickContext describes the combatant an ailment is ticking on.
type TickContext struct {
	Ailment        string
	Target         string
	Vita           int
	MaxVita        int
	TurnsRemaining int
	Turn           int
}

// TickHook runs an ailment's scripted on-tick function and returns extra
// VITA damage to apply. Negative results are treated as zero.
type TickHook interface {
	OnTick(fn string, tc TickContext) (int, error)
}
