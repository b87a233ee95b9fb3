package battle

// TurnState is the phase of the battle. Exactly one is active at a time.
type TurnState int

const (
	Stopped TurnState = iota
	Begin
	GeneralUpkeep
	Upkeep
	SelectActionAlly
	SelectActionEnemy
	ProcessActions
	CleanUp
	Running
	Victory
	Loss
	Destruct
	Finished
)

var turnStateNames = []string{
	"STOPPED", "BEGIN", "GENERAL_UPKEEP", "UPKEEP", "SELECT_ACTION_ALLY",
	"SELECT_ACTION_ENEMY", "PROCESS_ACTIONS", "CLEAN_UP", "RUNNING", "VICTORY",
	"LOSS", "DESTRUCT", "FINISHED",
}

func (s TurnState) String() string {
	if s < 0 || int(s) >= len(turnStateNames) {
		return "UNKNOWN"
	}
	return turnStateNames[s]
}

// Terminal reports whether the battle has an outcome screen or is shutting down.
func (s TurnState) Terminal() bool {
	return s >= Running
}

// Outcome is the latched result of a battle.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeLoss
	OutcomeAlliesRun
	OutcomeEnemiesRun
)

var outcomeNames = []string{"NONE", "VICTORY", "LOSS", "ALLIES_RUN", "ENEMIES_RUN"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "UNKNOWN"
	}
	return outcomeNames[o]
}

// screen returns the turn state that displays the outcome.
func (o Outcome) screen() TurnState {
	switch o {
	case OutcomeVictory:
		return Victory
	case OutcomeLoss:
		return Loss
	default:
		return Running
	}
}

// phaseStage is the sub-state within the current turn state.
type phaseStage int

const (
	stageEnter      phaseStage = iota // the phase has not started its work
	stageWorking                      // selection or resolution in progress
	stagePresenting                   // waiting for the timeline to finish
)
