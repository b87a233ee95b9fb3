// Package battle implements the turn-resolution state machine: action
// selection by menu and AI, ordered resolution of buffered actions into
// events, and the presentation timeline that paces them.
package battle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

var (
	// ErrConfiguration wraps every reason New refuses to build a battle.
	ErrConfiguration = errors.New("battle: configuration error")
	// ErrNotStarted is returned by operations that need a started battle.
	ErrNotStarted = errors.New("battle: not started")
	// ErrAlreadyStarted is returned by Start on a started battle.
	ErrAlreadyStarted = errors.New("battle: already started")
)

// Deps are the collaborators of a Battle. Presenter, Sound, Hook and Logger
// are optional.
type Deps struct {
	Allies    *person.Party
	Enemies   *person.Party
	Actions   *action.Registry
	Ailments  *ailment.Registry
	Menu      Menu
	Presenter Presenter
	Sound     Sound
	Hook      ailment.TickHook
	Source    dice.Source
	Logger    *zap.Logger
}

// Battle is the turn-state machine. It is driven by Update from a single
// goroutine and owns its actors, buffer and events.
type Battle struct {
	id       string
	cfg      Config
	log      *zap.Logger
	src      dice.Source
	roller   *dice.Roller
	actions  *action.Registry
	ailments *ailment.Registry
	menu     Menu
	hook     ailment.TickHook
	parties  [2]*person.Party

	actorIDs *ids.Allocator
	actors   []Actor
	byID     map[ids.ActorID]int

	state     TurnState
	stage     phaseStage
	phaseDone bool
	outcome   Outcome
	turn      int
	destroy   bool
	elapsed   time.Duration

	buffer    *Buffer
	events    *EventBuffer
	timeline  timeline
	menuActor ids.ActorID

	onTransition []func(from, to TurnState)
}

// New builds a stopped battle between deps.Allies and deps.Enemies.
//
// Postcondition: returns an error wrapping ErrConfiguration when cfg is
// invalid, a required collaborator is missing, or a person references an
// unknown skill or AI setting.
func New(cfg Config, deps Deps) (*Battle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	var missing []string
	if deps.Allies == nil || len(deps.Allies.Members) == 0 {
		missing = append(missing, "ally party")
	}
	if deps.Enemies == nil || len(deps.Enemies.Members) == 0 {
		missing = append(missing, "enemy party")
	}
	if deps.Actions == nil {
		missing = append(missing, "action registry")
	}
	if deps.Ailments == nil {
		missing = append(missing, "ailment registry")
	}
	if deps.Menu == nil {
		missing = append(missing, "menu")
	}
	if deps.Source == nil {
		missing = append(missing, "dice source")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Battle{
		id:       uuid.NewString(),
		cfg:      cfg,
		src:      deps.Source,
		actions:  deps.Actions,
		ailments: deps.Ailments,
		menu:     deps.Menu,
		hook:     deps.Hook,
		parties:  [2]*person.Party{deps.Allies, deps.Enemies},
		actorIDs: ids.NewAllocator(),
		byID:     make(map[ids.ActorID]int),
		buffer:   NewBuffer(),
		timeline: timeline{delays: cfg.Delays, presenter: deps.Presenter, sound: deps.Sound},
	}
	b.log = logger.With(zap.String("battle", b.id))
	b.roller = dice.NewLoggedRoller(deps.Source, b.log)
	b.events = NewEventBuffer(ids.NewAllocator(), b.perform)

	total := len(deps.Allies.Members) + len(deps.Enemies.Members)
	b.actors = make([]Actor, 0, total)
	for _, side := range []Side{Allies, Enemies} {
		for i, p := range b.parties[side].Members {
			if err := b.addActor(p, side, i); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
			}
		}
	}
	return b, nil
}

func (b *Battle) addActor(p *person.Person, side Side, index int) error {
	var skills []*action.SkillDef
	for _, id := range p.SkillIDs() {
		s, ok := b.actions.Skill(id)
		if !ok {
			return fmt.Errorf("%s: unknown skill %q", p.ID, id)
		}
		skills = append(skills, s)
	}
	diff, err := ai.ParseDifficulty(p.AI.Difficulty)
	if err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	primary, err := ai.ParsePersonality(p.AI.Primary)
	if err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	secondary, err := ai.ParsePersonality(p.AI.Secondary)
	if err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	id := b.actorIDs.NextActor()
	b.byID[id] = len(b.actors)
	b.actors = append(b.actors, Actor{
		ID:        id,
		Person:    p,
		Side:      side,
		Index:     index,
		Sheet:     attribute.NewSheet(p.Stats()),
		Ailments:  ailment.NewActiveSet(),
		Selection: NewSelection(),
		AI:        ai.New(b.cfg.AI, diff, primary, secondary, b.src),
		skills:    skills,
	})
	return nil
}

// Start moves a stopped battle to Begin.
func (b *Battle) Start() error {
	if b.state != Stopped {
		return ErrAlreadyStarted
	}
	b.log.Info("battle starting",
		zap.Int("allies", len(b.parties[Allies].Members)),
		zap.Int("enemies", len(b.parties[Enemies].Members)),
	)
	b.transition(Begin)
	return nil
}

// Destruct requests teardown. The battle moves to Destruct at the next Update
// and then to Finished; in-flight resolution is halted, not rolled back.
func (b *Battle) Destruct() error {
	if b.state == Stopped {
		return ErrNotStarted
	}
	if b.state == Destruct || b.state == Finished {
		return nil
	}
	b.destroy = true
	b.phaseDone = true
	return nil
}

// Update advances the battle by one frame of cycle duration. It performs at
// most one TurnState transition and never fails; a phase that cannot progress
// simply waits for the next call.
func (b *Battle) Update(cycle time.Duration) {
	if b.state == Stopped || b.state == Finished {
		return
	}
	if b.phaseDone {
		b.transition(b.next())
		return
	}
	switch b.state {
	case Begin:
		b.begin()
	case GeneralUpkeep:
		b.generalUpkeep()
	case Upkeep:
		b.upkeep(cycle)
	case SelectActionAlly:
		b.selectAllies()
	case SelectActionEnemy:
		b.selectEnemies()
	case ProcessActions:
		b.processActions(cycle)
	case CleanUp:
		b.cleanUp(cycle)
	case Running, Victory, Loss:
		b.outcomeScreen(cycle)
	case Destruct:
		b.teardown()
	}
}

func (b *Battle) next() TurnState {
	if b.destroy && b.state != Destruct {
		return Destruct
	}
	switch b.state {
	case Begin:
		return GeneralUpkeep
	case Running, Victory, Loss:
		return Destruct
	case Destruct:
		return Finished
	}
	if b.outcome != OutcomeNone {
		return b.outcome.screen()
	}
	switch b.state {
	case GeneralUpkeep:
		return Upkeep
	case Upkeep:
		return SelectActionAlly
	case SelectActionAlly:
		return SelectActionEnemy
	case SelectActionEnemy:
		return ProcessActions
	case ProcessActions:
		return CleanUp
	default:
		return GeneralUpkeep
	}
}

func (b *Battle) transition(to TurnState) {
	from := b.state
	b.state = to
	b.stage = stageEnter
	b.phaseDone = false
	b.log.Debug("turn state",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("turn", b.turn),
	)
	for _, fn := range b.onTransition {
		fn(from, to)
	}
}

// OnTransition registers fn to run after every TurnState change.
func (b *Battle) OnTransition(fn func(from, to TurnState)) {
	b.onTransition = append(b.onTransition, fn)
}

// ID returns the battle's session id.
func (b *Battle) ID() string { return b.id }

// TurnState returns the active phase.
func (b *Battle) TurnState() TurnState { return b.state }

// PhaseDone reports whether the active phase has finished its work.
func (b *Battle) PhaseDone() bool { return b.phaseDone }

// Outcome returns the latched outcome.
func (b *Battle) Outcome() Outcome { return b.outcome }

// Turn returns the 1-based turn counter; 0 before Begin runs.
func (b *Battle) Turn() int { return b.turn }

// Buffer returns the action buffer.
func (b *Battle) Buffer() *Buffer { return b.buffer }

// Events returns the event group being presented.
func (b *Battle) Events() []*Event {
	return append([]*Event(nil), b.timeline.events...)
}

// Party returns the party on side.
func (b *Battle) Party(side Side) *person.Party { return b.parties[side] }

// Actors returns every actor, allies first, in roster order.
func (b *Battle) Actors() []*Actor {
	out := make([]*Actor, len(b.actors))
	for i := range b.actors {
		out[i] = &b.actors[i]
	}
	return out
}

// Allies returns the ally actors in roster order.
func (b *Battle) Allies() []*Actor { return b.side(Allies) }

// Enemies returns the enemy actors in roster order.
func (b *Battle) Enemies() []*Actor { return b.side(Enemies) }

func (b *Battle) side(s Side) []*Actor {
	var out []*Actor
	for i := range b.actors {
		if b.actors[i].Side == s {
			out = append(out, &b.actors[i])
		}
	}
	return out
}

// Actor returns the actor with id, or nil.
func (b *Battle) Actor(id ids.ActorID) *Actor {
	i, ok := b.byID[id]
	if !ok {
		return nil
	}
	return &b.actors[i]
}

// Living returns the number of living actors on side.
func (b *Battle) Living(s Side) int {
	n := 0
	for i := range b.actors {
		if b.actors[i].Side == s && b.actors[i].Alive() {
			n++
		}
	}
	return n
}

// latch records the outcome. The first outcome wins.
func (b *Battle) latch(o Outcome) {
	if b.outcome != OutcomeNone {
		b.log.Debug("outcome already latched", zap.Stringer("kept", b.outcome), zap.Stringer("ignored", o))
		return
	}
	b.outcome = o
	b.log.Info("outcome latched", zap.Stringer("outcome", o), zap.Int("turn", b.turn))
}

func (b *Battle) emit(e *Event) *Event {
	b.events.Emit(e)
	b.log.Debug("event",
		zap.Uint64("seq", e.Seq),
		zap.Stringer("type", e.Type),
		zap.Stringer("user", e.User),
		zap.Int("amount", e.Amount),
	)
	return e
}

// present moves emitted events to the timeline and advances it by cycle.
// It reports whether presentation is complete.
func (b *Battle) present(cycle time.Duration) bool {
	if b.stage != stagePresenting {
		b.timeline.load(b.events.Take())
		b.stage = stagePresenting
	}
	return b.timeline.advance(cycle)
}
