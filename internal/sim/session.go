package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/battle"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
	"github.com/cory-johannsen/turnbattle/internal/game/victory"
	"github.com/cory-johannsen/turnbattle/internal/render"
)

// ErrUnknownEncounter is returned by NewSession for an encounter id that is
// not in the content.
var ErrUnknownEncounter = errors.New("sim: unknown encounter")

// Store loads and saves the ally party between sessions.
type Store interface {
	ApplyParty(ctx context.Context, party *person.Party) error
	SaveParty(ctx context.Context, party *person.Party) error
}

// Options configure a Session. Hook, Store, Output and Logger are optional.
type Options struct {
	Encounter      string
	Battle         battle.Config
	Victory        victory.Config
	AllyDifficulty ai.Difficulty
	Source         dice.Source
	Hook           ailment.TickHook
	Store          Store
	Output         io.Writer
	Color          bool
	Logger         *zap.Logger
}

// Result summarises a finished session.
type Result struct {
	Outcome     battle.Outcome
	Turns       int
	Cards       []*victory.Card
	Loot        person.LootResult
	Allies      *person.Party
	Enemies     *person.Party
	Interrupted bool
}

// Session runs one encounter: the battle, then the victory screen when the
// allies win.
type Session struct {
	opts        Options
	log         *zap.Logger
	battle      *battle.Battle
	screen      *victory.Screen
	presenter   *render.Presenter
	sound       *render.SoundQueue
	allies      *person.Party
	enemies     *person.Party
	interrupted bool
	done        bool
}

// NewSession builds the encounter's parties, overlays stored progress and
// starts the battle.
//
// Postcondition: returns a started session, ErrUnknownEncounter, or the
// configuration error from battle.New.
func NewSession(ctx context.Context, c *Content, opts Options) (*Session, error) {
	enc, ok := c.Encounters[opts.Encounter]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncounter, opts.Encounter)
	}
	allies, enemies, err := enc.Build(c.Templates)
	if err != nil {
		return nil, fmt.Errorf("building encounter %q: %w", enc.ID, err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Store != nil {
		if err := opts.Store.ApplyParty(ctx, allies); err != nil {
			return nil, fmt.Errorf("loading progress: %w", err)
		}
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	s := &Session{
		opts:      opts,
		log:       log.With(zap.String("encounter", enc.ID)),
		presenter: render.NewPresenter(out, opts.Color),
		sound:     render.NewSoundQueue(log),
		allies:    allies,
		enemies:   enemies,
	}
	b, err := battle.New(opts.Battle, battle.Deps{
		Allies:    allies,
		Enemies:   enemies,
		Actions:   c.Actions,
		Ailments:  c.Ailments,
		Menu:      battle.NewAIMenu(opts.Battle.AI, opts.AllyDifficulty, opts.Source, log),
		Presenter: s.presenter,
		Sound:     s.sound,
		Hook:      opts.Hook,
		Source:    opts.Source,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	s.presenter.Bind(b)
	b.OnTransition(func(from, to battle.TurnState) {
		switch to {
		case battle.SelectActionAlly:
			s.headline(render.Bold, "-- Turn %d --", b.Turn())
			render.Status(out, b.Actors(), opts.Color)
		case battle.Victory, battle.Loss, battle.Running:
			s.headline(render.BrightYellow+render.Bold, "== %s ==", b.Outcome())
		}
	})
	if err := b.Start(); err != nil {
		return nil, err
	}
	s.battle = b
	s.log.Info("session started", zap.String("battle", b.ID()))
	return s, nil
}

// Battle returns the running battle.
func (s *Session) Battle() *battle.Battle { return s.battle }

// Sounds returns the sound effects queued so far.
func (s *Session) Sounds() []string { return s.sound.Played() }

// Step advances the session by one frame and reports whether it has more
// work to do.
func (s *Session) Step(cycle time.Duration) bool {
	if s.done {
		return false
	}
	if s.battle.TurnState() != battle.Finished {
		s.battle.Update(cycle)
		if s.battle.TurnState() != battle.Finished {
			return true
		}
		if s.interrupted || s.battle.Outcome() != battle.OutcomeVictory {
			s.done = true
			return false
		}
		if err := s.openVictory(); err != nil {
			s.log.Warn("victory screen unavailable", zap.Error(err))
			s.done = true
			return false
		}
		return true
	}
	if s.screen.Update(cycle) {
		for _, c := range s.screen.Cards() {
			fmt.Fprintf(s.output(), "%s gains %d EXP (level %d -> %d)\n",
				c.Person.Name, c.Awarded, c.StartLevel, c.Person.Level)
		}
		loot := s.screen.Loot()
		fmt.Fprintf(s.output(), "Found %d credits and %d item stacks.\n", loot.Credits, len(loot.Items))
		s.done = true
		return false
	}
	return true
}

func (s *Session) headline(color, format string, args ...any) {
	line := render.Colorf(color, format, args...)
	if !s.opts.Color {
		line = render.StripANSI(line)
	}
	fmt.Fprintln(s.output(), line)
}

func (s *Session) output() io.Writer {
	if s.opts.Output == nil {
		return io.Discard
	}
	return s.opts.Output
}

func (s *Session) openVictory() error {
	var victors, losers []*person.Person
	for _, a := range s.battle.Allies() {
		if a.Alive() {
			victors = append(victors, a.Person)
		}
	}
	for _, a := range s.battle.Enemies() {
		losers = append(losers, a.Person)
	}
	screen, err := victory.New(s.opts.Victory, victors, losers, s.allies, s.opts.Source, s.log)
	if err != nil {
		return err
	}
	s.screen = screen
	return nil
}

// Interrupt tears the battle down; the session finishes without rewards.
// It must be called from the goroutine that calls Step.
func (s *Session) Interrupt() {
	if s.battle.TurnState() == battle.Finished {
		return
	}
	if err := s.battle.Destruct(); err != nil {
		s.log.Warn("interrupting battle", zap.Error(err))
		return
	}
	s.interrupted = true
}

// Result returns the session summary.
func (s *Session) Result() Result {
	r := Result{
		Outcome:     s.battle.Outcome(),
		Turns:       s.battle.Turn(),
		Allies:      s.allies,
		Enemies:     s.enemies,
		Interrupted: s.interrupted,
	}
	if s.screen != nil {
		r.Cards = s.screen.Cards()
		r.Loot = s.screen.Loot()
	}
	return r
}

// Save persists the allies when the session ended in a finished victory.
//
// Postcondition: returns nil without writing when there is no store or no
// completed victory.
func (s *Session) Save(ctx context.Context) error {
	if s.opts.Store == nil || s.screen == nil || s.screen.State() != victory.Finished {
		return nil
	}
	if err := s.opts.Store.SaveParty(ctx, s.allies); err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	s.log.Info("progress saved", zap.String("party", s.allies.ID))
	return nil
}
