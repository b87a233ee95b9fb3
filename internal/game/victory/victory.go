// Package victory resolves the rewards of a won battle: experience per
// victor, loot from the defeated, and the paced screen that applies them.
package victory

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

// State is the stage of the victory screen.
type State int

const (
	DimBattle State = iota
	FadeInHeader
	SlideInCard
	ProcessCard
	Finished
)

var stateNames = []string{"DIM_BATTLE", "FADE_IN_HEADER", "SLIDE_IN_CARD", "PROCESS_CARD", "FINISHED"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Config holds the victory tunables.
type Config struct {
	ExpFactor    float64 // per-level bonus on a loser's xp_drop
	PeelFraction float64 // share of remaining experience applied per tick
	Dim          time.Duration
	Header       time.Duration
	Slide        time.Duration
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		ExpFactor:    0.60,
		PeelFraction: 0.01,
		Dim:          500 * time.Millisecond,
		Header:       400 * time.Millisecond,
		Slide:        300 * time.Millisecond,
	}
}

// Validate reports every out-of-range tunable.
func (c Config) Validate() error {
	var errs []error
	if c.ExpFactor < 0 {
		errs = append(errs, fmt.Errorf("exp_factor must be >= 0, got %f", c.ExpFactor))
	}
	if c.PeelFraction <= 0 || c.PeelFraction > 1 {
		errs = append(errs, fmt.Errorf("peel_fraction must be in (0, 1], got %f", c.PeelFraction))
	}
	if c.Dim < 0 || c.Header < 0 || c.Slide < 0 {
		errs = append(errs, errors.New("durations must be >= 0"))
	}
	return errors.Join(errs...)
}

// Experience returns what victor earns for defeating losers:
// the sum of xp_drop * (1 + (level-1)*ExpFactor) scaled by the victor's
// exp_mod, rounded down.
func Experience(cfg Config, victor *person.Person, losers []*person.Person) int {
	total := 0.0
	for _, l := range losers {
		total += float64(l.XPDrop) * (1 + float64(l.Level-1)*cfg.ExpFactor)
	}
	return int(math.Floor(total*victor.ExpMod + 1e-9))
}

// Card tracks the experience still to be applied to one victor.
type Card struct {
	Person       *person.Person
	Awarded      int
	Remaining    int
	StartLevel   int
	LevelsGained int
}

// Screen is the victory state machine. Update drives it from the game loop.
type Screen struct {
	cfg     Config
	log     *zap.Logger
	party   *person.Party
	cards   []*Card
	loot    person.LootResult
	state   State
	elapsed time.Duration
}

// New computes experience for each victor and rolls loot from every loser.
//
// Precondition: src must be non-nil.
// Postcondition: returns an error if cfg is invalid or there are no victors.
func New(cfg Config, victors, losers []*person.Person, party *person.Party, src dice.Source, logger *zap.Logger) (*Screen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("victory: %w", err)
	}
	if len(victors) == 0 {
		return nil, errors.New("victory: no victors")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Screen{cfg: cfg, log: logger, party: party}
	for _, v := range victors {
		exp := Experience(cfg, v, losers)
		s.cards = append(s.cards, &Card{Person: v, Awarded: exp, Remaining: exp, StartLevel: v.Level})
	}
	for _, l := range losers {
		if l.Loot != nil {
			s.loot.Merge(person.GenerateLoot(*l.Loot, src))
		}
	}
	s.log.Info("victory",
		zap.Int("victors", len(victors)),
		zap.Int("losers", len(losers)),
		zap.Int("credits", s.loot.Credits),
		zap.Int("item_stacks", len(s.loot.Items)),
	)
	return s, nil
}

// State returns the current stage.
func (s *Screen) State() State { return s.state }

// Cards returns the per-victor cards.
func (s *Screen) Cards() []*Card { return s.cards }

// Loot returns the rolled loot.
func (s *Screen) Loot() person.LootResult { return s.loot }

// Update advances the screen by cycle and reports whether it is Finished.
// During ProcessCard every call applies one peel to each unfinished card.
func (s *Screen) Update(cycle time.Duration) bool {
	switch s.state {
	case DimBattle:
		s.wait(cycle, s.cfg.Dim, FadeInHeader)
	case FadeInHeader:
		s.wait(cycle, s.cfg.Header, SlideInCard)
	case SlideInCard:
		s.wait(cycle, s.cfg.Slide, ProcessCard)
	case ProcessCard:
		if s.peel() {
			s.credit()
			s.state = Finished
		}
	}
	return s.state == Finished
}

func (s *Screen) wait(cycle, d time.Duration, next State) {
	s.elapsed += cycle
	if s.elapsed >= d {
		s.elapsed = 0
		s.state = next
	}
}

// peel applies max(1, floor(PeelFraction*remaining)) to each card and reports
// whether every card is exhausted.
func (s *Screen) peel() bool {
	done := true
	for _, c := range s.cards {
		if c.Remaining <= 0 {
			continue
		}
		step := max(1, int(math.Floor(s.cfg.PeelFraction*float64(c.Remaining))))
		step = min(step, c.Remaining)
		c.Remaining -= step
		if n := c.Person.AddExperience(step); n > 0 {
			c.LevelsGained += n
			s.log.Info("level up", zap.String("person", c.Person.ID), zap.Int("level", c.Person.Level))
		}
		if c.Remaining > 0 {
			done = false
		}
	}
	return done
}

func (s *Screen) credit() {
	if s.party == nil {
		return
	}
	s.party.Credits += s.loot.Credits
	for _, it := range s.loot.Items {
		if err := s.party.AddItem(it.ItemDefID, it.Quantity); err != nil {
			s.log.Warn("crediting loot", zap.String("item", it.ItemDefID), zap.Error(err))
		}
	}
}
