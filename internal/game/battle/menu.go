package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// AIMenu is a Menu that lets an AI module choose for allies. It completes as
// soon as it is loaded. A failed decision becomes a pass.
type AIMenu struct {
	factors    ai.Factors
	difficulty ai.Difficulty
	src        dice.Source
	log        *zap.Logger

	modules  map[ids.ActorID]*ai.Module
	choice   Choice
	complete bool
}

// NewAIMenu creates an AIMenu.
//
// Precondition: src must be non-nil.
func NewAIMenu(f ai.Factors, d ai.Difficulty, src dice.Source, logger *zap.Logger) *AIMenu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIMenu{factors: f, difficulty: d, src: src, log: logger, modules: make(map[ids.ActorID]*ai.Module)}
}

// Load decides the action for the actor in v.
func (m *AIMenu) Load(v MenuView) {
	mod, ok := m.modules[v.Actor]
	if !ok {
		nm := ai.New(m.factors, m.difficulty, ai.Plain, ai.Plain, m.src)
		mod = &nm
		m.modules[v.Actor] = mod
	}
	choice, err := Decide(mod, v)
	if err != nil {
		m.log.Debug("auto menu passing", zap.Stringer("actor", v.Actor), zap.Error(err))
		choice = Choice{Actor: v.Actor, Type: action.Pass}
	}
	m.choice = choice
	m.complete = true
}

// Complete reports whether a choice is ready.
func (m *AIMenu) Complete() bool { return m.complete }

// Selection returns the ready choice.
func (m *AIMenu) Selection() Choice { return m.choice }

// Unload clears the ready choice.
func (m *AIMenu) Unload() {
	m.complete = false
	m.choice = Choice{}
}
