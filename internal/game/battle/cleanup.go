package battle

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// cleanUp ends the turn: defend stances break, selections reset and the
// buffer keeps only deferred entries.
func (b *Battle) cleanUp(cycle time.Duration) {
	if b.stage == stageEnter {
		for i := range b.actors {
			a := &b.actors[i]
			if a.defending {
				b.emit(&Event{Type: BreakDefend, User: a.ID, Happens: true})
			}
			a.Selection.Reset()
			a.AI.ResetForNewTurn(ai.Status{Turn: b.turn + 1})
		}
		b.buffer.Update()
		b.turn++
	}
	if b.present(cycle) {
		b.phaseDone = true
	}
}

// outcomeScreen holds the victory, loss or run screen for Delays.Outcome.
func (b *Battle) outcomeScreen(cycle time.Duration) {
	if b.stage == stageEnter {
		b.log.Info("battle over", zap.Stringer("outcome", b.outcome), zap.Int("turn", b.turn))
		b.unloadMenu()
		b.elapsed = 0
		b.stage = stageWorking
	}
	b.elapsed += cycle
	if b.elapsed >= b.cfg.Delays.Outcome {
		b.phaseDone = true
	}
}

// teardown releases collaborators and per-battle state.
func (b *Battle) teardown() {
	b.unloadMenu()
	b.buffer.Clear()
	b.timeline.load(nil)
	b.events.Take()
	for i := range b.actors {
		a := &b.actors[i]
		a.Selection.Reset()
		a.AI.ResetForNewTurn(ai.Status{})
	}
	b.log.Info("battle destructed", zap.Stringer("outcome", b.outcome), zap.Int("turn", b.turn))
	b.phaseDone = true
}

func (b *Battle) unloadMenu() {
	if b.menuActor.Valid() {
		b.menu.Unload()
		b.menuActor = ids.None
	}
}
