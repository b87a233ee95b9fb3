package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/battle"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// Roster resolves actor ids to actors.
type Roster interface {
	Actor(id ids.ActorID) *battle.Actor
}

// Presenter writes one line per presented battle event.
type Presenter struct {
	w      io.Writer
	color  bool
	roster Roster
}

// NewPresenter creates a Presenter writing to w. When color is false the
// output carries no escape sequences.
func NewPresenter(w io.Writer, color bool) *Presenter {
	return &Presenter{w: w, color: color}
}

// Bind attaches the roster used to name actors. Unbound presenters print ids.
func (p *Presenter) Bind(r Roster) { p.roster = r }

// Present implements battle.Presenter.
func (p *Presenter) Present(e battle.Event) {
	line := p.Line(e)
	if line == "" {
		return
	}
	if !p.color {
		line = StripANSI(line)
	}
	fmt.Fprintln(p.w, line)
}

func (p *Presenter) name(id ids.ActorID) string {
	if p.roster != nil {
		if a := p.roster.Actor(id); a != nil {
			return Colorize(Bold, a.Name())
		}
	}
	return id.String()
}

func (p *Presenter) names(targets []ids.ActorID) string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, p.name(t))
	}
	return strings.Join(out, ", ")
}

// Line returns the styled text for e, or "" for events that are not shown.
func (p *Presenter) Line(e battle.Event) string {
	user, target := p.name(e.User), p.name(e.Target())
	switch e.Type {
	case battle.ActionBegin, battle.ActionEnd:
		return ""
	case battle.SkillUse:
		return fmt.Sprintf("%s uses %s!", user, Colorize(Cyan, e.Skill.Name))
	case battle.ItemUse:
		return fmt.Sprintf("%s uses a %s.", user, Colorize(Cyan, e.Item.Name))
	case battle.StandardDamage:
		return fmt.Sprintf("%s takes %s damage.", target, Colorf(Red, "%d", e.Amount))
	case battle.CriticalDamage:
		return fmt.Sprintf("Critical! %s takes %s damage.", target, Colorf(BrightRed+Bold, "%d", e.Amount))
	case battle.PoisonDamage, battle.BurnDamage, battle.AilmentDamage:
		return fmt.Sprintf("%s suffers %s from %s.", target, Colorf(Magenta, "%d", e.Amount), e.Ailment)
	case battle.HealHealth, battle.RegenVita:
		return fmt.Sprintf("%s recovers %s VITA.", target, Colorf(BrightGreen, "%d", e.Amount))
	case battle.RestoreQtdr, battle.RegenQtdr:
		return fmt.Sprintf("%s recovers %s QTDR.", target, Colorf(Blue, "%d", e.Amount))
	case battle.Infliction:
		return fmt.Sprintf("%s is afflicted with %s.", target, Colorize(Magenta, e.Ailment))
	case battle.AlreadyInflicted:
		return fmt.Sprintf("%s already has %s.", target, e.Ailment)
	case battle.CureInfliction:
		return fmt.Sprintf("%s is no longer afflicted with %s.", target, e.Ailment)
	case battle.Death:
		return Colorf(Red, "%s falls!", StripANSI(target))
	case battle.PartyDeath:
		return Colorf(BrightRed+Bold, "The %s have been wiped out!", e.Side)
	case battle.Revive:
		return fmt.Sprintf("%s is revived!", target)
	case battle.BeginDefend:
		return fmt.Sprintf("%s braces for impact.", user)
	case battle.BreakDefend:
		return ""
	case battle.BeginGuard:
		return fmt.Sprintf("%s guards %s.", user, target)
	case battle.BreakGuard:
		return fmt.Sprintf("%s stops guarding %s.", user, target)
	case battle.FailGuard:
		return fmt.Sprintf("%s cannot guard %s.", user, target)
	case battle.SkillMiss, battle.ActionMiss:
		if len(e.Targets) > 0 {
			return fmt.Sprintf("%s misses %s.", user, target)
		}
		return fmt.Sprintf("%s misses.", user)
	case battle.SkillCooldown:
		return Colorf(Dim, "%s is still recovering (%d).", StripANSI(user), e.Amount)
	case battle.Fizzle:
		return Colorf(Dim, "%s's action fizzles.", StripANSI(user))
	case battle.AttemptRun:
		return fmt.Sprintf("%s tries to run (%d%%)...", user, e.Amount)
	case battle.SucceedRun:
		return Colorize(Yellow, "Got away safely!")
	case battle.FailRun:
		return "Couldn't escape!"
	case battle.PassTurn:
		return Colorf(Dim, "%s waits.", StripANSI(user))
	}
	return fmt.Sprintf("%s %s -> %s", e.Type, user, p.names(e.Targets))
}

// Status writes one gauge line per actor.
func Status(w io.Writer, actors []*battle.Actor, color bool) {
	for _, a := range actors {
		maxVita := a.Sheet.Max.Get(attribute.VITA)
		line := fmt.Sprintf("%-8s %-12s VITA %s %4d/%-4d QTDR %3d",
			a.Side, a.Name(), Bar(a.Vita(), maxVita, 20), a.Vita(), maxVita,
			a.Sheet.Current.Get(attribute.QTDR))
		var active []string
		for _, ail := range a.Ailments.All() {
			active = append(active, ail.Def.ID)
		}
		if len(active) > 0 {
			line += " " + Colorize(Magenta, strings.Join(active, ","))
		}
		if !color {
			line = StripANSI(line)
		}
		fmt.Fprintln(w, line)
	}
}

// SoundQueue records queued sound effects and logs them. The simulator has no
// audio device.
type SoundQueue struct {
	mu     sync.Mutex
	log    *zap.Logger
	played []string
}

// NewSoundQueue creates a SoundQueue. A nil logger is replaced by a no-op.
func NewSoundQueue(logger *zap.Logger) *SoundQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SoundQueue{log: logger}
}

// AddPlayToQueue implements battle.Sound.
func (q *SoundQueue) AddPlayToQueue(id string, channel int) {
	q.mu.Lock()
	q.played = append(q.played, id)
	q.mu.Unlock()
	q.log.Debug("sound queued", zap.String("sound", id), zap.Int("channel", channel))
}

// Played returns the queued sound ids in order.
func (q *SoundQueue) Played() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.played...)
}
