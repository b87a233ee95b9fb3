package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
)

// ErrHookNotDefined is returned by OnTick when the named function is not a
// global in the loaded scripts.
var ErrHookNotDefined = errors.New("scripting: hook not defined")

var _ ailment.TickHook = (*Manager)(nil)

// Manager owns one sandboxed LState holding every loaded script and exposes
// hook dispatch.
//
// Manager is safe for concurrent use; calls into the VM are serialized.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting: NewManager precondition violated: roller must be non-nil")
	}
	if logger == nil {
		panic("scripting: NewManager precondition violated: logger must be non-nil")
	}
	return &Manager{roller: roller, logger: logger}
}

// Load creates a fresh sandboxed VM, registers the engine.* modules, then
// executes every *.lua file in scriptDir in lexicographic order. A previously
// loaded VM is replaced only when every file loads.
//
// Precondition: scriptDir must be a readable directory; instLimit >= 0.
// Postcondition: returns error on read or Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, path := range luaFiles {
		release := Limit(L, instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.instLimit = instLimit
	m.mu.Unlock()
	m.logger.Info("scripts loaded", zap.String("dir", scriptDir), zap.Int("files", len(luaFiles)))
	return nil
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if no
// scripts are loaded or the hook is not defined.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil and a
// wrapped error on a Lua runtime error or an exhausted instruction budget.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	ret, _, err := m.call(hook, args...)
	return ret, err
}

func (m *Manager) call(hook string, args ...lua.LValue) (lua.LValue, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		m.logger.Info("scripting: no scripts loaded", zap.String("hook", hook))
		return lua.LNil, false, nil
	}
	return m.callLocked(hook, args...)
}

// callLocked requires m.mu held and m.state non-nil.
func (m *Manager) callLocked(hook string, args ...lua.LValue) (lua.LValue, bool, error) {
	L := m.state
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, false, nil
	}

	release := Limit(L, m.instLimit)
	defer release()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, true, fmt.Errorf("scripting: calling %q: %w", hook, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, true, nil
}

// OnTick runs the ailment tick function fn with a table describing tc and
// returns the extra VITA damage it reports.
//
// Postcondition: a nil return is 0 damage; negative numbers clamp to 0;
// any other return type is an error.
func (m *Manager) OnTick(fn string, tc ailment.TickContext) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return 0, fmt.Errorf("%w: %s (no scripts loaded)", ErrHookNotDefined, fn)
	}

	ret, found, err := m.callLocked(fn, tickTable(m.state, tc))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrHookNotDefined, fn)
	}
	switch v := ret.(type) {
	case lua.LNumber:
		return max(0, int(v)), nil
	case *lua.LNilType:
		return 0, nil
	default:
		return 0, fmt.Errorf("scripting: %q returned %s, want number", fn, ret.Type())
	}
}

func tickTable(L *lua.LState, tc ailment.TickContext) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "ailment", lua.LString(tc.Ailment))
	L.SetField(t, "target", lua.LString(tc.Target))
	L.SetField(t, "vita", lua.LNumber(tc.Vita))
	L.SetField(t, "max_vita", lua.LNumber(tc.MaxVita))
	L.SetField(t, "turns_remaining", lua.LNumber(tc.TurnsRemaining))
	L.SetField(t, "turn", lua.LNumber(tc.Turn))
	return t
}

// Close releases the VM. Subsequent calls behave as if nothing was loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
