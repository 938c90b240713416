package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/evolution/internal/game/dice"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// Hook calls fall back to this VM when no scoped VM is found.
const globalScope = "__global__"

// CombatantInfo is a snapshot of a combatant's state passed to Lua callbacks.
type CombatantInfo struct {
	ID      int
	Name    string
	HP      int
	MaxHP   int
	Attack  int
	Defense int
	Gauge   float64
	Effects []string
}

// AbilityInfo is a snapshot of an ability passed to Lua callbacks.
type AbilityInfo struct {
	Name         string
	Damage       int
	Heal         int
	Element      string
	Cooldown     float64
	TargetSelf   bool
	AreaOfEffect bool
}

// vm is one sandboxed LState. An LState is single-threaded, so every use holds mu.
type vm struct {
	mu sync.Mutex
	L  *lua.LState
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same scope are serialized;
// different scopes run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    dice.Source
	logger *zap.Logger
	limit  int
}

// NewManager creates a Manager whose hook calls are each bounded by instLimit opcodes.
//
// Precondition: src and logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(src dice.Source, logger *zap.Logger, instLimit int) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
		limit:  instLimit,
	}
}

// Load creates a sandboxed VM for scope, registers the engine.* modules, then
// executes every *.lua file in scriptDir in lexicographic order. A previous VM
// for the same scope is replaced.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: the scope's VM is registered; returns error on Lua load failure.
func (m *Manager) Load(scope, scriptDir string) error {
	return m.loadInto(scope, scriptDir)
}

// LoadGlobal creates the fallback VM consulted for scopes without their own.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: the global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string) error {
	return m.loadInto(globalScope, scriptDir)
}

func (m *Manager) loadInto(key, scriptDir string) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
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
		release := LimitInstructions(L, m.limit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L}
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: scope loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Has reports whether scope has its own VM.
func (m *Manager) Has(scope string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[scope]
	return ok
}

func (m *Manager) lookup(scope string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[scope]; ok {
		return v
	}
	return m.vms[globalScope]
}

// CallHook calls the named Lua global function in scope's VM, falling back to
// the global VM. Returns (LNil, nil) if the hook is not defined or no VM exists.
// Lua runtime errors, including exceeding the instruction limit, are logged at
// Warn level and never propagated.
//
// Precondition: args must be scalar lua values (numbers, strings, booleans, nil).
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(scope, hook, func(*lua.LState) []lua.LValue { return args })
}

// call runs hook with the arguments produced by build inside the VM's lock.
func (m *Manager) call(scope, hook string, build func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	v := m.lookup(scope)
	if v == nil {
		m.logger.Debug("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L == nil {
		return lua.LNil, nil
	}
	L := v.L
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	release := LimitInstructions(L, m.limit)
	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, build(L)...)
	release()
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// ScoreAbility runs the score_ability hook for scope and returns its result.
// The hook receives (enemy, target, ability, score) as tables and a number; target
// is nil when there is none. Any result other than a finite number leaves score unchanged.
//
// Postcondition: Returns score when scope has no VM or no score_ability hook.
func (m *Manager) ScoreAbility(scope string, enemy CombatantInfo, target *CombatantInfo, ability AbilityInfo, score float64) float64 {
	ret, _ := m.call(scope, ScoreHook, func(L *lua.LState) []lua.LValue {
		var t lua.LValue = lua.LNil
		if target != nil {
			t = combatantTable(L, *target)
		}
		return []lua.LValue{combatantTable(L, enemy), t, abilityTable(L, ability), lua.LNumber(score)}
	})
	n, ok := ret.(lua.LNumber)
	if !ok {
		return score
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		m.logger.Warn("scripting: non-finite score ignored",
			zap.String("scope", scope),
			zap.String("ability", ability.Name),
		)
		return score
	}
	return f
}

func combatantTable(L *lua.LState, c CombatantInfo) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(c.ID))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("hp", lua.LNumber(c.HP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP))
	t.RawSetString("attack", lua.LNumber(c.Attack))
	t.RawSetString("defense", lua.LNumber(c.Defense))
	t.RawSetString("gauge", lua.LNumber(c.Gauge))
	effects := L.NewTable()
	for _, name := range c.Effects {
		effects.Append(lua.LString(name))
	}
	t.RawSetString("effects", effects)
	return t
}

func abilityTable(L *lua.LState, a AbilityInfo) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(a.Name))
	t.RawSetString("damage", lua.LNumber(a.Damage))
	t.RawSetString("heal", lua.LNumber(a.Heal))
	t.RawSetString("element", lua.LString(a.Element))
	t.RawSetString("cooldown", lua.LNumber(a.Cooldown))
	t.RawSetString("target_self", lua.LBool(a.TargetSelf))
	t.RawSetString("area", lua.LBool(a.AreaOfEffect))
	return t
}

// Close releases every VM. Subsequent hook calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.L = nil
		v.mu.Unlock()
	}
}
