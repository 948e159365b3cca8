// Package scripting wraps an embedded Lua VM as the "Luabridge" external
// collaborator (spec §9): the core never hardcodes a spell's pre-cast
// rules, it asks the script layer structured questions (does this spell
// need a direction? a target item? an extra integer argument?) and lets a
// loaded script answer, or falls back to a conservative Go default when no
// script defines that spell. Grounded on the reference server's
// NewEngine/loadDir/CallByParam pattern, narrowed from its ~30-function
// combat/skill/potion/PK surface down to the one collaborator boundary
// spec §9 actually names.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for spell pre-cast scripting.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(filepath.Join(scriptsDir, "spells")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load spell scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory; a missing directory is not
// an error, since a deployment may run with no custom spell scripts at all
// and rely entirely on the Go-side defaults below.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// PreCastRequirements answers spec §9's structured pre-cast query for
// spellID: does casting it need a facing direction, a target item from
// the caller's inventory, or an extra integer argument (a quantity, a
// secondary rune index)? A script may define
// `pre_exec_spell_<id>() -> direction, target_item, extra_int`; its three
// results are read as Lua truth values (nil and false are false, anything
// else, 0 included, is true) and replace all three fields, a missing result
// reading as false. A spell with no hook, or whose hook fails, gets
// defaultPreCast's answer: a direction and nothing else.
type PreCastRequirements struct {
	NeedsDirection  bool
	NeedsTargetItem bool
	NeedsExtraInt   bool
}

// PreCastRequirements resolves the requirements for spellID, preferring a
// loaded script's pre_exec_spell_<id> hook and falling back to
// defaultPreCast when no such function is defined.
func (e *Engine) PreCastRequirements(spellID int32) PreCastRequirements {
	name := fmt.Sprintf("pre_exec_spell_%d", spellID)
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return defaultPreCast(spellID)
	}

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 3, Protect: true}); err != nil {
		e.log.Error("lua pre-cast hook failed", zap.String("func", name), zap.Error(err))
		return defaultPreCast(spellID)
	}
	extra := lua.LVAsBool(e.vm.Get(-1))
	item := lua.LVAsBool(e.vm.Get(-2))
	dir := lua.LVAsBool(e.vm.Get(-3))
	e.vm.Pop(3)

	return PreCastRequirements{NeedsDirection: dir, NeedsTargetItem: item, NeedsExtraInt: extra}
}

// defaultPreCast is the conservative built-in answer for any spell id with
// no loaded override: every attack or utility spell in this game's roster
// targets a direction and nothing else.
func defaultPreCast(int32) PreCastRequirements {
	return PreCastRequirements{NeedsDirection: true}
}

// CalcDeathExpPenalty resolves how much experience a dying character at
// level/exp loses (spec §3 "Lifecycle" death handling), preferring a
// script's calc_death_exp_penalty(level, exp) hook over the Go default of
// one tenth of current experience.
func (e *Engine) CalcDeathExpPenalty(level int, exp int64) int64 {
	fn := e.vm.GetGlobal("calc_death_exp_penalty")
	if fn == lua.LNil {
		return exp / 10
	}

	if err := e.vm.CallByParam(lua.P{
		Fn: fn, NRet: 1, Protect: true,
	}, lua.LNumber(level), lua.LNumber(exp)); err != nil {
		e.log.Error("lua death-penalty hook failed", zap.Error(err))
		return exp / 10
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int64(lua.LVAsNumber(result))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
