// luatrigger.go - Recording triggers written as Lua expressions

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/vecrender
License: GPLv3 or later
*/

// Package luatrigger compiles small Lua expressions such as "e % 10 == 0"
// into recording triggers, so schedules can be given on the command line.
package luatrigger

import (
	"fmt"
	"log/slog"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/intuitionamiga/vecrender"
)

// Trigger evaluates a compiled expression against an episode or step index.
// A Trigger is safe for concurrent use.
type Trigger struct {
	mu       sync.Mutex
	state    *lua.LState
	fn       *lua.LFunction
	expr     string
	variable string
	logger   *slog.Logger
}

// Compile wraps expr in a one-argument function whose parameter is named
// variable. Only the base and math libraries are available to it, without
// the base functions that load code or files.
func Compile(expr, variable string) (*Trigger, error) {
	if !validIdentifier(variable) {
		return nil, fmt.Errorf("luatrigger: %q is not a valid Lua identifier", variable)
	}
	if expr == "" {
		return nil, fmt.Errorf("luatrigger: empty expression")
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("luatrigger: open %s: %w", lib.name, err)
		}
	}

	for _, name := range unsafeBaseFuncs {
		L.SetGlobal(name, lua.LNil)
	}

	chunk, err := L.LoadString(fmt.Sprintf("return function(%s) return (%s) end", variable, expr))
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("luatrigger: compile %q: %w", expr, err)
	}
	if err := L.CallByParam(lua.P{Fn: chunk, NRet: 1, Protect: true}); err != nil {
		L.Close()
		return nil, fmt.Errorf("luatrigger: compile %q: %w", expr, err)
	}
	fn, ok := L.Get(-1).(*lua.LFunction)
	L.Pop(1)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("luatrigger: %q did not compile to a function", expr)
	}

	t := &Trigger{state: L, fn: fn, expr: expr, variable: variable}
	if _, err := t.eval(0); err != nil {
		L.Close()
		return nil, err
	}
	return t, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(expr, variable string) *Trigger {
	t, err := Compile(expr, variable)
	if err != nil {
		panic(err)
	}
	return t
}

// Match reports whether the expression holds for index. Runtime errors are
// logged and count as false. Numbers are true when non-zero.
func (t *Trigger) Match(index int) bool {
	ok, err := t.eval(index)
	if err != nil {
		t.log().Warn("trigger expression failed", "expr", t.expr, t.variable, index, "error", err)
		return false
	}
	return ok
}

// Func returns Match as a vecrender.Trigger.
func (t *Trigger) Func() vecrender.Trigger { return t.Match }

func (t *Trigger) String() string { return t.expr }

// SetLogger sets where evaluation failures are reported.
func (t *Trigger) SetLogger(l *slog.Logger) {
	t.mu.Lock()
	t.logger = l
	t.mu.Unlock()
}

// Close releases the Lua state. Match must not be called afterwards.
func (t *Trigger) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != nil {
		t.state.Close()
		t.state = nil
	}
}

func (t *Trigger) eval(index int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == nil {
		return false, fmt.Errorf("luatrigger: trigger closed")
	}
	L := t.state
	if err := L.CallByParam(lua.P{Fn: t.fn, NRet: 1, Protect: true}, lua.LNumber(index)); err != nil {
		return false, fmt.Errorf("luatrigger: eval %q: %w", t.expr, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	if n, ok := ret.(lua.LNumber); ok {
		return n != 0, nil
	}
	return lua.LVAsBool(ret), nil
}

func (t *Trigger) log() *slog.Logger {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.logger != nil {
		return t.logger
	}
	return vecrender.Logger()
}

// unsafeBaseFuncs are removed from the base library after it is opened.
var unsafeBaseFuncs = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true, "end": true,
	"false": true, "for": true, "function": true, "if": true, "in": true, "local": true,
	"nil": true, "not": true, "or": true, "repeat": true, "return": true, "then": true,
	"true": true, "until": true, "while": true,
}

func validIdentifier(s string) bool {
	if s == "" || luaKeywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
