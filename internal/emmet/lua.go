package emmet

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

//go:embed default.lua
var defaultScript string

// DefaultTimeout bounds a single expansion call.
const DefaultTimeout = 2 * time.Second

// LuaEngine expands abbreviations by calling the global expand function of
// a Lua script. The state is not goroutine-safe; calls are serialized.
type LuaEngine struct {
	mu sync.Mutex
	L  *lua.LState

	timeout time.Duration
	closed  bool
}

type luaConfig struct {
	path    string
	source  string
	timeout time.Duration
}

// LuaOption configures a LuaEngine.
type LuaOption func(*luaConfig)

// WithScriptFile loads the expander from a file instead of the embedded
// default script.
func WithScriptFile(path string) LuaOption {
	return func(c *luaConfig) {
		c.path = path
	}
}

// WithScript loads the expander from source text.
func WithScript(src string) LuaOption {
	return func(c *luaConfig) {
		c.source = src
	}
}

// WithTimeout sets the per-call execution limit.
func WithTimeout(d time.Duration) LuaOption {
	return func(c *luaConfig) {
		c.timeout = d
	}
}

// NewLuaEngine creates an engine and loads its script.
func NewLuaEngine(opts ...LuaOption) (*LuaEngine, error) {
	cfg := luaConfig{source: defaultScript, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	e := &LuaEngine{L: L, timeout: cfg.timeout}

	var err error
	if cfg.path != "" {
		err = recoverLua(func() error { return L.DoFile(cfg.path) })
	} else {
		err = recoverLua(func() error { return L.DoString(cfg.source) })
	}
	if err != nil {
		L.Close()
		return nil, &ScriptError{Func: "load", Err: err}
	}

	if fn := L.GetGlobal("expand"); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, ErrScriptMissing
	}
	return e, nil
}

// openSafeLibraries opens base, table, string and math only and removes the
// base functions that can load code from disk or strings.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Expand implements Expander. Syntax errors reported by the script come
// back as *ParseError; failures of the script itself as *ScriptError.
func (e *LuaEngine) Expand(abbr string, opts Options) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", ErrEngineClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	top := e.L.GetTop()
	err := recoverLua(func() error {
		e.L.Push(e.L.GetGlobal("expand"))
		e.L.Push(lua.LString(abbr))
		e.L.Push(lua.LString(string(opts.Type)))
		e.L.Push(lua.LString(opts.Syntax))
		return e.L.PCall(3, 3, nil)
	})
	if err != nil {
		e.L.SetTop(top)
		return "", &ScriptError{Func: "expand", Err: err}
	}

	snippet, msg, pos := e.L.Get(-3), e.L.Get(-2), e.L.Get(-1)
	e.L.SetTop(top)

	switch v := snippet.(type) {
	case lua.LString:
		if v == "" {
			return "", ErrEmptyExpansion
		}
		return string(v), nil
	case *lua.LNilType:
		if msg.Type() != lua.LTString {
			return "", ErrEmptyExpansion
		}
		perr := &ParseError{Abbreviation: abbr, Pos: -1, Msg: msg.String()}
		if n, ok := pos.(lua.LNumber); ok {
			perr.Pos = min(max(int(n), 0), len(abbr))
		}
		return "", perr
	default:
		return "", &ScriptError{Func: "expand", Err: fmt.Errorf("unexpected result type %s", snippet.Type())}
	}
}

// Close releases the Lua state. Later calls return ErrEngineClosed.
func (e *LuaEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.L.Close()
	e.closed = true
	return nil
}

func recoverLua(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
