package engine

import (
	"fmt"
	"io"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/nsplua/arena"
	"github.com/wippyai/nsplua/config"
	"github.com/wippyai/nsplua/errors"
	"github.com/wippyai/nsplua/host"
)

// Engine owns one gopher-lua state built on an arena.
type Engine struct {
	L       *lua.LState
	arena   *arena.Arena
	stdout  io.Writer
	sys     *lua.LTable
	classes map[*Class]*lua.LUserData
	closed  bool
}

// Config holds configuration for engine creation
type Config struct {
	// Stdout receives guest print output and REPL echoes. Default os.Stdout.
	Stdout io.Writer
}

// New creates an engine on a with default configuration.
func New(a *arena.Arena) (*Engine, error) {
	return NewWithConfig(a, nil)
}

// NewWithConfig binds a to a new engine. The registry and call stack are
// allocated here, once; a panic while allocating them is reported as an
// allocation failure.
func NewWithConfig(a *arena.Arena, cfg *Config) (e *Engine, err error) {
	if a == nil {
		return nil, errors.InvalidInput(errors.PhaseStartup, "nil arena")
	}
	if err := a.Bind("engine"); err != nil {
		return nil, err
	}

	e = &Engine{
		arena:   a,
		stdout:  os.Stdout,
		classes: make(map[*Class]*lua.LUserData),
	}
	if cfg != nil && cfg.Stdout != nil {
		e.stdout = cfg.Stdout
	}

	defer func() {
		if r := recover(); r != nil {
			if e.L != nil {
				e.L.Close()
			}
			e = nil
			err = errors.New(errors.PhaseStartup, errors.KindAllocation).
				Value(a.Size()).
				Detailf("engine bootstrap: %v", r).
				Build()
		}
	}()

	e.L = lua.NewState(lua.Options{
		CallStackSize:   a.StackDepth(),
		RegistrySize:    a.Slots(),
		RegistryMaxSize: a.Slots(),
	})
	e.installPrint()
	e.installIO()
	e.installExceptions()
	e.installSys()

	Logger().Debug("engine created",
		zap.Int("arena_bytes", a.Size()),
		zap.Int("registry_slots", a.Slots()),
		zap.Int("call_depth", a.StackDepth()))
	return e, nil
}

// Close releases the engine state. The arena stays with its owner.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}

// Arena returns the arena the engine was built on.
func (e *Engine) Arena() *arena.Arena {
	return e.arena
}

// Stdout returns the writer guest output goes to.
func (e *Engine) Stdout() io.Writer {
	return e.stdout
}

// SetHost exposes the host configuration to the guest: sys.argv, sys.path,
// package.path and the conventional arg table.
func (e *Engine) SetHost(cfg host.Config) {
	L := e.L

	argv := L.CreateTable(len(cfg.Args), 0)
	arg := L.CreateTable(len(cfg.Args), 0)
	for i, a := range cfg.Args {
		argv.Append(lua.LString(a))
		arg.RawSetInt(i, lua.LString(a))
	}
	L.SetField(e.sys, "argv", argv)
	L.SetGlobal("arg", arg)

	path := L.CreateTable(len(cfg.Path), 0)
	for _, p := range cfg.Path {
		path.Append(lua.LString(p))
	}
	L.SetField(e.sys, "path", path)

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(cfg.PackagePath()))
	}

	Logger().Debug("host configured",
		zap.Strings("argv", cfg.Args),
		zap.Strings("path", cfg.Path))
}

// SetGlobal stores a string guest global.
func (e *Engine) SetGlobal(name, value string) {
	e.L.SetGlobal(name, lua.LString(value))
}

// Global returns a guest global, or nil when unset.
func (e *Engine) Global(name string) lua.LValue {
	return e.L.GetGlobal(name)
}

// installPrint routes the guest print function to the configured stdout.
func (e *Engine) installPrint() {
	e.L.SetGlobal("print", e.L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		for i := 1; i <= top; i++ {
			if i > 1 {
				io.WriteString(e.stdout, "\t")
			}
			io.WriteString(e.stdout, L.ToStringMeta(L.Get(i)).String())
		}
		io.WriteString(e.stdout, "\n")
		return 0
	}))
}

// installIO points io.write and io.stdout at the configured stdout.
// io.output() without arguments still returns the process stdout file.
func (e *Engine) installIO() {
	L := e.L
	ioLib, ok := L.GetGlobal("io").(*lua.LTable)
	if !ok {
		return
	}

	write := func(L *lua.LState, first int) {
		for i := first; i <= L.GetTop(); i++ {
			io.WriteString(e.stdout, L.CheckString(i))
		}
	}
	stdout := L.NewTable()
	self := func(L *lua.LState) int {
		L.Push(L.Get(1))
		return 1
	}
	L.SetFuncs(stdout, map[string]lua.LGFunction{
		"write": func(L *lua.LState) int {
			write(L, 2)
			L.Push(L.Get(1))
			return 1
		},
		"flush":   self,
		"setvbuf": self,
		"close":   self,
	})
	L.SetField(ioLib, "stdout", stdout)
	L.SetField(ioLib, "write", L.NewFunction(func(L *lua.LState) int {
		write(L, 1)
		L.Push(stdout)
		return 1
	}))
}

// installSys creates the sys module and replaces os.exit so termination
// goes through SystemExit.
func (e *Engine) installSys() {
	L := e.L

	e.sys = L.NewTable()
	L.SetFuncs(e.sys, map[string]lua.LGFunction{
		"exit": e.sysExit,
	})
	L.SetField(e.sys, "argv", L.NewTable())
	L.SetField(e.sys, "path", L.NewTable())
	L.SetField(e.sys, "platform", lua.LString("nspire"))
	L.SetField(e.sys, "version", lua.LString(fmt.Sprintf("%s %s (%s)", config.ProgramName, config.Version, lua.LuaVersion)))
	L.SetGlobal("sys", e.sys)

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		if loaded, ok := L.GetField(pkg, "loaded").(*lua.LTable); ok {
			L.SetField(loaded, "sys", e.sys)
		}
	}

	if osLib, ok := L.GetGlobal("os").(*lua.LTable); ok {
		L.SetField(osLib, "exit", L.NewFunction(e.osExit))
	}
}

// sysExit raises SystemExit with the optional status argument.
func (e *Engine) sysExit(L *lua.LState) int {
	var args []lua.LValue
	if L.GetTop() > 0 {
		args = append(args, L.Get(1))
	}
	L.Error(e.instanceValue(&Instance{Class: SystemExit, Args: args}), 0)
	return 0
}

// osExit follows Lua's os.exit conventions (true is success, false is
// failure) and raises SystemExit with the resulting number.
func (e *Engine) osExit(L *lua.LState) int {
	status := lua.LNumber(0)
	switch v := L.Get(1).(type) {
	case lua.LNumber:
		status = v
	case lua.LBool:
		if !v {
			status = 1
		}
	}
	L.Error(e.instanceValue(&Instance{Class: SystemExit, Args: []lua.LValue{status}}), 0)
	return 0
}
