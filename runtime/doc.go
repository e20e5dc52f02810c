// Package runtime provides the high-level API for running guest scripts.
//
// # Quick Start
//
//	a, err := arena.Reserve(config.HeapSize, config.CallStackFrames)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Release()
//
//	_, hostCfg := host.Resolve(os.Args, config.DefaultModuleDir)
//	rt, err := runtime.New(ctx, a, runtime.Options{Host: hostCfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	out, err := rt.RunFile(ctx, hostCfg.Script)
//	if err != nil {
//	    log.Fatal(err) // fatal: no capture point
//	}
//	os.Exit(out.ExitCode())
//
// # Interactive Mode
//
//	status, err := rt.RunInteractive(ctx)
//
// reads lines from Options.Input, or from Options.Stdin without line editing
// when no reader is given.
//
// # Host Modules
//
// Register Go functions as guest modules loadable with require:
//
//	// Register a single function
//	rt.RegisterFunc("nsp", "beep", func(L *lua.LState) int {
//	    return 0
//	})
//
//	// Or implement the Host interface for a full module
//	rt.RegisterHost(myHost)
//
// Every method of a Host with the lua.LGFunction signature becomes a module
// function, its name converted from PascalCase to snake_case. The built-in
// utime module (ticks_ms, ticks_diff, time, sleep) is registered by New.
//
// # Thread Safety
//
// Runtime is NOT safe for concurrent use. The engine state is owned by the
// goroutine that runs it.
//
// # Memory
//
// The runtime never allocates its own memory budget: the engine is bound to
// the arena passed to New, and the caller releases the arena after Close.
package runtime
