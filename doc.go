// Package nsplua hosts an embedded Lua bytecode engine on a memory constrained
// handheld device.
//
// The host runs guest source through four stages (lex, parse, compile,
// execute), classifies the result of every run, and drives either a single
// script file or an interactive read-evaluate-print loop with multi-line
// continuation.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	nsplua/              Root package with SourceUnit, Mode and Outcome
//	├── arena/           Fixed-size guest memory budget and call depth
//	├── host/            Process arguments to guest argv and module search path
//	├── engine/          Interface boundary to the gopher-lua engine
//	├── driver/          One pipeline run per SourceUnit, outcome classification
//	├── repl/            Prompt, continuation and exit state of interactive mode
//	├── runtime/         High-level API composing all of the above
//	├── launcher/        File extension registry of the device launcher
//	├── config/          Device constants
//	└── errors/          Structured error types
//
// # Quick Start
//
// Run a script:
//
//	a, err := arena.Reserve(config.HeapSize, config.CallStackFrames)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Release()
//
//	rt, err := runtime.New(ctx, a, runtime.Options{Host: hostCfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	outcome, err := rt.RunFile(ctx, "/documents/ndless/hello.lua")
//	fmt.Println(outcome.Kind, outcome.ExitCode())
//
// # Failure Model
//
// Stage failures never escape the driver: they come back as an Outcome. Guest
// errors raised at any call depth are caught by the engine's protected call
// and classified there. Only arena exhaustion at startup and a transfer that
// reaches the host outside a protected call are fatal.
//
// # Thread Safety
//
// Nothing in this module is safe for concurrent use. The device runs one
// logical thread of control and the pipeline for one unit completes before
// the next prompt is issued.
package nsplua
