// Package engine is the interface boundary between the host and the embedded
// gopher-lua bytecode engine.
//
// The host never looks inside the engine's lexer, parser, compiler or virtual
// machine. It drives them through four calls that map onto the pipeline
// stages of a run:
//
//	Parse    - tokenizes and parses guest source into a Chunk
//	Compile  - lowers a Chunk to a Program (bytecode prototype)
//	Execute  - runs a Program inside a protected call
//	IsComplete - decides whether REPL input forms a whole statement
//
// # Protected Execution
//
// Guest errors unwind the engine's own call frames with a Go panic that only
// the engine's protected call (LState.PCall) recovers. Execute is the single
// place the host enters a protected call; everything the host controls
// returns explicit errors. A guest error comes back from Execute as *Raised,
// carrying the raised value and the engine's traceback.
//
// # Exceptions
//
// The engine installs a small exception vocabulary so guest code can raise
// typed values:
//
//	BaseException
//	├── SystemExit
//	├── KeyboardInterrupt
//	└── Exception
//	    ├── RuntimeError
//	    └── ValueError
//
// Classes are callable (SystemExit(3)) and can be extended from guest code
// with exceptions.subclass(base, name). sys.exit and os.exit raise
// SystemExit instead of terminating the process, so the host decides the
// exit status.
//
// # Memory
//
// An Engine is built on an arena.Arena: the value registry and the call
// stack are sized from it once and never grow. Exhausting either raises a
// guest error rather than corrupting host memory.
//
// # Thread Safety
//
// Engine is NOT safe for concurrent use.
package engine
