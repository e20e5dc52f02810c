// Package config holds the fixed device constants of the nsplua host.
//
// None of these values are read from a file or the environment at runtime:
// they are chosen for the physical memory of the target handheld and baked
// into the binary. Version and BuildDate may be set at build time:
//
//	go build -ldflags "-X github.com/wippyai/nsplua/config.Version=v1.2.0"
package config

// Build metadata shown in the REPL banner.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

const ProgramName = "nsplua"

// Memory and stack limits.
const (
	// HeapSize is the size in bytes of the guest arena reserved at startup.
	HeapSize = 2 * 1024 * 1024

	// MaxHeapSize bounds any arena reservation; the device has no swap.
	MaxHeapSize = 16 * 1024 * 1024

	// CallStackFrames is the maximum guest call depth before a controlled
	// stack overflow error is raised.
	CallStackFrames = 200
)

// Host layout.
const (
	// DefaultModuleDir is the second module search path entry in every mode.
	DefaultModuleDir = "/documents/ndless"

	// LauncherFile associates script extensions with programs on the device.
	LauncherFile = DefaultModuleDir + "/launcher.yaml"

	// ScriptExt is the script file extension registered with the launcher.
	ScriptExt = "lua"

	// StdinName is the origin tag of statements typed at the REPL.
	StdinName = "<stdin>"
)

// REPL prompts and commands.
const (
	PrimaryPrompt      = ">>> "
	ContinuationPrompt = "... "
	QuitCommand        = "quit"
	HistoryFile        = ".nsplua_history"
)

// DebugEnv enables development logging on stderr when set to a non-empty value.
const DebugEnv = "NSPLUA_DEBUG"
