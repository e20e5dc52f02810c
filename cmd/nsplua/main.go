// Command nsplua runs a Lua script, or an interactive prompt when no script
// is given.
//
//	nsplua [script-path [script-args...]]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/nsplua"
	"github.com/wippyai/nsplua/arena"
	"github.com/wippyai/nsplua/config"
	"github.com/wippyai/nsplua/driver"
	"github.com/wippyai/nsplua/engine"
	"github.com/wippyai/nsplua/host"
	"github.com/wippyai/nsplua/launcher"
	"github.com/wippyai/nsplua/repl"
	"github.com/wippyai/nsplua/runtime"
)

// launcherFile is the registry updated at startup.
var launcherFile = config.LauncherFile

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := newLogger(stderr)
	defer log.Sync()

	a, err := arena.Reserve(config.HeapSize, config.CallStackFrames)
	if err != nil {
		fmt.Fprintf(stderr, "%s: failed to allocate %d-byte heap: %v\n", config.ProgramName, config.HeapSize, err)
		return 1
	}
	defer a.Release()

	if changed, err := launcher.Register(launcherFile, config.ScriptExt, config.ProgramName); err != nil {
		log.Warn("launcher registration failed", zap.Error(err))
	} else if changed {
		log.Info("registered launcher extension", zap.String("ext", config.ScriptExt))
	}

	mode, hostCfg := host.Resolve(argv, config.DefaultModuleDir)
	log.Debug("invocation resolved", zap.Stringer("mode", mode), zap.Strings("args", hostCfg.Args))

	ctx := context.Background()
	if mode == host.Script {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}

	opts := runtime.Options{
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  stdin,
		Host:   hostCfg,
		Color:  isColorTerminal(stderr),
	}
	if mode == host.Interactive && isTerminal(stdin) {
		opts.Input = repl.NewLinerReader(historyPath())
	}

	rt, err := runtime.New(ctx, a, opts)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	defer rt.Close()

	if mode == host.Interactive {
		status, err := rt.RunInteractive(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
		return status
	}

	out, err := rt.RunFile(ctx, hostCfg.Script)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}
	if out.Diagnostic != "" {
		fmt.Fprintln(stderr, out.Diagnostic)
	}
	if out.Kind == nsplua.ExitRequested {
		return out.Status
	}
	acknowledge(stdin, stdout, out.Failed())
	return out.ExitCode()
}

// newLogger returns a development logger on w when the debug environment
// variable is set, and a no-op logger otherwise. The logger is shared by
// every package that logs.
func newLogger(w io.Writer) *zap.Logger {
	log := zap.NewNop()
	if os.Getenv(config.DebugEnv) != "" {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(w),
			zap.DebugLevel,
		)
		log = zap.New(core, zap.Development()).Named(config.ProgramName)
	}
	engine.SetLogger(log.Named("engine"))
	driver.SetLogger(log.Named("driver"))
	repl.SetLogger(log.Named("repl"))
	runtime.SetLogger(log.Named("runtime"))
	return log
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, config.HistoryFile)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func isColorTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
