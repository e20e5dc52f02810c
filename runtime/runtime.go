package runtime

import (
	"context"
	"io"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/nsplua"
	"github.com/wippyai/nsplua/arena"
	"github.com/wippyai/nsplua/driver"
	"github.com/wippyai/nsplua/engine"
	"github.com/wippyai/nsplua/errors"
	"github.com/wippyai/nsplua/host"
	"github.com/wippyai/nsplua/repl"
)

// Options configures a Runtime.
type Options struct {
	// Stdout receives guest output and the REPL banner. Default os.Stdout.
	Stdout io.Writer
	// Stderr receives REPL diagnostics. Default os.Stderr.
	Stderr io.Writer
	// Stdin feeds the REPL when Input is nil. Default os.Stdin.
	Stdin io.Reader
	// Input overrides the REPL line reader.
	Input repl.LineReader
	// Host is the guest view of the invocation.
	Host host.Config
	// Color styles REPL output.
	Color bool
}

type Runtime struct {
	engine *engine.Engine
	driver *driver.Driver
	hosts  *HostRegistry
	opts   Options
	closed bool
}

// New builds the engine on a, applies the host configuration and registers
// the built-in host modules. The arena stays owned by the caller, which
// releases it after Close.
func New(ctx context.Context, a *arena.Arena, opts Options) (*Runtime, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	eng, err := engine.NewWithConfig(a, &engine.Config{Stdout: opts.Stdout})
	if err != nil {
		return nil, err
	}
	eng.SetHost(opts.Host)

	r := &Runtime{
		engine: eng,
		driver: driver.New(eng),
		hosts:  NewHostRegistry(),
		opts:   opts,
	}
	if err := r.RegisterHost(NewClock()); err != nil {
		eng.Close()
		return nil, err
	}

	Logger().Debug("runtime created",
		zap.String("script", opts.Host.Script),
		zap.Strings("hosts", r.hosts.Namespaces()))
	return r, nil
}

// Close releases all runtime resources.
func (r *Runtime) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.engine.Close()
	return nil
}

// RegisterHost registers all exported methods of h as functions of a guest
// module and makes the module loadable with require.
// Method names are converted from PascalCase to snake_case (TicksMs -> ticks_ms).
func (r *Runtime) RegisterHost(h Host) error {
	if err := r.hosts.RegisterHost(h); err != nil {
		return err
	}
	r.hosts.Bind(r.engine)
	return nil
}

// RegisterFunc registers one function of a guest module.
func (r *Runtime) RegisterFunc(namespace, name string, fn lua.LGFunction) error {
	if err := r.hosts.RegisterFunc(namespace, name, fn); err != nil {
		return err
	}
	r.hosts.Bind(r.engine)
	return nil
}

func (r *Runtime) Hosts() *HostRegistry {
	return r.hosts
}

// Engine returns the underlying engine.
func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

// Run executes one source unit.
func (r *Runtime) Run(ctx context.Context, unit *nsplua.SourceUnit, mode nsplua.Mode) (nsplua.Outcome, error) {
	if r.closed {
		return nsplua.Outcome{}, errors.New(errors.PhaseExecute, errors.KindNotInitialized).
			Detail("runtime closed").
			Build()
	}
	return r.driver.Run(ctx, unit, mode)
}

// RunFile executes the script at path as a whole module.
func (r *Runtime) RunFile(ctx context.Context, path string) (nsplua.Outcome, error) {
	return r.Run(ctx, nsplua.FileUnit(path), nsplua.File)
}

// RunInteractive runs the REPL until end of input, quit or an exit request,
// and returns the session's exit status.
func (r *Runtime) RunInteractive(ctx context.Context) (int, error) {
	if r.closed {
		return 1, errors.New(errors.PhaseExecute, errors.KindNotInitialized).
			Detail("runtime closed").
			Build()
	}
	in := r.opts.Input
	if in == nil {
		in = repl.NewScanReader(r.opts.Stdin, r.opts.Stdout)
	}
	defer in.Close()

	return repl.New(r.driver, repl.Config{
		Input:  in,
		Stdout: r.opts.Stdout,
		Stderr: r.opts.Stderr,
		Color:  r.opts.Color,
	}).Run(ctx)
}
