// Package repl implements the interactive read-evaluate-print loop: prompts,
// multi-line continuation and the exit status of the session.
//
// Each line read at the primary prompt starts a new input buffer. While the
// buffer is not a complete statement the continuation prompt is shown and
// lines are appended. End of input during continuation abandons the buffer
// without running it. A complete buffer that is exactly the quit command ends
// the session; anything else is submitted to the driver as one interactive
// unit.
package repl

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/nsplua"
	"github.com/wippyai/nsplua/config"
	"github.com/wippyai/nsplua/driver"
	"github.com/wippyai/nsplua/engine"
	"github.com/wippyai/nsplua/errors"
)

// Session is the state carried from one read-evaluate cycle to the next.
type Session struct {
	// ID correlates the log records of one session.
	ID uuid.UUID
	// Pending is the input accumulated for the statement being read.
	Pending string
	// Terminated ends the loop after the current cycle.
	Terminated bool
	// Status is the exit status requested by guest code, 0 otherwise.
	Status int
}

// NewSession returns a fresh session with a new ID.
func NewSession() Session {
	return Session{ID: uuid.New()}
}

// Config configures a REPL.
type Config struct {
	// Input supplies lines. Required.
	Input LineReader
	// Stdout receives the banner. Default os.Stdout.
	Stdout io.Writer
	// Stderr receives diagnostics. Default os.Stderr.
	Stderr io.Writer
	// Banner replaces the default banner.
	Banner string
	// Color styles the banner and diagnostics.
	Color bool
}

// REPL is an interactive loop over one driver.
type REPL struct {
	driver *driver.Driver
	in     LineReader
	stdout io.Writer
	stderr io.Writer
	banner string
	color  bool
}

// New creates a REPL submitting input to d.
func New(d *driver.Driver, cfg Config) *REPL {
	r := &REPL{
		driver: d,
		in:     cfg.Input,
		stdout: cfg.Stdout,
		stderr: cfg.Stderr,
		banner: cfg.Banner,
		color:  cfg.Color,
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	if r.banner == "" {
		r.banner = DefaultBanner()
	}
	return r
}

// DefaultBanner identifies the program, its build and the engine.
func DefaultBanner() string {
	return fmt.Sprintf("%s %s on %s; %s\nType %q to exit.",
		config.ProgramName, config.Version, config.BuildDate, lua.LuaVersion, config.QuitCommand)
}

// Run prints the banner and loops until end of input, the quit command or a
// guest exit request. It returns the exit status of the session. A non-nil
// error means the session was aborted by a fatal condition.
func (r *REPL) Run(ctx context.Context) (int, error) {
	r.printBanner()

	s := NewSession()
	log := Logger().With(zap.Stringer("session", s.ID))
	log.Debug("session started")

	for !s.Terminated {
		if ctx.Err() != nil {
			break
		}
		var err error
		if s, err = r.cycle(ctx, s); err != nil {
			log.Error("session aborted", zap.Error(err))
			return s.Status, err
		}
	}

	log.Debug("session ended", zap.Int("status", s.Status))
	return s.Status, nil
}

// cycle reads one complete statement and runs it.
func (r *REPL) cycle(ctx context.Context, s Session) (Session, error) {
	line, err := r.in.ReadLine(config.PrimaryPrompt)
	if err != nil {
		s.Terminated = true
		if endOfInput(err) {
			fmt.Fprintln(r.stdout)
			return s, nil
		}
		return s, errors.Wrap(errors.PhaseLex, errors.KindUnreadable, err, "read line")
	}

	s.Pending = line
	for !engine.IsComplete(s.Pending) {
		more, err := r.in.ReadLine(config.ContinuationPrompt)
		if err != nil {
			Logger().Debug("input abandoned",
				zap.Stringer("session", s.ID),
				zap.Error(err))
			s.Pending = ""
			if endOfInput(err) {
				fmt.Fprintln(r.stdout)
				return s, nil
			}
			s.Terminated = true
			return s, errors.Wrap(errors.PhaseLex, errors.KindUnreadable, err, "read line")
		}
		s.Pending += "\n" + more
	}

	text := s.Pending
	s.Pending = ""

	if text == config.QuitCommand {
		s.Terminated = true
		return s, nil
	}
	if strings.TrimSpace(text) == "" {
		return s, nil
	}

	out, err := r.driver.Run(ctx, nsplua.StringUnit(config.StdinName, text), nsplua.Interactive)
	if err != nil {
		s.Terminated = true
		return s, err
	}

	switch out.Kind {
	case nsplua.Success:
	case nsplua.ExitRequested:
		s.Status = out.Status
		s.Terminated = true
		if out.Diagnostic != "" {
			r.diagnose(exitStyle, out.Diagnostic)
		}
	default:
		r.diagnose(errorStyle, out.Diagnostic)
	}
	return s, nil
}

func (r *REPL) printBanner() {
	if r.color {
		fmt.Fprintln(r.stdout, bannerStyle.Render(r.banner))
		return
	}
	fmt.Fprintln(r.stdout, r.banner)
}

func (r *REPL) diagnose(style lipgloss.Style, msg string) {
	if r.color {
		msg = style.Render(msg)
	}
	fmt.Fprintln(r.stderr, msg)
}

// endOfInput reports whether a read error ends input normally: end of file
// or a user interrupt.
func endOfInput(err error) bool {
	return stderrors.Is(err, io.EOF) || stderrors.Is(err, ErrInterrupt)
}
