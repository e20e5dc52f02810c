package repl

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wippyai/nsplua/arena"
	"github.com/wippyai/nsplua/config"
	"github.com/wippyai/nsplua/driver"
	"github.com/wippyai/nsplua/engine"
)

const (
	eofMark       = "\x00eof"
	interruptMark = "\x00interrupt"
)

// fakeReader replays scripted lines and records the prompts shown.
type fakeReader struct {
	lines   []string
	prompts []string
	err     error
}

func (f *fakeReader) ReadLine(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.lines) == 0 {
		if f.err != nil {
			return "", f.err
		}
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	switch line {
	case eofMark:
		return "", io.EOF
	case interruptMark:
		return "", ErrInterrupt
	}
	return line, nil
}

func (f *fakeReader) Close() error { return nil }

type harness struct {
	repl   *REPL
	in     *fakeReader
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, lines ...string) *harness {
	t.Helper()
	a, err := arena.Reserve(config.HeapSize, config.CallStackFrames)
	if err != nil {
		t.Fatalf("reserve arena: %v", err)
	}
	h := &harness{
		in:     &fakeReader{lines: lines},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	e, err := engine.NewWithConfig(a, &engine.Config{Stdout: h.stdout})
	if err != nil {
		a.Release()
		t.Fatalf("create engine: %v", err)
	}
	t.Cleanup(func() {
		e.Close()
		a.Release()
	})
	h.repl = New(driver.New(e), Config{
		Input:  h.in,
		Stdout: h.stdout,
		Stderr: h.stderr,
		Banner: "banner",
	})
	return h
}

func (h *harness) run(t *testing.T) int {
	t.Helper()
	status, err := h.repl.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return status
}

const (
	primary = config.PrimaryPrompt
	cont    = config.ContinuationPrompt
)

func TestRun_SingleLine(t *testing.T) {
	h := newHarness(t, "print(1)")

	if status := h.run(t); status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
	if got, want := h.stdout.String(), "banner\n1\n\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if want := []string{primary, primary}; !reflect.DeepEqual(h.in.prompts, want) {
		t.Errorf("prompts = %q, want %q", h.in.prompts, want)
	}
}

func TestRun_ExpressionEcho(t *testing.T) {
	h := newHarness(t, "x = 6", "x * 7")
	h.run(t)
	if got, want := h.stdout.String(), "banner\n42\n\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_Continuation(t *testing.T) {
	h := newHarness(t, "if true then", "  print('in')", "end")

	h.run(t)
	if got, want := h.stdout.String(), "banner\nin\n\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if want := []string{primary, cont, cont, primary}; !reflect.DeepEqual(h.in.prompts, want) {
		t.Errorf("prompts = %q, want %q", h.in.prompts, want)
	}
}

func TestRun_AbandonedContinuation(t *testing.T) {
	tests := []struct {
		name string
		mark string
	}{
		{"eof", eofMark},
		{"interrupt", interruptMark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "x = 1", "for i = 1, 2 do", "x = 99", tt.mark, "print(x)")

			if status := h.run(t); status != 0 {
				t.Errorf("status = %d, want 0", status)
			}
			if got, want := h.stdout.String(), "banner\n\n1\n\n"; got != want {
				t.Errorf("stdout = %q, want %q", got, want)
			}
			want := []string{primary, primary, cont, cont, primary, primary}
			if !reflect.DeepEqual(h.in.prompts, want) {
				t.Errorf("prompts = %q, want %q", h.in.prompts, want)
			}
		})
	}
}

func TestRun_Quit(t *testing.T) {
	h := newHarness(t, "quit", "print('after')")

	if status := h.run(t); status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
	if got := h.stdout.String(); got != "banner\n" {
		t.Errorf("stdout = %q, want banner only", got)
	}
	if len(h.in.lines) != 1 {
		t.Errorf("lines left = %d, want 1", len(h.in.lines))
	}
}

func TestRun_ExitRequested(t *testing.T) {
	tests := []struct {
		line   string
		status int
		stderr string
	}{
		{"sys.exit(5)", 5, ""},
		{"sys.exit()", 0, ""},
		{"os.exit(false)", 1, ""},
		{`sys.exit("bye")`, 1, "bye\n"},
		{`error(SystemExit(2))`, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			h := newHarness(t, tt.line, "print('after')")

			if status := h.run(t); status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if got := h.stderr.String(); got != tt.stderr {
				t.Errorf("stderr = %q, want %q", got, tt.stderr)
			}
			if strings.Contains(h.stdout.String(), "after") {
				t.Error("loop continued after exit request")
			}
		})
	}
}

func TestRun_DiagnosticsContinueLoop(t *testing.T) {
	h := newHarness(t, "x = = 1", `error("boom")`, "nosuch()", "print('ok')")

	if status := h.run(t); status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
	diag := h.stderr.String()
	for _, want := range []string{config.StdinName + ":1", "RuntimeError: " + config.StdinName + ":1: boom", "non-function"} {
		if !strings.Contains(diag, want) {
			t.Errorf("stderr = %q, want it to contain %q", diag, want)
		}
	}
	if !strings.Contains(h.stdout.String(), "ok\n") {
		t.Errorf("stdout = %q, want ok", h.stdout.String())
	}
}

func TestRun_BlankLines(t *testing.T) {
	h := newHarness(t, "", "   ", "print('x')")
	h.run(t)
	if h.stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", h.stderr.String())
	}
	if got, want := h.stdout.String(), "banner\nx\n\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_InterruptAtPrimaryPrompt(t *testing.T) {
	h := newHarness(t, "x = 1", interruptMark, "print('after')")
	if status := h.run(t); status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
	if len(h.in.lines) != 1 {
		t.Errorf("lines left = %d, want 1", len(h.in.lines))
	}
}

func TestRun_ReadError(t *testing.T) {
	h := newHarness(t)
	h.in.err = stderrors.New("device gone")

	_, err := h.repl.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "device gone") {
		t.Errorf("Run error = %v, want read failure", err)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	h := newHarness(t, "print(1)")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := h.repl.Run(ctx)
	if err != nil || status != 0 {
		t.Errorf("Run = %d, %v, want 0, nil", status, err)
	}
	if len(h.in.prompts) != 0 {
		t.Errorf("prompts = %q, want none", h.in.prompts)
	}
}

func TestNewSession(t *testing.T) {
	a, b := NewSession(), NewSession()
	if a.ID == uuid.Nil {
		t.Error("session ID is nil")
	}
	if a.ID == b.ID {
		t.Error("sessions share an ID")
	}
	if a.Terminated || a.Status != 0 || a.Pending != "" {
		t.Errorf("NewSession() = %+v, want zero state", a)
	}
}

func TestScanReader(t *testing.T) {
	var prompts bytes.Buffer
	r := NewScanReader(strings.NewReader("first\r\nsecond"), &prompts)

	for _, want := range []string{"first", "second"} {
		got, err := r.ReadLine("> ")
		if err != nil {
			t.Fatalf("ReadLine: %v", err)
		}
		if got != want {
			t.Errorf("ReadLine() = %q, want %q", got, want)
		}
	}
	if _, err := r.ReadLine("> "); err != io.EOF {
		t.Errorf("ReadLine at end = %v, want io.EOF", err)
	}
	if prompts.String() != "> > > " {
		t.Errorf("prompts = %q", prompts.String())
	}
}

func TestDefaultBanner(t *testing.T) {
	b := DefaultBanner()
	if !strings.HasPrefix(b, config.ProgramName) {
		t.Errorf("DefaultBanner() = %q, want program name first", b)
	}
	if !strings.Contains(b, config.QuitCommand) {
		t.Errorf("DefaultBanner() = %q, want quit hint", b)
	}
}
