package repl

import (
	"bufio"
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// ErrInterrupt is returned by a LineReader when the user aborts the line
// being edited (Ctrl-C).
var ErrInterrupt = stderrors.New("repl: interrupted")

// LineReader reads one line of input after showing a prompt. The returned
// line has no trailing newline. io.EOF signals end of input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// LinerReader is a LineReader over a terminal with line editing and
// history.
type LinerReader struct {
	state   *liner.State
	history string
}

// NewLinerReader takes over the terminal. History is loaded from and saved
// to historyPath when it is not empty.
func NewLinerReader(historyPath string) *LinerReader {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	return &LinerReader{state: ln, history: historyPath}
}

func (r *LinerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if stderrors.Is(err, liner.ErrPromptAborted) {
		return "", ErrInterrupt
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

// Close saves history and restores the terminal.
func (r *LinerReader) Close() error {
	if r.history != "" {
		if f, err := os.Create(r.history); err == nil {
			_, _ = r.state.WriteHistory(f)
			_ = f.Close()
		}
	}
	return r.state.Close()
}

// ScanReader is a LineReader over a plain stream, for input that is not a
// terminal. Prompts are written to out.
type ScanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScanReader reads lines from in and writes prompts to out. A nil out
// suppresses prompts.
func NewScanReader(in io.Reader, out io.Writer) *ScanReader {
	return &ScanReader{scanner: bufio.NewScanner(in), out: out}
}

func (r *ScanReader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		io.WriteString(r.out, prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(r.scanner.Text(), "\r"), nil
}

func (r *ScanReader) Close() error {
	return nil
}
