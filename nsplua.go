package nsplua

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/wippyai/nsplua/errors"
)

// Mode selects the grammar entry point of a pipeline run.
type Mode int

const (
	// File parses a whole module.
	File Mode = iota
	// Interactive parses one statement or expression and echoes its values.
	Interactive
)

func (m Mode) String() string {
	switch m {
	case File:
		return "file"
	case Interactive:
		return "interactive"
	}
	return "unknown"
}

// SourceUnit is an identified block of guest source text. A unit is consumed
// by exactly one pipeline run.
type SourceUnit struct {
	open     func() (io.ReadCloser, error)
	origin   string
	consumed bool
}

// FileUnit returns a unit whose text is read from path when the unit is
// opened. The origin tag is the path itself.
func FileUnit(path string) *SourceUnit {
	return &SourceUnit{
		origin: path,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// StringUnit returns a unit over in-memory text.
func StringUnit(origin, text string) *SourceUnit {
	return &SourceUnit{
		origin: origin,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(text)), nil
		},
	}
}

// BytesUnit returns a unit over an in-memory buffer.
func BytesUnit(origin string, text []byte) *SourceUnit {
	return &SourceUnit{
		origin: origin,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(text)), nil
		},
	}
}

// ReaderUnit returns a unit over an already open stream, such as a script
// piped on stdin. The unit closes r after parsing when r is an io.Closer.
func ReaderUnit(origin string, r io.Reader) *SourceUnit {
	return &SourceUnit{
		origin: origin,
		open: func() (io.ReadCloser, error) {
			if rc, ok := r.(io.ReadCloser); ok {
				return rc, nil
			}
			return io.NopCloser(r), nil
		},
	}
}

// Origin returns the file path or synthetic tag the unit came from.
func (u *SourceUnit) Origin() string {
	return u.origin
}

// Open marks the unit consumed and returns a reader over its text. The
// caller closes the reader once parsing is done.
func (u *SourceUnit) Open() (io.ReadCloser, error) {
	if u.consumed {
		return nil, errors.Consumed(u.origin)
	}
	u.consumed = true
	r, err := u.open()
	if err != nil {
		return nil, errors.Unreadable(u.origin, err)
	}
	return r, nil
}

// Consumed reports whether the unit has already been through a pipeline run.
func (u *SourceUnit) Consumed() bool {
	return u.consumed
}

// Kind tags an Outcome.
type Kind int

const (
	Success Kind = iota
	LexFailure
	ParseError
	CompileError
	UncaughtException
	ExitRequested
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case LexFailure:
		return "lex failure"
	case ParseError:
		return "parse error"
	case CompileError:
		return "compile error"
	case UncaughtException:
		return "uncaught exception"
	case ExitRequested:
		return "exit requested"
	}
	return "unknown"
}

// Outcome is the classified result of running one SourceUnit. Exactly one
// Kind holds; Diagnostic is the rendered text for failures, Status the code
// carried by ExitRequested.
type Outcome struct {
	Err        error
	Diagnostic string
	Kind       Kind
	Status     int
}

// Failed reports whether the outcome is a pipeline failure.
func (o Outcome) Failed() bool {
	return o.Kind != Success && o.Kind != ExitRequested
}

// ExitCode maps the outcome to a process exit status: 0 on success, the
// carried status for ExitRequested, 1 for every failure.
func (o Outcome) ExitCode() int {
	switch o.Kind {
	case Success:
		return 0
	case ExitRequested:
		return o.Status
	}
	return 1
}
