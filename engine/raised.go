package engine

import (
	stderrors "errors"
	"math"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Raised is a guest error captured by the protected call in Execute.
type Raised struct {
	// Value is the raised guest value: an exception instance, or whatever
	// was passed to error().
	Value lua.LValue
	// Traceback is the engine's stack traceback at the raise point.
	Traceback string
	// Cause is the engine error the value was extracted from.
	Cause error
}

func newRaised(err error) *Raised {
	var apiErr *lua.ApiError
	if stderrors.As(err, &apiErr) && apiErr.Object != nil {
		return &Raised{Value: apiErr.Object, Traceback: apiErr.StackTrace, Cause: err}
	}
	return &Raised{Value: lua.LString(err.Error()), Cause: err}
}

func (r *Raised) Error() string {
	return r.TypeName() + ": " + r.Message()
}

func (r *Raised) Unwrap() error {
	return r.Cause
}

// Instance returns the exception instance raised, if the value is one.
func (r *Raised) Instance() (*Instance, bool) {
	return AsInstance(r.Value)
}

// InstanceOf reports whether the raised value is an instance of c or a
// subclass.
func (r *Raised) InstanceOf(c *Class) bool {
	inst, ok := r.Instance()
	return ok && inst.Class.IsSubclassOf(c)
}

// TypeName returns the exception class name. Plain error values raised with
// error() are runtime errors.
func (r *Raised) TypeName() string {
	if inst, ok := r.Instance(); ok {
		return inst.Class.Name
	}
	if r.Value.Type() == lua.LTString {
		return RuntimeError.Name
	}
	return "Error"
}

// Message returns the raised message without the type name.
func (r *Raised) Message() string {
	if inst, ok := r.Instance(); ok {
		return inst.Message()
	}
	return r.Value.String()
}

// ExitStatus extracts the process exit status from a SystemExit. No
// argument or nil is 0, an integral number in the int32 range is that
// value, a boolean is 1 for true and 0 for false. Any other argument,
// including NaN, infinities and fractions, is status 1 and is returned as a
// message for the diagnostic stream.
func (r *Raised) ExitStatus() (status int, message string, ok bool) {
	if !r.InstanceOf(SystemExit) {
		return 0, "", false
	}
	inst, _ := r.Instance()
	if len(inst.Args) == 0 {
		return 0, "", true
	}
	switch v := inst.Args[0].(type) {
	case lua.LNumber:
		if n, ok := exitCode(float64(v)); ok {
			return n, "", true
		}
		return 1, v.String(), true
	case lua.LBool:
		if v {
			return 1, "", true
		}
		return 0, "", true
	}
	if inst.Args[0] == lua.LNil {
		return 0, "", true
	}
	return 1, inst.Args[0].String(), true
}

// Render formats the error for the diagnostic stream: the traceback, then
// the type and message.
func (r *Raised) Render() string {
	var b strings.Builder
	if tb := strings.TrimRight(r.Traceback, "\n"); tb != "" {
		b.WriteString(tb)
		b.WriteByte('\n')
	}
	b.WriteString(r.TypeName())
	if msg := r.Message(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

// exitCode converts f to a status when it is an integer the host can pass to
// the operating system unchanged.
func exitCode(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
