package runtime

import (
	"context"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Clock is the utime host module: a monotonic tick counter, wall time and a
// cancellable sleep.
type Clock struct {
	start time.Time
	now   func() time.Time
}

// NewClock creates a clock whose ticks count from now.
func NewClock() *Clock {
	return &Clock{start: time.Now(), now: time.Now}
}

func (c *Clock) Namespace() string {
	return "utime"
}

// TicksMs returns milliseconds since the clock started.
func (c *Clock) TicksMs(L *lua.LState) int {
	L.Push(lua.LNumber(c.now().Sub(c.start).Milliseconds()))
	return 1
}

// TicksDiff returns new - old for two tick values.
func (c *Clock) TicksDiff(L *lua.LState) int {
	L.Push(L.CheckNumber(1) - L.CheckNumber(2))
	return 1
}

// Time returns seconds since the Unix epoch.
func (c *Clock) Time(L *lua.LState) int {
	L.Push(lua.LNumber(c.now().Unix()))
	return 1
}

// Sleep blocks for the given number of seconds. A cancelled run context
// interrupts the sleep with a guest error.
func (c *Clock) Sleep(L *lua.LState) int {
	d := time.Duration(float64(L.CheckNumber(1)) * float64(time.Second))
	if d <= 0 {
		return 0
	}
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		L.RaiseError("sleep interrupted: %v", ctx.Err())
	}
	return 0
}
