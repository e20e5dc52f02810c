// Package testbed runs the guest scripts under testdata end to end through
// the runtime, with a Go host module they call back into.
package testbed

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/nsplua"
	"github.com/wippyai/nsplua/arena"
	"github.com/wippyai/nsplua/config"
	"github.com/wippyai/nsplua/host"
	"github.com/wippyai/nsplua/runtime"
)

// MinimalHost implements the minimal module used by testdata/minimal.lua.
type MinimalHost struct {
	adds []struct{ a, b, result float64 }
	mu   sync.Mutex
}

func (h *MinimalHost) Namespace() string {
	return "minimal"
}

func (h *MinimalHost) Add(L *lua.LState) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, b := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
	result := a + b
	h.adds = append(h.adds, struct{ a, b, result float64 }{a, b, result})
	L.Push(lua.LNumber(result))
	return 1
}

func runScript(t *testing.T, argv ...string) (nsplua.Outcome, string, *MinimalHost) {
	t.Helper()
	ctx := context.Background()

	a, err := arena.Reserve(config.HeapSize, config.CallStackFrames)
	if err != nil {
		t.Fatalf("reserve arena: %v", err)
	}
	defer a.Release()

	var stdout bytes.Buffer
	_, hostCfg := host.Resolve(append([]string{"nsplua"}, argv...), config.DefaultModuleDir)
	rt, err := runtime.New(ctx, a, runtime.Options{Stdout: &stdout, Host: hostCfg})
	if err != nil {
		t.Fatalf("create runtime: %v", err)
	}
	defer rt.Close()

	h := &MinimalHost{}
	if err := rt.RegisterHost(h); err != nil {
		t.Fatalf("register host: %v", err)
	}

	out, err := rt.RunFile(ctx, hostCfg.Script)
	if err != nil {
		t.Fatalf("run %s: %v", hostCfg.Script, err)
	}
	return out, stdout.String(), h
}

func TestMinimal_ComputeUsingHost(t *testing.T) {
	out, stdout, h := runScript(t, "testdata/minimal.lua")
	if out.Kind != nsplua.Success {
		t.Fatalf("Kind = %v, want success: %s", out.Kind, out.Diagnostic)
	}
	if stdout != "15\n30\n" {
		t.Errorf("stdout = %q, want %q", stdout, "15\n30\n")
	}
	if len(h.adds) != 1 {
		t.Fatalf("host called %d times, want 1", len(h.adds))
	}
	if h.adds[0].a != 10 || h.adds[0].b != 20 || h.adds[0].result != 30 {
		t.Errorf("add call = %+v, want 10 + 20 = 30", h.adds[0])
	}
}

func TestExitFromNestedCall(t *testing.T) {
	out, stdout, _ := runScript(t, "testdata/exit_nested.lua")
	if out.Kind != nsplua.ExitRequested {
		t.Fatalf("Kind = %v, want exit requested: %s", out.Kind, out.Diagnostic)
	}
	if out.ExitCode() != 42 {
		t.Errorf("ExitCode() = %d, want 42", out.ExitCode())
	}
	if stdout != "false\tValueError\tinner\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestModuleSearchPath(t *testing.T) {
	out, stdout, _ := runScript(t, "testdata/modules.lua", "ada")
	if out.Kind != nsplua.Success {
		t.Fatalf("Kind = %v, want success: %s", out.Kind, out.Diagnostic)
	}
	if stdout != "hello, ada\ntrue\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestStackOverflowIsControlled(t *testing.T) {
	out, stdout, _ := runScript(t, "testdata/overflow.lua")
	if out.Kind != nsplua.UncaughtException {
		t.Fatalf("Kind = %v, want uncaught exception", out.Kind)
	}
	if !strings.Contains(out.Diagnostic, "stack overflow") {
		t.Errorf("Diagnostic = %q, want stack overflow", out.Diagnostic)
	}
	if stdout != "before\n" {
		t.Errorf("stdout = %q, want before", stdout)
	}
}

func TestRepeatedRunsAreIndependent(t *testing.T) {
	for i := 0; i < 3; i++ {
		out, stdout, _ := runScript(t, "testdata/minimal.lua")
		if out.Kind != nsplua.Success || stdout != "15\n30\n" {
			t.Fatalf("run %d: %v %q", i, out.Kind, stdout)
		}
	}
}
