package arena

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/nsplua/config"
	"github.com/wippyai/nsplua/errors"
)

func TestReserve(t *testing.T) {
	a, err := Reserve(config.HeapSize, config.CallStackFrames)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	defer a.Release()

	if a.Size() != config.HeapSize {
		t.Errorf("Size() = %d, want %d", a.Size(), config.HeapSize)
	}
	if want := config.HeapSize / (SlotSize * registryShare); a.Slots() != want {
		t.Errorf("Slots() = %d, want %d", a.Slots(), want)
	}
	if a.StackDepth() != config.CallStackFrames {
		t.Errorf("StackDepth() = %d, want %d", a.StackDepth(), config.CallStackFrames)
	}
}

func TestReserve_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		depth int
		kind  errors.Kind
	}{
		{"zero size", 0, 10, errors.KindAllocation},
		{"negative size", -1, 10, errors.KindAllocation},
		{"too large", config.MaxHeapSize + 1, 10, errors.KindAllocation},
		{"too small for engine", SlotSize * registryShare * (minSlots - 1), 10, errors.KindAllocation},
		{"zero depth", config.HeapSize, 0, errors.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Reserve(tt.size, tt.depth)
			if err == nil {
				a.Release()
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error type = %T, want *errors.Error", err)
			}
			if e.Phase != errors.PhaseStartup || e.Kind != tt.kind {
				t.Errorf("got %s/%s, want startup/%s", e.Phase, e.Kind, tt.kind)
			}
		})
	}
}

func TestArena_BindOnce(t *testing.T) {
	a, err := Reserve(config.HeapSize, 8)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	defer a.Release()

	if err := a.Bind("engine"); err != nil {
		t.Fatalf("first Bind: %v", err)
	}
	if a.Owner() != "engine" {
		t.Errorf("Owner() = %q, want engine", a.Owner())
	}
	err = a.Bind("other")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseStartup, Kind: errors.KindAlreadyBound}) {
		t.Errorf("second Bind error = %v, want already_bound", err)
	}
}

func TestArena_ReleaseOnce(t *testing.T) {
	a, err := Reserve(config.HeapSize, 8)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := a.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !a.Released() {
		t.Error("Released() = false after Release")
	}
	if err := a.Release(); !stderrors.Is(err, ErrReleased) {
		t.Errorf("second Release error = %v, want ErrReleased", err)
	}
	if err := a.Bind("engine"); !stderrors.Is(err, ErrReleased) {
		t.Errorf("Bind after Release error = %v, want ErrReleased", err)
	}
}
