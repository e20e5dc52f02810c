// Package arena reserves the fixed memory budget and call depth of the guest
// engine.
//
// The device has no virtual memory and no stack growth, so both limits are
// fixed once at startup. A quarter of the arena becomes the engine's value
// registry, a fixed number of slots that never grows, so exhaustion surfaces
// as a guest allocation error. The rest is headroom for guest heap objects:
// the Go runtime soft memory limit is pinned to the host baseline plus the
// arena size for as long as the arena is held.
package arena

import (
	stderrors "errors"
	"fmt"
	"math"
	"runtime"
	"runtime/debug"

	"github.com/wippyai/nsplua/config"
	"github.com/wippyai/nsplua/errors"
)

// SlotSize is the width in bytes of one guest value slot (an interface value).
const SlotSize = 16

// registryShare is the fraction (1/registryShare) of the arena given to the
// value registry.
const registryShare = 4

// minSlots is the smallest registry the engine can boot its standard
// libraries into.
const minSlots = 1024

// ErrReleased is returned when an arena is released or bound after release.
var ErrReleased = stderrors.New("arena: already released")

// Arena is one fixed-size guest memory budget owned by the process.
type Arena struct {
	owner     string
	size      int
	depth     int
	prevLimit int64
	pinned    bool
	released  bool
}

// Reserve validates size and depth and commits the arena. Any failure is an
// allocation error in the startup phase: the caller must terminate without
// running guest code.
func Reserve(size, depth int) (*Arena, error) {
	if size <= 0 || size > config.MaxHeapSize {
		return nil, errors.New(errors.PhaseStartup, errors.KindAllocation).
			Value(size).
			Detailf("arena size %d outside (0, %d]", size, config.MaxHeapSize).
			Build()
	}
	if size/(SlotSize*registryShare) < minSlots {
		return nil, errors.New(errors.PhaseStartup, errors.KindAllocation).
			Value(size).
			Detailf("arena size %d holds fewer than %d slots", size, minSlots).
			Build()
	}
	if depth <= 0 {
		return nil, errors.InvalidInput(errors.PhaseStartup, fmt.Sprintf("call depth %d must be positive", depth))
	}

	a := &Arena{size: size, depth: depth}
	a.pin()
	return a, nil
}

// pin caps the Go heap at what the host already uses plus the arena size. A
// limit already set lower by the embedding process is left alone.
func (a *Arena) pin() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	limit := int64(ms.HeapInuse+ms.StackInuse) + int64(a.size)

	prev := debug.SetMemoryLimit(-1)
	if prev != math.MaxInt64 && prev <= limit {
		return
	}
	debug.SetMemoryLimit(limit)
	a.prevLimit = prev
	a.pinned = true
}

// Size returns the arena size in bytes.
func (a *Arena) Size() int {
	return a.size
}

// Slots returns the fixed number of guest value slots in the registry.
func (a *Arena) Slots() int {
	return a.size / (SlotSize * registryShare)
}

// StackDepth returns the maximum guest call depth.
func (a *Arena) StackDepth() int {
	return a.depth
}

// Bind hands the arena to its single consumer. A second bind fails: the
// arena is never reentered once execution begins.
func (a *Arena) Bind(owner string) error {
	if a.released {
		return ErrReleased
	}
	if a.owner != "" {
		return errors.New(errors.PhaseStartup, errors.KindAlreadyBound).
			Detailf("arena already bound to %s", a.owner).
			Build()
	}
	a.owner = owner
	return nil
}

// Owner returns the name the arena was bound to, or "".
func (a *Arena) Owner() string {
	return a.owner
}

// Released reports whether Release has run.
func (a *Arena) Released() bool {
	return a.released
}

// Release returns the budget to the runtime. It must be called exactly once,
// after the engine using the arena is closed.
func (a *Arena) Release() error {
	if a.released {
		return ErrReleased
	}
	a.released = true
	a.owner = ""
	if a.pinned {
		debug.SetMemoryLimit(a.prevLimit)
		a.pinned = false
	}
	return nil
}
