// Package driver runs one SourceUnit through the engine pipeline and
// classifies the result.
//
// Every stage failure (lex, parse, compile, uncaught guest error) and every
// exit request comes back as an nsplua.Outcome. The error result of Run is
// reserved for the fatal case where a non-local transfer reached the driver
// with no protected call to receive it.
package driver

import (
	"context"
	stderrors "errors"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/nsplua"
	"github.com/wippyai/nsplua/engine"
	"github.com/wippyai/nsplua/errors"
)

// FileGlobal is the guest global holding the file identity in File mode.
const FileGlobal = "__file__"

// Driver executes source units on one engine.
type Driver struct {
	engine *engine.Engine
}

// New creates a driver for e.
func New(e *engine.Engine) *Driver {
	return &Driver{engine: e}
}

// Engine returns the engine the driver runs units on.
func (d *Driver) Engine() *engine.Engine {
	return d.engine
}

// Run consumes unit and executes it in mode. Guest state changes made before
// a failure persist in the engine.
func (d *Driver) Run(ctx context.Context, unit *nsplua.SourceUnit, mode nsplua.Mode) (out nsplua.Outcome, err error) {
	origin := unit.Origin()
	log := Logger().With(zap.String("origin", origin), zap.Stringer("mode", mode))

	defer func() {
		if r := recover(); r != nil {
			out = nsplua.Outcome{}
			err = errors.NoCapturePoint(r)
			log.Error("transfer escaped the pipeline", zap.Any("value", r))
		}
	}()

	r, err := unit.Open()
	if err != nil {
		log.Debug("lex failed", zap.Error(err))
		return failure(nsplua.LexFailure, err), nil
	}

	chunk, err := d.parse(r, origin, mode)
	if err != nil {
		log.Debug("parse failed", zap.Error(err))
		return failure(stageKind(err), err), nil
	}
	log.Debug("parsed")

	prog, err := d.engine.Compile(chunk)
	if err != nil {
		log.Debug("compile failed", zap.Error(err))
		return failure(nsplua.CompileError, err), nil
	}
	if mode == nsplua.File {
		d.engine.SetGlobal(FileGlobal, origin)
	}
	log.Debug("compiled")

	out = classify(origin, d.engine.Execute(ctx, prog))
	log.Debug("executed", zap.Stringer("kind", out.Kind), zap.Int("status", out.Status))
	return out, nil
}

// parse releases r once the parse tree is built, whatever the result.
func (d *Driver) parse(r io.ReadCloser, origin string, mode nsplua.Mode) (*engine.Chunk, error) {
	defer r.Close()
	kind := engine.FileInput
	if mode == nsplua.Interactive {
		kind = engine.SingleInput
	}
	return d.engine.Parse(r, origin, kind)
}

// stageKind maps a pipeline error to the outcome of the stage that raised it.
func stageKind(err error) nsplua.Kind {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return nsplua.ParseError
	}
	switch e.Phase {
	case errors.PhaseLex:
		return nsplua.LexFailure
	case errors.PhaseCompile:
		return nsplua.CompileError
	}
	return nsplua.ParseError
}

func failure(kind nsplua.Kind, err error) nsplua.Outcome {
	return nsplua.Outcome{Kind: kind, Err: err, Diagnostic: diagnostic(err)}
}

func diagnostic(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Diagnostic()
	}
	return err.Error()
}

// classify turns the result of Execute into an outcome. SystemExit and its
// subclasses request an exit; anything else raised is uncaught.
func classify(origin string, err error) nsplua.Outcome {
	if err == nil {
		return nsplua.Outcome{Kind: nsplua.Success}
	}

	var raised *engine.Raised
	if !stderrors.As(err, &raised) {
		return nsplua.Outcome{
			Kind:       nsplua.UncaughtException,
			Err:        errors.Wrap(errors.PhaseExecute, errors.KindUncaught, err, "execution failed"),
			Diagnostic: err.Error(),
		}
	}

	if status, msg, ok := raised.ExitStatus(); ok {
		return nsplua.Outcome{
			Kind:   nsplua.ExitRequested,
			Status: status,
			Err: errors.New(errors.PhaseExecute, errors.KindExit).
				Source(origin).
				Value(status).
				Detail(msg).
				Cause(raised).
				Build(),
			Diagnostic: msg,
		}
	}

	return nsplua.Outcome{
		Kind: nsplua.UncaughtException,
		Err: errors.New(errors.PhaseExecute, errors.KindUncaught).
			Source(origin).
			Value(raised.TypeName()).
			Detail(raised.Message()).
			Cause(raised).
			Build(),
		Diagnostic: raised.Render(),
	}
}
