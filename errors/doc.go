// Package errors provides structured error types for the nsplua host.
//
// Errors are categorized by Phase (the pipeline stage or startup step where the
// error occurred) and Kind (error category). The Error type carries the guest
// source position when one is known, the offending value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindSyntax).
//		Source("main.lua").
//		At(3, 7).
//		Detail("unexpected symbol near '='").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Syntax("main.lua", 3, 7, "unexpected symbol")
//	err := errors.AllocationFailed(errors.PhaseStartup, 2<<20)
//
// All errors implement the standard error interface and support errors.Is/As.
// Fatal reports whether an error must terminate the process.
package errors
