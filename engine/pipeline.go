package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"

	"github.com/wippyai/nsplua/errors"
)

// InputKind is the grammar entry point used by Parse.
type InputKind int

const (
	// FileInput parses a whole module.
	FileInput InputKind = iota
	// SingleInput parses one interactive statement, preferring the
	// expression form so its values can be echoed.
	SingleInput
)

// Chunk is a parse tree ready for compilation.
type Chunk struct {
	name  string
	stmts []ast.Stmt
	echo  bool
}

// Name returns the chunk's origin tag.
func (c *Chunk) Name() string {
	return c.name
}

// Program is a compiled chunk.
type Program struct {
	proto *lua.FunctionProto
	name  string
	echo  bool
}

// Name returns the program's file identity.
func (p *Program) Name() string {
	return p.name
}

// Parse tokenizes and parses source read from r. A syntax error is returned
// as *errors.Error with phase parse, positioned at the offending token; a
// failure to read r is a lex error.
func (e *Engine) Parse(r io.Reader, name string, kind InputKind) (*Chunk, error) {
	if kind == FileInput {
		stmts, err := parse.Parse(r, name)
		if err != nil {
			return nil, syntaxError(name, err)
		}
		return &Chunk{name: name, stmts: stmts}, nil
	}

	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Unreadable(name, err)
	}
	text := string(src)
	if stmts, err := parse.Parse(strings.NewReader("return "+text), name); err == nil {
		return &Chunk{name: name, stmts: stmts, echo: true}, nil
	}
	stmts, err := parse.Parse(strings.NewReader(text), name)
	if err != nil {
		return nil, syntaxError(name, err)
	}
	return &Chunk{name: name, stmts: stmts}, nil
}

// Compile lowers c to bytecode. The chunk name becomes the program's file
// identity in guest tracebacks.
func (e *Engine) Compile(c *Chunk) (*Program, error) {
	proto, err := lua.Compile(c.stmts, c.name)
	if err != nil {
		return nil, errors.InvalidProgram(c.name, err)
	}
	return &Program{proto: proto, name: c.name, echo: c.echo}, nil
}

// Execute runs p with no arguments inside the engine's protected call, the
// one capture point for guest errors raised at any call depth. A guest error
// is returned as *Raised. Values of an echoed expression are printed to the
// engine's stdout.
func (e *Engine) Execute(ctx context.Context, p *Program) error {
	L := e.L
	L.SetContext(ctx)
	defer L.RemoveContext()

	base := L.GetTop()
	defer L.SetTop(base)

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return newRaised(err)
	}

	if p.echo {
		e.echo(L, base)
	}
	return nil
}

// echo prints the values above base, tab separated. A lone nil prints
// nothing.
func (e *Engine) echo(L *lua.LState, base int) {
	top := L.GetTop()
	if top == base || (top == base+1 && L.Get(top) == lua.LNil) {
		return
	}
	parts := make([]string, 0, top-base)
	for i := base + 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(e.stdout, strings.Join(parts, "\t"))
}

// IsComplete reports whether text forms a whole statement. See IsComplete.
func (e *Engine) IsComplete(text string) bool {
	return IsComplete(text)
}

// IsComplete reports whether accumulated REPL text can be executed as is.
// Text is incomplete only when the parser ran out of input: an open block,
// bracket or long string. Text with any other syntax error is complete, so
// the error surfaces when it is executed. A short string cannot span lines,
// so one left open at the end of the text is a syntax error, not a
// continuation.
func IsComplete(text string) bool {
	if _, err := parse.Parse(strings.NewReader("return "+text), "<stdin>"); err == nil {
		return true
	}
	_, err := parse.Parse(strings.NewReader(text), "<stdin>")
	return err == nil || !atEOF(err)
}

func atEOF(err error) bool {
	var perr *parse.Error
	if !stderrors.As(err, &perr) {
		return false
	}
	if strings.HasPrefix(perr.Message, "unterminated string") {
		return false
	}
	return perr.Pos.Line == parse.EOF
}

func syntaxError(name string, err error) *errors.Error {
	var perr *parse.Error
	if !stderrors.As(err, &perr) {
		return errors.New(errors.PhaseParse, errors.KindSyntax).
			Source(name).
			Detail(err.Error()).
			Cause(err).
			Build()
	}
	line := perr.Pos.Line
	if line == parse.EOF {
		line = errors.EOF
	}
	detail := perr.Message
	if perr.Token != "" && line != errors.EOF {
		detail += " near '" + perr.Token + "'"
	}
	return errors.New(errors.PhaseParse, errors.KindSyntax).
		Source(name).
		At(line, perr.Pos.Column).
		Value(perr.Token).
		Detail(detail).
		Cause(err).
		Build()
}
