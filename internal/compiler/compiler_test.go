package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-tylang/tylang/internal/bytecode"
	"github.com/go-tylang/tylang/internal/check"
	"github.com/go-tylang/tylang/internal/compiler"
	"github.com/go-tylang/tylang/internal/finalize"
	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/parser"
)

func compileSource(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	prelim, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	prog, err := finalize.Finalize(prelim)
	require.NoError(t, err)
	require.NoError(t, check.Program(prog))
	out, err := compiler.Compile(prog)
	require.NoError(t, err)
	return out
}

func TestCompileReordersConstructionArgsToDeclarationOrder(t *testing.T) {
	src := `
structure Point ( x: Float, y: Float )
function main () -> Float (
  p = Point(y=2.0, x=1.0);
  return p.x;
)
`
	prog := compileSource(t, src)
	main := prog.Subroutines["main"]
	require.NotEmpty(t, main.Ops)

	// The first two ops must push x's value (1.0) then y's value (2.0),
	// in Point's declared field order, regardless of call-site order.
	first, ok := main.Ops[0].(bytecode.PushFromLiteral)
	require.True(t, ok)
	require.Equal(t, 1.0, first.Lit)

	second, ok := main.Ops[1].(bytecode.PushFromLiteral)
	require.True(t, ok)
	require.Equal(t, 2.0, second.Lit)
}

func TestCompileReordersCallArgsToParamOrder(t *testing.T) {
	src := `
function sub (a: Float, b: Float) -> Float ( return a; )
function main () -> Float ( return sub(b=2.0, a=1.0); )
`
	prog := compileSource(t, src)
	main := prog.Subroutines["main"]

	first, ok := main.Ops[0].(bytecode.PushFromLiteral)
	require.True(t, ok)
	require.Equal(t, 1.0, first.Lit, "a is pushed first, matching sub's declared parameter order")

	second, ok := main.Ops[1].(bytecode.PushFromLiteral)
	require.True(t, ok)
	require.Equal(t, 2.0, second.Lit)

	require.IsType(t, bytecode.CallSubroutine{}, main.Ops[2])
}

func TestCompileMissingMainFails(t *testing.T) {
	src := `function f () -> Float ( return 1.0; )`
	prelim, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	prog, err := finalize.Finalize(prelim)
	require.NoError(t, err)
	require.NoError(t, check.Program(prog))
	_, err = compiler.Compile(prog)
	require.Error(t, err)
	require.ErrorIs(t, err, bytecode.MissingMainError{})
}

func TestCompileBinaryAdd(t *testing.T) {
	src := `
function main () -> Float (
  a = 1.0;
  b = 2.0;
  return a + b;
)
`
	prog := compileSource(t, src)
	ops := prog.Subroutines["main"].Ops
	var sawAdd bool
	for _, op := range ops {
		if _, ok := op.(bytecode.BinaryAdd); ok {
			sawAdd = true
		}
	}
	require.True(t, sawAdd)
}
