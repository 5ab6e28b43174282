package interp_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-tylang/tylang/internal/asm"
	"github.com/go-tylang/tylang/internal/check"
	"github.com/go-tylang/tylang/internal/compiler"
	"github.com/go-tylang/tylang/internal/finalize"
	"github.com/go-tylang/tylang/internal/interp"
	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/parser"
	"github.com/go-tylang/tylang/internal/types"
	"github.com/go-tylang/tylang/internal/value"
)

// runSource drives the whole pipeline: lex, parse, finalize, check,
// compile, interpret.
func runSource(t *testing.T, src string) value.Value {
	t.Helper()
	prelim, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	typed, err := finalize.Finalize(prelim)
	require.NoError(t, err)
	require.NoError(t, check.Program(typed))
	prog, err := compiler.Compile(typed)
	require.NoError(t, err)
	v, err := interp.New(prog).Run(context.Background())
	require.NoError(t, err)
	return v
}

// S4 — structures and functions, front to back.
func TestRunPointLineProgram(t *testing.T) {
	v := runSource(t, `
structure Point ( x: Float, y: Float )
structure Line ( start: Point, end: Point, )
function manhattan_length (line: Line) -> Float (
  a = (line.start.x + line.end.x);
  b = (line.start.y + line.end.y);
  return a + b;
)
function main () -> Float (
  origin = Point(x=0., y=0.,);
  one_one = Point(x=4., y=5.,);
  line_a = Line(start=origin, end=one_one,);
  length = manhattan_length(line=line_a,);
  return length;
)
`)
	require.Equal(t, value.Tagged{Tag: types.Float, Num: 9.0}, v)
}

// S6 — type-parameter resolution.
func TestRunParameterizedStructure(t *testing.T) {
	v := runSource(t, `
structure Point[T,U] ( x: T, y: U )
function main () -> Float (
  origin = Point[T=Float, U=Float](x=0., y=0.);
  return origin.x;
)
`)
	require.Equal(t, value.Tagged{Tag: types.Float, Num: 0.0}, v)
}

// Named call arguments reach the callee reordered into parameter order
// even when the call site lists them backwards.
func TestRunCallArgumentReordering(t *testing.T) {
	v := runSource(t, `
function diff (lhs: Float, rhs: Float) -> Float (
  return lhs + rhs + rhs;
)
function main () -> Float (
  return diff(rhs=1., lhs=10.);
)
`)
	require.Equal(t, value.Tagged{Tag: types.Float, Num: 12.0}, v)
}

func TestPrintNameWritesToConfiguredSink(t *testing.T) {
	prog, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE main
STORE_FROM_LITERAL x int 5
PRINT_NAME x
PUSH_FROM_LITERAL int 0
RETURN
END_SUBROUTINE main
`))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = interp.New(prog, interp.WithOutput(&out)).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "5\n", out.String())
}

// Property 5: a CALL_SUBROUTINE with k arguments removes exactly k
// values from the caller's stack and pushes exactly one; anything the
// caller pushed beneath the arguments survives untouched.
func TestCallLeavesCallerStackBalanced(t *testing.T) {
	v := runAsm(t, `
START_SUBROUTINE add a b
PUSH_FROM_NAME a
PUSH_FROM_NAME b
BINARY_ADD
RETURN
END_SUBROUTINE add
START_SUBROUTINE main
PUSH_FROM_LITERAL int 100
PUSH_FROM_LITERAL int 1
PUSH_FROM_LITERAL int 2
CALL_SUBROUTINE add
BINARY_ADD
RETURN
END_SUBROUTINE main
`)
	tagged := v.(value.Tagged)
	require.Equal(t, 103.0, tagged.Num)
}
