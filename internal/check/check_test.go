package check_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-tylang/tylang/internal/check"
	"github.com/go-tylang/tylang/internal/finalize"
	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/parser"
)

func checkSource(t *testing.T, src string) error {
	t.Helper()
	prelim, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	prog, err := finalize.Finalize(prelim)
	require.NoError(t, err)
	return check.Program(prog)
}

func TestCheckPointLineProgram(t *testing.T) {
	src := `
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
`
	require.NoError(t, checkSource(t, src))
}

func TestCheckRebindingWithDifferentTypeFails(t *testing.T) {
	src := `
structure Point ( x: Float, y: Float )
function main () -> Float (
  a = 1.0;
  a = Point(x=1.0, y=2.0);
  return a.x;
)
`
	err := checkSource(t, src)
	require.Error(t, err, "rebinding a with a different type must fail")
}

func TestCheckStatementAfterReturnFails(t *testing.T) {
	src := `
function main () -> Float (
  return 1.0;
  a = 2.0;
)
`
	require.Error(t, checkSource(t, src))
}

func TestCheckMissingReturnFails(t *testing.T) {
	src := `
function main () -> Float (
  a = 1.0;
)
`
	require.Error(t, checkSource(t, src))
}

func TestCheckReturnTypeMismatchFails(t *testing.T) {
	src := `
structure Point ( x: Float, y: Float )
function main () -> Float (
  return Point(x=1.0, y=2.0);
)
`
	require.Error(t, checkSource(t, src))
}

func TestCheckUnknownFieldFails(t *testing.T) {
	src := `
structure Point ( x: Float, y: Float )
function main () -> Float (
  p = Point(x=1.0, y=2.0);
  return p.z;
)
`
	require.Error(t, checkSource(t, src))
}

func TestCheckForwardFunctionCallRejected(t *testing.T) {
	src := `
function main () -> Float ( return later(); )
function later () -> Float ( return 1.0; )
`
	err := checkSource(t, src)
	require.Error(t, err, "calling a not-yet-checked function is rejected as unknown")
}

func TestCheckBinaryOperandMismatchFails(t *testing.T) {
	src := `
structure Point ( x: Float, y: Float )
function main () -> Float (
  p = Point(x=1.0, y=2.0);
  return p + p.x;
)
`
	require.Error(t, checkSource(t, src))
}

func TestCheckParameterizedConstructionRequiresTypeArgs(t *testing.T) {
	src := `
structure Point[T,U] ( x: T, y: U )
function main () -> Float (
  p = Point[T=Float, U=Float](x=0.0, y=0.0);
  return p.x;
)
`
	require.NoError(t, checkSource(t, src))

	missing := `
structure Point[T,U] ( x: T, y: U )
function main () -> Float (
  p = Point(x=0.0, y=0.0);
  return p.x;
)
`
	require.Error(t, checkSource(t, missing), "a parameterized structure requires type arguments")
}

func TestCheckFunctionCallArgumentTypeMismatchFails(t *testing.T) {
	// Argument types are checked against the callee's declared parameter
	// types, not just argument names.
	src := `
structure Point ( x: Float, y: Float )
function identity (a: Float) -> Float ( return a; )
function main () -> Float (
  p = Point(x=1.0, y=2.0);
  return identity(a=p);
)
`
	require.Error(t, checkSource(t, src))
}
