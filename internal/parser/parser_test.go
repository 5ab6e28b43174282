package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-tylang/tylang/internal/ast"
	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/parser"
)

const pointLineSource = `
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

func TestParseProgram(t *testing.T) {
	prog, err := parser.Parse(lexer.New(strings.NewReader(pointLineSource)))
	require.NoError(t, err)
	require.Len(t, prog.Structures, 2)
	require.Len(t, prog.Functions, 2)

	point := prog.Structures[0]
	require.Equal(t, "Point", point.Name)
	require.Equal(t, []ast.FieldDef{{Name: "x", Type: "Float"}, {Name: "y", Type: "Float"}}, point.Fields)

	main := prog.Functions[1]
	require.Equal(t, "main", main.Name)
	require.Len(t, main.Body, 5)

	ret, ok := main.Body[4].(ast.Return)
	require.True(t, ok)
	ref, ok := ret.Expr.(ast.VariableReference)
	require.True(t, ok)
	require.Equal(t, "length", ref.Name)
}

func TestParseTypeParamsAndTypeArgs(t *testing.T) {
	src := `
structure Point[T,U] ( x: T, y: U )
function main () -> Float (
  origin = Point[T=Float, U=Float](x=0., y=0.);
  return origin.x;
)
`
	prog, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	require.Equal(t, []string{"T", "U"}, prog.Structures[0].TypeParams)

	main := prog.Functions[0]
	assign := main.Body[0].(ast.Assignment)
	cons := assign.Expr.(ast.Construction)
	require.Equal(t, "Point", cons.Type)
	require.Equal(t, []ast.TypeArg{{Param: "T", Type: "Float"}, {Param: "U", Type: "Float"}}, cons.TypeArgs)
}

func TestParseErrorReturnsPartialProgramAndError(t *testing.T) {
	src := `
structure Point ( x: Float, y: Float )
function broken (
`
	prog, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.Error(t, err, "caller must see a non-nil error and must not proceed to finalization")
	require.NotNil(t, prog, "the partial tree is still returned for diagnostic dumping")
	require.Len(t, prog.Structures, 1)
}

func TestNamedArgsOnly(t *testing.T) {
	// Positional call arguments are not part of the grammar; a bare
	// positional-looking argument must fail to parse as a named arg.
	src := `
function f (a: Float) -> Float ( return a; )
function main () -> Float ( return f(3.0); )
`
	_, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.Error(t, err)
}
