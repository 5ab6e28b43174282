package finalize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-tylang/tylang/internal/finalize"
	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/parser"
	"github.com/go-tylang/tylang/internal/types"
)

func TestFinalizeStructureFieldTypes(t *testing.T) {
	src := `
structure Point ( x: Float, y: Float )
function main () -> Float ( return 1.0; )
`
	prelim, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	prog, err := finalize.Finalize(prelim)
	require.NoError(t, err)

	point := prog.StructureByName["Point"]
	require.NotNil(t, point)
	require.True(t, point.Fields[0].Type.Equal(types.Primitive{Tag: types.Float}))
}

func TestFinalizeRejectsForwardStructureReference(t *testing.T) {
	src := `
structure Line ( start: Point )
structure Point ( x: Float, y: Float )
function main () -> Float ( return 1.0; )
`
	prelim, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	_, err = finalize.Finalize(prelim)
	require.Error(t, err, "a structure may only reference previously-declared structures")
}

func TestFinalizeParameterizedStructure(t *testing.T) {
	src := `
structure Point[T,U] ( x: T, y: U )
function main () -> Float ( return 1.0; )
`
	prelim, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	prog, err := finalize.Finalize(prelim)
	require.NoError(t, err)

	point := prog.StructureByName["Point"]
	require.Equal(t, []string{"T", "U"}, point.TypeParams)
	require.Equal(t, types.Placeholder{Name: "T"}, point.Fields[0].Type)
}

func TestFinalizeUnknownTypeName(t *testing.T) {
	src := `
structure Point ( x: Bogus )
function main () -> Float ( return 1.0; )
`
	prelim, err := parser.Parse(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	_, err = finalize.Finalize(prelim)
	require.Error(t, err)
}
