package asm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-tylang/tylang/internal/asm"
	"github.com/go-tylang/tylang/internal/bytecode"
)

func TestLexProgramTrimsAndSplits(t *testing.T) {
	lines, err := asm.LexProgram(strings.NewReader(`
   START_SUBROUTINE   main
PUSH_FROM_LITERAL int  2

RETURN
END_SUBROUTINE main
`))
	require.NoError(t, err)
	require.Len(t, lines, 4)
	require.Equal(t, "START_SUBROUTINE", lines[0].Code)
	require.Equal(t, []string{"main"}, lines[0].Args)
	require.Equal(t, "PUSH_FROM_LITERAL", lines[1].Code)
	require.Equal(t, []string{"int", "2"}, lines[1].Args)
}

func TestParseProgramBuildsSubroutine(t *testing.T) {
	prog, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE main
PUSH_FROM_LITERAL int 1
RETURN
END_SUBROUTINE main
`))
	require.NoError(t, err)
	main := prog.Subroutines["main"]
	require.NotNil(t, main)
	require.Len(t, main.Ops, 2)
	require.IsType(t, bytecode.PushFromLiteral{}, main.Ops[0])
	require.IsType(t, bytecode.Return{}, main.Ops[1])
}

func TestParseProgramWithArguments(t *testing.T) {
	prog, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE add a b
PUSH_FROM_NAME a
PUSH_FROM_NAME b
BINARY_ADD
RETURN
END_SUBROUTINE add
START_SUBROUTINE main
PUSH_FROM_LITERAL int 1
PUSH_FROM_LITERAL int 2
CALL_SUBROUTINE add
RETURN
END_SUBROUTINE main
`))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, prog.Subroutines["add"].Arguments)
}

func TestParseProgramRejectsNestedSubroutines(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE outer
START_SUBROUTINE inner
END_SUBROUTINE inner
END_SUBROUTINE outer
`))
	require.Error(t, err)
}

func TestParseProgramRejectsMismatchedEnd(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE main
RETURN
END_SUBROUTINE notmain
`))
	require.Error(t, err)
}

func TestParseProgramRejectsOpOutsideSubroutine(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
RETURN
START_SUBROUTINE main
RETURN
END_SUBROUTINE main
`))
	require.Error(t, err)
}

func TestParseProgramRequiresMain(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE f
RETURN
END_SUBROUTINE f
`))
	require.Error(t, err)
}

func TestParseProgramRejectsUnterminatedSubroutine(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE main
RETURN
`))
	require.Error(t, err)
}

func TestParseProgramRejectsWrongArity(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE main
BINARY_ADD extra
RETURN
END_SUBROUTINE main
`))
	require.Error(t, err)
}

func TestParseProgramRejectsUnknownOp(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE main
FROBNICATE
END_SUBROUTINE main
`))
	require.Error(t, err)
}

func TestParseProgramRejectsMalformedLiteral(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE main
PUSH_FROM_LITERAL int notanumber
RETURN
END_SUBROUTINE main
`))
	require.Error(t, err)
}

func TestParseProgramRejectsUnknownTag(t *testing.T) {
	_, err := asm.Parse(strings.NewReader(`
START_SUBROUTINE main
PUSH_FROM_LITERAL string 1
RETURN
END_SUBROUTINE main
`))
	require.Error(t, err)
}
