// Package asm implements the line-oriented textual bytecode format:
// lexing source lines into ByteCodeLine values and parsing those into a
// bytecode.Program, symmetric to how internal/bytecode defines the
// binary op set itself.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-tylang/tylang/internal/bytecode"
	"github.com/go-tylang/tylang/internal/types"
)

// Error reports an assembly lex/parse fault, carrying the 1-based source
// line.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ByteCodeLine is one non-blank assembly line split on ASCII spaces: an
// op code and its operand words.
type ByteCodeLine struct {
	Line int
	Code string
	Args []string
}

// LexProgram strips blank lines and splits each remaining line on ASCII
// spaces, trimming surrounding whitespace first, matching
// original_source/basetypes.py's ByteCodeLine.lex_asm trim-then-split
// discipline.
func LexProgram(r io.Reader) ([]ByteCodeLine, error) {
	var lines []ByteCodeLine
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		trimmed := strings.TrimSpace(sc.Text())
		if trimmed == "" {
			continue
		}
		fields := strings.Split(trimmed, " ")
		var words []string
		for _, f := range fields {
			if f != "" {
				words = append(words, f)
			}
		}
		if len(words) == 0 {
			continue
		}
		lines = append(lines, ByteCodeLine{Line: lineNo, Code: words[0], Args: words[1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// opSpec describes one registered op code: its fixed operand arity and how
// to build a bytecode.Op from its operand words. Ops with a variable tail
// (START_SUBROUTINE's argument names) use arity -1.
type opSpec struct {
	arity int
	parse func(line int, args []string) (bytecode.Op, error)
}

// OPS is the registry mapping an assembly op code to its opSpec, used by
// ParseProgram. Building it from a flat table and asserting no duplicate
// code is registered mirrors original_source/lang.py's build_ops_lookup.
var OPS = buildOPS()

func buildOPS() map[string]opSpec {
	table := []struct {
		code string
		spec opSpec
	}{
		{"START_SUBROUTINE", opSpec{-1, parseStartSubroutine}},
		{"END_SUBROUTINE", opSpec{1, parseEndSubroutine}},
		{"PUSH_FROM_LITERAL", opSpec{2, parsePushFromLiteral}},
		{"PUSH_FROM_NAME", opSpec{1, parsePushFromName}},
		{"POP_TO_NAME", opSpec{1, parsePopToName}},
		{"STORE_FROM_LITERAL", opSpec{3, parseStoreFromLiteral}},
		{"BINARY_ADD", opSpec{0, parseBinaryAdd}},
		{"BINARY_SUBTRACT", opSpec{0, parseBinarySubtract}},
		{"CONSTRUCT_STRUCTURE", opSpec{1, parseConstructStructure}},
		{"POP_AND_PUSH_PROPERTY", opSpec{1, parsePopAndPushProperty}},
		{"SET_FLAG", opSpec{1, parseSetFlag}},
		{"BRANCH_TO_FLAG", opSpec{1, parseBranchToFlag}},
		{"RETURN", opSpec{0, parseReturn}},
		{"NOOP", opSpec{0, parseNoop}},
		{"CALL_SUBROUTINE", opSpec{1, parseCallSubroutine}},
		{"PRINT_NAME", opSpec{1, parsePrintName}},
	}
	ops := make(map[string]opSpec, len(table))
	for _, entry := range table {
		if _, dup := ops[entry.code]; dup {
			panic(fmt.Sprintf("asm: duplicate op code registered: %v", entry.code))
		}
		ops[entry.code] = entry.spec
	}
	return ops
}

func checkArity(line int, code string, args []string, arity int) error {
	if arity >= 0 && len(args) != arity {
		return &Error{Line: line, Message: fmt.Sprintf("%v: expected %d operand(s), got %d", code, arity, len(args))}
	}
	return nil
}

func parseTag(line int, s string) (types.PrimitiveTag, error) {
	switch s {
	case "int":
		return types.Int, nil
	case "float":
		return types.Float, nil
	default:
		return 0, &Error{Line: line, Message: fmt.Sprintf("unknown literal tag %q", s)}
	}
}

func parseLiteralValue(line int, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &Error{Line: line, Message: fmt.Sprintf("malformed literal value %q: %v", s, err)}
	}
	return v, nil
}

func parseStartSubroutine(line int, args []string) (bytecode.Op, error) {
	if len(args) < 1 {
		return nil, &Error{Line: line, Message: "START_SUBROUTINE: expected a subroutine name"}
	}
	return bytecode.StartSubroutine{Name: args[0], Args: append([]string(nil), args[1:]...)}, nil
}

func parseEndSubroutine(line int, args []string) (bytecode.Op, error) {
	return bytecode.EndSubroutine{Name: args[0]}, nil
}

func parsePushFromLiteral(line int, args []string) (bytecode.Op, error) {
	tag, err := parseTag(line, args[0])
	if err != nil {
		return nil, err
	}
	lit, err := parseLiteralValue(line, args[1])
	if err != nil {
		return nil, err
	}
	return bytecode.PushFromLiteral{Tag: tag, Lit: lit}, nil
}

func parsePushFromName(line int, args []string) (bytecode.Op, error) {
	return bytecode.PushFromName{Name: args[0]}, nil
}

func parsePopToName(line int, args []string) (bytecode.Op, error) {
	return bytecode.PopToName{Name: args[0]}, nil
}

func parseStoreFromLiteral(line int, args []string) (bytecode.Op, error) {
	tag, err := parseTag(line, args[1])
	if err != nil {
		return nil, err
	}
	lit, err := parseLiteralValue(line, args[2])
	if err != nil {
		return nil, err
	}
	return bytecode.StoreFromLiteral{Name: args[0], Tag: tag, Lit: lit}, nil
}

func parseBinaryAdd(line int, args []string) (bytecode.Op, error)      { return bytecode.BinaryAdd{}, nil }
func parseBinarySubtract(line int, args []string) (bytecode.Op, error) { return bytecode.BinarySubtract{}, nil }

func parseConstructStructure(line int, args []string) (bytecode.Op, error) {
	return bytecode.ConstructStructure{Structure: args[0]}, nil
}

func parsePopAndPushProperty(line int, args []string) (bytecode.Op, error) {
	return bytecode.PopAndPushProperty{Property: args[0]}, nil
}

func parseSetFlag(line int, args []string) (bytecode.Op, error) {
	return bytecode.SetFlag{Flag: args[0]}, nil
}

func parseBranchToFlag(line int, args []string) (bytecode.Op, error) {
	return bytecode.BranchToFlag{Flag: args[0]}, nil
}

func parseReturn(line int, args []string) (bytecode.Op, error) { return bytecode.Return{}, nil }
func parseNoop(line int, args []string) (bytecode.Op, error)   { return bytecode.Noop{}, nil }

func parseCallSubroutine(line int, args []string) (bytecode.Op, error) {
	return bytecode.CallSubroutine{Name: args[0]}, nil
}

func parsePrintName(line int, args []string) (bytecode.Op, error) {
	return bytecode.PrintName{Name: args[0]}, nil
}

// ParseProgram parses a full assembly file's lines into a bytecode.Program.
// START_SUBROUTINE opens a "current subroutine" register;
// nesting is illegal, body ops accumulate into it, and END_SUBROUTINE
// (whose name must match) closes it. Ops outside any subroutine are
// illegal, and a "main" subroutine is required.
func ParseProgram(lines []ByteCodeLine) (*bytecode.Program, error) {
	prog := bytecode.NewProgram()
	var current *bytecode.Subroutine

	for _, l := range lines {
		spec, ok := OPS[l.Code]
		if !ok {
			return nil, &Error{Line: l.Line, Message: fmt.Sprintf("unknown op code %q", l.Code)}
		}
		if err := checkArity(l.Line, l.Code, l.Args, spec.arity); err != nil {
			return nil, err
		}
		op, err := spec.parse(l.Line, l.Args)
		if err != nil {
			return nil, err
		}

		switch o := op.(type) {
		case bytecode.StartSubroutine:
			if current != nil {
				return nil, &Error{Line: l.Line, Message: fmt.Sprintf("nested START_SUBROUTINE %v inside %v", o.Name, current.Name)}
			}
			current = &bytecode.Subroutine{Name: o.Name, Arguments: o.Args}
		case bytecode.EndSubroutine:
			if current == nil {
				return nil, &Error{Line: l.Line, Message: "END_SUBROUTINE outside any subroutine"}
			}
			if o.Name != current.Name {
				return nil, &Error{Line: l.Line, Message: fmt.Sprintf("END_SUBROUTINE %v does not match open %v", o.Name, current.Name)}
			}
			prog.Subroutines[current.Name] = current
			current = nil
		default:
			if current == nil {
				return nil, &Error{Line: l.Line, Message: fmt.Sprintf("op %v outside any subroutine", l.Code)}
			}
			current.Ops = append(current.Ops, op)
		}
	}

	if current != nil {
		return nil, &Error{Message: fmt.Sprintf("unterminated subroutine %v", current.Name)}
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return prog, nil
}

// Parse lexes and parses r in one call.
func Parse(r io.Reader) (*bytecode.Program, error) {
	lines, err := LexProgram(r)
	if err != nil {
		return nil, err
	}
	return ParseProgram(lines)
}
