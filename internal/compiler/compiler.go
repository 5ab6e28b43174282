// Package compiler lowers a finalized, type-checked internal/typedast.Program
// into a linear internal/bytecode.Program. Named construction
// and call arguments are reordered into the callee's declaration order
// here; that reordering is a correctness requirement, not an optimization.
package compiler

import (
	"fmt"

	"github.com/go-tylang/tylang/internal/bytecode"
	"github.com/go-tylang/tylang/internal/typedast"
)

// Error reports a compiler fault: an AST variant the compiler doesn't
// know how to lower, or a named argument that doesn't match its callee's
// declared parameters. The latter should never fire on a program that
// passed internal/check, but an embedder compiling an unchecked AST
// directly should still get a typed error instead of a panic.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line != 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// compiler threads the function table through expression lowering, since
// a FunctionCall needs its callee's declared parameter order to reorder
// named arguments into the stable push sequence CALL_SUBROUTINE expects.
type compiler struct {
	funcByName map[string]*typedast.FunctionDefinition
}

// Compile lowers every function in prog into a bytecode.Subroutine and
// asserts the presence of "main".
func Compile(prog *typedast.Program) (*bytecode.Program, error) {
	c := &compiler{funcByName: prog.FunctionByName}
	out := bytecode.NewProgram()
	for name, def := range prog.StructureByName {
		out.Structures[name] = def
	}
	for _, fn := range prog.Functions {
		sub, err := c.compileFunction(fn)
		if err != nil {
			return nil, err
		}
		out.Subroutines[fn.Name] = sub
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compiler) compileFunction(fn *typedast.FunctionDefinition) (*bytecode.Subroutine, error) {
	args := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		args[i] = p.Name
	}
	var ops []bytecode.Op
	for _, stmt := range fn.Body {
		stmtOps, err := c.compileStatement(stmt)
		if err != nil {
			return nil, err
		}
		ops = append(ops, stmtOps...)
	}
	return &bytecode.Subroutine{Name: fn.Name, Arguments: args, Ops: ops}, nil
}

func (c *compiler) compileStatement(stmt typedast.Statement) ([]bytecode.Op, error) {
	switch s := stmt.(type) {
	case typedast.Assignment:
		ops, err := c.compileExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		return append(ops, bytecode.PopToName{Name: s.Name}), nil
	case typedast.Return:
		ops, err := c.compileExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		return append(ops, bytecode.Return{}), nil
	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported statement variant %T", stmt)}
	}
}

func (c *compiler) compileExpr(expr typedast.Expression) ([]bytecode.Op, error) {
	switch e := expr.(type) {
	case typedast.Literal:
		return []bytecode.Op{bytecode.PushFromLiteral{Tag: e.Tag, Lit: e.Value}}, nil
	case typedast.VariableReference:
		return []bytecode.Op{bytecode.PushFromName{Name: e.Name}}, nil
	case typedast.BinaryOp:
		left, err := c.compileExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.compileExpr(e.Right)
		if err != nil {
			return nil, err
		}
		ops := append(left, right...)
		if e.Op == typedast.Subtract {
			return append(ops, bytecode.BinarySubtract{}), nil
		}
		return append(ops, bytecode.BinaryAdd{}), nil
	case typedast.PropertyAccess:
		inner, err := c.compileExpr(e.Inner)
		if err != nil {
			return nil, err
		}
		return append(inner, bytecode.PopAndPushProperty{Property: e.Property}), nil
	case typedast.Construction:
		return c.compileConstruction(e)
	case typedast.FunctionCall:
		return c.compileFunctionCall(e)
	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported expression variant %T", expr)}
	}
}

func (c *compiler) compileConstruction(e typedast.Construction) ([]bytecode.Op, error) {
	def := e.Struct
	if len(e.TypeArgs) > 0 {
		resolved, err := def.Resolve(e.TypeArgs)
		if err != nil {
			return nil, &Error{Line: e.Line, Message: err.Error()}
		}
		def = resolved
	}
	byName := make(map[string]typedast.Expression, len(e.Args))
	for _, a := range e.Args {
		byName[a.Name] = a.Expr
	}
	var ops []bytecode.Op
	for _, field := range def.Fields {
		argExpr, ok := byName[field.Name]
		if !ok {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("%v: missing argument %q", def.Name, field.Name)}
		}
		fieldOps, err := c.compileExpr(argExpr)
		if err != nil {
			return nil, err
		}
		ops = append(ops, fieldOps...)
	}
	return append(ops, bytecode.ConstructStructure{Structure: e.Struct.Name}), nil
}

func (c *compiler) compileFunctionCall(e typedast.FunctionCall) ([]bytecode.Op, error) {
	fn, ok := c.funcByName[e.Name]
	if !ok {
		return nil, &Error{Line: e.Line, Message: fmt.Sprintf("call to unknown function %q", e.Name)}
	}
	byName := make(map[string]typedast.Expression, len(e.Args))
	for _, a := range e.Args {
		byName[a.Name] = a.Expr
	}
	var ops []bytecode.Op
	for _, param := range fn.Params {
		argExpr, ok := byName[param.Name]
		if !ok {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("call to %v: missing argument %q", e.Name, param.Name)}
		}
		argOps, err := c.compileExpr(argExpr)
		if err != nil {
			return nil, err
		}
		ops = append(ops, argOps...)
	}
	return append(ops, bytecode.CallSubroutine{Name: e.Name}), nil
}
