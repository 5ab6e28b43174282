// Package check implements the type checker: it validates a
// finalized internal/typedast.Program, flow-sensitively threading a local
// variable scope through each function body.
package check

import (
	"fmt"

	"github.com/go-tylang/tylang/internal/types"
	"github.com/go-tylang/tylang/internal/typedast"
)

// Error reports a type-checking fault.
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

// context holds the state threaded through one Program check: the
// structure table, the function return types accumulated so far (in
// declaration order — a function may only call an earlier
// one), the full function table for parameter-type lookups, and the
// current function's local scope.
type context struct {
	structures      map[string]*types.StructureDefinition
	funcByName      map[string]*typedast.FunctionDefinition
	funcReturnTypes map[string]types.Type
	local           map[string]types.Type
}

// Program type-checks every function definition in prog, in declaration
// order.
func Program(prog *typedast.Program) error {
	ctx := &context{
		structures:      prog.StructureByName,
		funcByName:      prog.FunctionByName,
		funcReturnTypes: make(map[string]types.Type),
	}
	for _, fn := range prog.Functions {
		if err := ctx.checkFunction(fn); err != nil {
			return err
		}
		ctx.funcReturnTypes[fn.Name] = fn.ReturnType
	}
	return nil
}

func (ctx *context) checkFunction(fn *typedast.FunctionDefinition) error {
	ctx.local = make(map[string]types.Type, len(fn.Params))
	for _, p := range fn.Params {
		ctx.local[p.Name] = p.Type
	}

	var returnSet bool
	var returnType types.Type
	for _, stmt := range fn.Body {
		if returnSet {
			return &Error{Message: fmt.Sprintf("function %q: statement follows return", fn.Name)}
		}
		switch s := stmt.(type) {
		case typedast.Assignment:
			t, err := ctx.checkExpr(s.Expr)
			if err != nil {
				return err
			}
			if prior, ok := ctx.local[s.Name]; ok && !prior.Equal(t) {
				return &Error{Line: s.Line, Message: fmt.Sprintf("%q rebound with type %v, previously %v", s.Name, t, prior)}
			}
			ctx.local[s.Name] = t
		case typedast.Return:
			t, err := ctx.checkExpr(s.Expr)
			if err != nil {
				return err
			}
			returnType, returnSet = t, true
		default:
			return &Error{Message: fmt.Sprintf("unsupported statement variant %T", stmt)}
		}
	}
	if !returnSet {
		return &Error{Message: fmt.Sprintf("function %q: missing return", fn.Name)}
	}
	if !returnType.Equal(fn.ReturnType) {
		return &Error{Message: fmt.Sprintf("function %q: returns %v, declared %v", fn.Name, returnType, fn.ReturnType)}
	}
	return nil
}

func (ctx *context) checkExpr(expr typedast.Expression) (types.Type, error) {
	switch e := expr.(type) {
	case typedast.Literal:
		return types.Primitive{Tag: e.Tag}, nil
	case typedast.VariableReference:
		t, ok := ctx.local[e.Name]
		if !ok {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("unknown variable %q", e.Name)}
		}
		return t, nil
	case typedast.PropertyAccess:
		return ctx.checkPropertyAccess(e)
	case typedast.BinaryOp:
		return ctx.checkBinaryOp(e)
	case typedast.Construction:
		return ctx.checkConstruction(e)
	case typedast.FunctionCall:
		return ctx.checkFunctionCall(e)
	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported expression variant %T", expr)}
	}
}

func (ctx *context) checkPropertyAccess(e typedast.PropertyAccess) (types.Type, error) {
	innerType, err := ctx.checkExpr(e.Inner)
	if err != nil {
		return nil, err
	}
	st, ok := innerType.(types.StructureType)
	if !ok {
		return nil, &Error{Line: e.Line, Message: fmt.Sprintf("property access on non-structure type %v", innerType)}
	}
	field, ok := st.Def.Field(e.Property)
	if !ok {
		return nil, &Error{Line: e.Line, Message: fmt.Sprintf("%v has no field %q", st.Def.Name, e.Property)}
	}
	return field.Type, nil
}

func (ctx *context) checkBinaryOp(e typedast.BinaryOp) (types.Type, error) {
	lt, err := ctx.checkExpr(e.Left)
	if err != nil {
		return nil, err
	}
	rt, err := ctx.checkExpr(e.Right)
	if err != nil {
		return nil, err
	}
	if !lt.Equal(rt) {
		return nil, &Error{Line: e.Line, Message: fmt.Sprintf("operand type mismatch: %v vs %v", lt, rt)}
	}
	return lt, nil
}

func (ctx *context) checkConstruction(e typedast.Construction) (types.Type, error) {
	def := e.Struct
	if len(def.TypeParams) > 0 {
		if len(e.TypeArgs) == 0 {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("%v requires type arguments %v", def.Name, def.TypeParams)}
		}
		resolved, err := def.Resolve(e.TypeArgs)
		if err != nil {
			return nil, &Error{Line: e.Line, Message: err.Error()}
		}
		def = resolved
	} else if len(e.TypeArgs) > 0 {
		return nil, &Error{Line: e.Line, Message: fmt.Sprintf("%v takes no type arguments", def.Name)}
	}

	seen := make(map[string]bool, len(e.Args))
	for _, arg := range e.Args {
		field, ok := def.Field(arg.Name)
		if !ok {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("%v has no field %q", def.Name, arg.Name)}
		}
		at, err := ctx.checkExpr(arg.Expr)
		if err != nil {
			return nil, err
		}
		if !at.Equal(field.Type) {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("field %q: got %v, want %v", arg.Name, at, field.Type)}
		}
		seen[arg.Name] = true
	}
	for _, field := range def.Fields {
		if !seen[field.Name] {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("%v: missing field %q", def.Name, field.Name)}
		}
	}
	return types.StructureType{Def: def}, nil
}

func (ctx *context) checkFunctionCall(e typedast.FunctionCall) (types.Type, error) {
	ret, ok := ctx.funcReturnTypes[e.Name]
	if !ok {
		return nil, &Error{Line: e.Line, Message: fmt.Sprintf("unknown function %q", e.Name)}
	}
	fn := ctx.funcByName[e.Name]
	seen := make(map[string]bool, len(e.Args))
	for _, arg := range e.Args {
		idx, ok := fn.ParamIndex(arg.Name)
		if !ok {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("%v has no parameter %q", e.Name, arg.Name)}
		}
		at, err := ctx.checkExpr(arg.Expr)
		if err != nil {
			return nil, err
		}
		want := fn.Params[idx].Type
		if !at.Equal(want) {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("argument %q: got %v, want %v", arg.Name, at, want)}
		}
		seen[arg.Name] = true
	}
	for _, p := range fn.Params {
		if !seen[p.Name] {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("call to %v: missing argument %q", e.Name, p.Name)}
		}
	}
	return ret, nil
}
