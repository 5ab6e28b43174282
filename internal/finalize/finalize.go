// Package finalize implements the finalization pass: it
// threads a growing structure/function environment through the
// preliminary internal/ast.Program, resolving every textual type name
// into a resolved internal/types.Type and producing a typed
// internal/typedast.Program. The preliminary tree is discarded after this
// pass; nothing downstream holds a reference to it.
package finalize

import (
	"fmt"

	"github.com/go-tylang/tylang/internal/ast"
	"github.com/go-tylang/tylang/internal/types"
	"github.com/go-tylang/tylang/internal/typedast"
)

// Error reports a name-resolution fault during finalization.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Finalize resolves prelim into a typed Program. Structures are resolved
// in declaration order against only the *previously* finalized structures
// plus the primitive set; a forward reference to a later structure is
// rejected by design, keeping this pass O(N) with no topological sort.
func Finalize(prelim *ast.Program) (*typedast.Program, error) {
	prog := &typedast.Program{
		StructureByName: make(map[string]*types.StructureDefinition),
		FunctionByName:  make(map[string]*typedast.FunctionDefinition),
	}

	for _, sd := range prelim.Structures {
		if _, exists := prog.StructureByName[sd.Name]; exists {
			return nil, &Error{Line: sd.Line, Message: fmt.Sprintf("structure %q redeclared", sd.Name)}
		}
		def, err := finalizeStructure(sd, prog.StructureByName)
		if err != nil {
			return nil, err
		}
		prog.StructureByName[sd.Name] = def
		prog.Structures = append(prog.Structures, def)
	}

	for _, fd := range prelim.Functions {
		if _, exists := prog.FunctionByName[fd.Name]; exists {
			return nil, &Error{Line: fd.Line, Message: fmt.Sprintf("function %q redeclared", fd.Name)}
		}
		fn, err := finalizeFunction(fd, prog.StructureByName)
		if err != nil {
			return nil, err
		}
		prog.FunctionByName[fd.Name] = fn
		prog.Functions = append(prog.Functions, fn)
	}

	return prog, nil
}

func finalizeStructure(sd ast.StructureDef, known map[string]*types.StructureDefinition) (*types.StructureDefinition, error) {
	paramSet := make(map[string]bool, len(sd.TypeParams))
	for _, p := range sd.TypeParams {
		paramSet[p] = true
	}
	fields := make([]types.Field, 0, len(sd.Fields))
	for _, fd := range sd.Fields {
		t, err := resolveTypeName(fd.Type, sd.Line, paramSet, known)
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.Field{Name: fd.Name, Type: t})
	}
	return &types.StructureDefinition{Name: sd.Name, TypeParams: sd.TypeParams, Fields: fields}, nil
}

func finalizeFunction(fd ast.FunctionDef, known map[string]*types.StructureDefinition) (*typedast.FunctionDefinition, error) {
	params := make([]typedast.Param, 0, len(fd.Params))
	for _, pd := range fd.Params {
		t, err := resolveTypeName(pd.Type, fd.Line, nil, known)
		if err != nil {
			return nil, err
		}
		params = append(params, typedast.Param{Name: pd.Name, Type: t})
	}
	ret, err := resolveTypeName(fd.ReturnType, fd.Line, nil, known)
	if err != nil {
		return nil, err
	}
	body := make([]typedast.Statement, 0, len(fd.Body))
	for _, stmt := range fd.Body {
		fs, err := finalizeStatement(stmt, known)
		if err != nil {
			return nil, err
		}
		body = append(body, fs)
	}
	return &typedast.FunctionDefinition{Name: fd.Name, Params: params, ReturnType: ret, Body: body}, nil
}

func finalizeStatement(stmt ast.Statement, known map[string]*types.StructureDefinition) (typedast.Statement, error) {
	switch s := stmt.(type) {
	case ast.Assignment:
		expr, err := finalizeExpression(s.Expr, known)
		if err != nil {
			return nil, err
		}
		return typedast.Assignment{Name: s.Name, Expr: expr, Line: s.Line}, nil
	case ast.Return:
		expr, err := finalizeExpression(s.Expr, known)
		if err != nil {
			return nil, err
		}
		return typedast.Return{Expr: expr, Line: s.Line}, nil
	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported statement variant %T", stmt)}
	}
}

func finalizeExpression(expr ast.Expression, known map[string]*types.StructureDefinition) (typedast.Expression, error) {
	switch e := expr.(type) {
	case ast.Literal:
		tag, ok := types.LookupPrimitive(e.Tag)
		if !ok {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("unknown primitive tag %q", e.Tag)}
		}
		return typedast.Literal{Tag: tag, Value: e.Value, Line: e.Line}, nil
	case ast.VariableReference:
		return typedast.VariableReference{Name: e.Name, Line: e.Line}, nil
	case ast.Construction:
		def, ok := known[e.Type]
		if !ok {
			return nil, &Error{Line: e.Line, Message: fmt.Sprintf("unknown structure %q", e.Type)}
		}
		var typeArgs map[string]types.Type
		if len(e.TypeArgs) > 0 {
			typeArgs = make(map[string]types.Type, len(e.TypeArgs))
			for _, ta := range e.TypeArgs {
				t, err := resolveTypeName(ta.Type, e.Line, nil, known)
				if err != nil {
					return nil, err
				}
				typeArgs[ta.Param] = t
			}
		}
		args := make([]typedast.Arg, 0, len(e.Args))
		for _, a := range e.Args {
			fe, err := finalizeExpression(a.Expr, known)
			if err != nil {
				return nil, err
			}
			args = append(args, typedast.Arg{Name: a.Name, Expr: fe})
		}
		return typedast.Construction{Struct: def, TypeArgs: typeArgs, Args: args, Line: e.Line}, nil
	case ast.FunctionCall:
		args := make([]typedast.Arg, 0, len(e.Args))
		for _, a := range e.Args {
			fe, err := finalizeExpression(a.Expr, known)
			if err != nil {
				return nil, err
			}
			args = append(args, typedast.Arg{Name: a.Name, Expr: fe})
		}
		return typedast.FunctionCall{Name: e.Name, Args: args, Line: e.Line}, nil
	case ast.PropertyAccess:
		inner, err := finalizeExpression(e.Inner, known)
		if err != nil {
			return nil, err
		}
		return typedast.PropertyAccess{Inner: inner, Property: e.Property, Line: e.Line}, nil
	case ast.BinaryOp:
		left, err := finalizeExpression(e.Left, known)
		if err != nil {
			return nil, err
		}
		right, err := finalizeExpression(e.Right, known)
		if err != nil {
			return nil, err
		}
		op := typedast.Add
		if e.Op == ast.Subtract {
			op = typedast.Subtract
		}
		return typedast.BinaryOp{Op: op, Left: left, Right: right, Line: e.Line}, nil
	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported expression variant %T", expr)}
	}
}

// resolveTypeName resolves a single textual type name against, in order:
// the enclosing structure's own type parameters (if any), the primitive
// set, then the known-so-far structure table.
func resolveTypeName(name string, line int, paramSet map[string]bool, known map[string]*types.StructureDefinition) (types.Type, error) {
	if paramSet != nil && paramSet[name] {
		return types.Placeholder{Name: name}, nil
	}
	if tag, ok := types.LookupPrimitive(name); ok {
		return types.Primitive{Tag: tag}, nil
	}
	if def, ok := known[name]; ok {
		return types.StructureType{Def: def}, nil
	}
	return nil, &Error{Line: line, Message: fmt.Sprintf("unknown type %q", name)}
}
