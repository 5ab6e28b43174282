// Package typedast is the finalized, typed abstract syntax tree: the
// output of internal/finalize and the input to internal/check and
// internal/compiler. Unlike internal/ast, every type reference here is a
// resolved internal/types.Type rather than a string.
package typedast

import "github.com/go-tylang/tylang/internal/types"

// Program is the finalized program: an ordered list of structure
// definitions and an ordered list of function definitions, plus derived
// by-name lookup tables.
type Program struct {
	Structures      []*types.StructureDefinition
	StructureByName map[string]*types.StructureDefinition
	Functions       []*FunctionDefinition
	FunctionByName  map[string]*FunctionDefinition
}

// Param is one function parameter: a name and a resolved type.
type Param struct {
	Name string
	Type types.Type
}

// FunctionDefinition is a finalized function: its parameter list, its
// procedure, and its declared return type.
type FunctionDefinition struct {
	Name       string
	Params     []Param
	ReturnType types.Type
	Body       []Statement
}

// ParamIndex returns the declaration-order index of the named parameter.
func (f *FunctionDefinition) ParamIndex(name string) (int, bool) {
	for i, p := range f.Params {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Statement is the closed statement sum: Assignment or Return.
type Statement interface{ isStatement() }

// Assignment binds the value of Expr to Name.
type Assignment struct {
	Name string
	Expr Expression
	Line int
}

// Return ends the enclosing function body with the value of Expr.
type Return struct {
	Expr Expression
	Line int
}

func (Assignment) isStatement() {}
func (Return) isStatement()     {}

// Expression is the closed expression sum.
type Expression interface{ isExpression() }

// Literal is a numeric literal carrying its primitive tag directly.
type Literal struct {
	Tag   types.PrimitiveTag
	Value float64
	Line  int
}

// VariableReference names a local variable or function parameter, to be
// resolved against the type checker's local scope.
type VariableReference struct {
	Name string
	Line int
}

// Arg is one `name=expr` argument, in source order.
type Arg struct {
	Name string
	Expr Expression
}

// Construction builds a value of Struct (or, when TypeArgs is non-nil, of
// Struct resolved with TypeArgs). Struct is the structure's finalized,
// still-possibly-parameterized definition; resolution happens during type
// checking, since that is where TypeArgs are validated against Struct's
// declared type parameters.
type Construction struct {
	Struct   *types.StructureDefinition
	TypeArgs map[string]types.Type
	Args     []Arg
	Line     int
}

// FunctionCall invokes the named function with named-only arguments. The
// callee is resolved by name during type checking: a call to a function
// not yet type-checked in declaration order is rejected as unknown.
type FunctionCall struct {
	Name string
	Args []Arg
	Line int
}

// PropertyAccess projects the named field out of a structure-valued
// expression.
type PropertyAccess struct {
	Inner    Expression
	Property string
	Line     int
}

// BinOpKind is the closed set of binary operators.
type BinOpKind int

const (
	Add BinOpKind = iota
	Subtract
)

// BinaryOp applies Op to Left and Right; both must type-check to equal
// types.
type BinaryOp struct {
	Op    BinOpKind
	Left  Expression
	Right Expression
	Line  int
}

func (Literal) isExpression()           {}
func (VariableReference) isExpression() {}
func (Construction) isExpression()      {}
func (FunctionCall) isExpression()      {}
func (PropertyAccess) isExpression()    {}
func (BinaryOp) isExpression()          {}
