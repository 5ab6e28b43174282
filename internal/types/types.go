// Package types implements the language's concrete type system: the two
// primitive tags, parameterized structure definitions, and the
// Concrete/Placeholder expression-type split used throughout finalization
// and type checking.
package types

import (
	"fmt"
	"strings"
)

// PrimitiveTag is the closed set of primitive runtime tags.
type PrimitiveTag int

const (
	Int PrimitiveTag = iota
	Float
)

func (t PrimitiveTag) String() string {
	switch t {
	case Int:
		return "Int"
	case Float:
		return "Float"
	default:
		return fmt.Sprintf("PrimitiveTag(%d)", int(t))
	}
}

// primitiveNameToType backs LookupPrimitive; the source-level spelling of
// a primitive type name is its tag's String().
var primitiveNameToType = map[string]PrimitiveTag{
	"Int":   Int,
	"Float": Float,
}

// LookupPrimitive resolves a source-level type name to a primitive tag.
func LookupPrimitive(name string) (PrimitiveTag, bool) {
	tag, ok := primitiveNameToType[name]
	return tag, ok
}

// Type is the closed expression-type sum: a Concrete type (Primitive or
// StructureType) or a Placeholder standing in for an unbound structure
// type parameter.
type Type interface {
	fmt.Stringer
	isType()
	Equal(Type) bool
}

// Primitive is a concrete Int or Float type.
type Primitive struct{ Tag PrimitiveTag }

func (Primitive) isType() {}

// Equal reports whether other is the same primitive tag.
func (p Primitive) Equal(other Type) bool {
	o, ok := other.(Primitive)
	return ok && o.Tag == p.Tag
}

func (p Primitive) String() string { return p.Tag.String() }

// StructureType wraps a (possibly already resolved) structure definition.
type StructureType struct{ Def *StructureDefinition }

func (StructureType) isType() {}

// Equal reports structural equality of the wrapped structure definitions.
func (s StructureType) Equal(other Type) bool {
	o, ok := other.(StructureType)
	return ok && s.Def.Equal(o.Def)
}

func (s StructureType) String() string { return s.Def.Name }

// Placeholder stands for a structure type parameter not yet bound to a
// concrete type.
type Placeholder struct{ Name string }

func (Placeholder) isType() {}

func (p Placeholder) Equal(other Type) bool {
	o, ok := other.(Placeholder)
	return ok && o.Name == p.Name
}

func (p Placeholder) String() string { return p.Name }

// Field is one structure field: its declared name and type.
type Field struct {
	Name string
	Type Type
}

// StructureDefinition is an ordered sequence of fields, optionally
// parameterized by an ordered list of type-parameter names. Two
// definitions are equal iff their fields and type parameters are equal
// (structural equality).
type StructureDefinition struct {
	Name       string
	TypeParams []string
	Fields     []Field
}

// FieldIndex returns the declaration-order index of the named field.
func (s *StructureDefinition) FieldIndex(name string) (int, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Field returns the named field.
func (s *StructureDefinition) Field(name string) (Field, bool) {
	if i, ok := s.FieldIndex(name); ok {
		return s.Fields[i], true
	}
	return Field{}, false
}

// Equal reports structural equality: same fields (name, type, and order)
// and same type parameters (name and order).
func (s *StructureDefinition) Equal(o *StructureDefinition) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if len(s.TypeParams) != len(o.TypeParams) || len(s.Fields) != len(o.Fields) {
		return false
	}
	for i, p := range s.TypeParams {
		if o.TypeParams[i] != p {
			return false
		}
	}
	for i, f := range s.Fields {
		of := o.Fields[i]
		if f.Name != of.Name || !f.Type.Equal(of.Type) {
			return false
		}
	}
	return true
}

func (s *StructureDefinition) String() string {
	if len(s.TypeParams) == 0 {
		return s.Name
	}
	return fmt.Sprintf("%v[%v]", s.Name, strings.Join(s.TypeParams, ", "))
}

// ResolveError reports a failure to resolve a parameterized structure.
type ResolveError struct {
	Structure string
	Param     string
	Reason    string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("cannot resolve %v[%v]: %v", e.Structure, e.Param, e.Reason)
}

// Resolve substitutes every type parameter of s with the type supplied in
// args, producing a new non-parameterized structure definition. Every
// declared type parameter must have an entry in args.
func (s *StructureDefinition) Resolve(args map[string]Type) (*StructureDefinition, error) {
	for _, p := range s.TypeParams {
		if _, ok := args[p]; !ok {
			return nil, &ResolveError{Structure: s.Name, Param: p, Reason: "missing type argument"}
		}
	}
	fields := make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = Field{Name: f.Name, Type: substitute(f.Type, args)}
	}
	return &StructureDefinition{Name: s.Name, Fields: fields}, nil
}

func substitute(t Type, args map[string]Type) Type {
	switch v := t.(type) {
	case Placeholder:
		if resolved, ok := args[v.Name]; ok {
			return resolved
		}
		return v
	default:
		return t
	}
}
