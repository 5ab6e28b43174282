// Package value implements the interpreter's runtime values: Tagged
// primitives and structure Instances.
package value

import (
	"fmt"
	"strconv"

	"github.com/go-tylang/tylang/internal/types"
)

// Value is the closed runtime value sum: Tagged or Instance.
type Value interface {
	fmt.Stringer
	isValue()
	Type() types.Type
}

// Tagged pairs a primitive tag with its numeric payload. Both Int and
// Float values are carried as float64; the tag alone distinguishes them
// and guards arithmetic.
type Tagged struct {
	Tag types.PrimitiveTag
	Num float64
}

func (Tagged) isValue() {}

// Type returns the primitive type matching this value's tag.
func (t Tagged) Type() types.Type { return types.Primitive{Tag: t.Tag} }

// Truthy reports whether t counts as "true" for BRANCH_TO_FLAG: nonzero.
func (t Tagged) Truthy() bool { return t.Num != 0 }

func (t Tagged) String() string {
	if t.Tag == types.Int {
		return strconv.FormatInt(int64(t.Num), 10)
	}
	return strconv.FormatFloat(t.Num, 'g', -1, 64)
}

// Zero is the canonical zero value interp.Machine.Run returns when no
// RETURN ever executes.
var Zero = Tagged{Tag: types.Int, Num: 0}

// Instance is a structure value: its definition and its field bindings.
type Instance struct {
	Struct *types.StructureDefinition
	Fields map[string]Value
}

func (Instance) isValue() {}

// Type returns the structure type of this instance.
func (i Instance) Type() types.Type { return types.StructureType{Def: i.Struct} }

func (i Instance) String() string {
	return fmt.Sprintf("%v%v", i.Struct.Name, i.Fields)
}

// Field returns the named field's value.
func (i Instance) Field(name string) (Value, bool) {
	v, ok := i.Fields[name]
	return v, ok
}
