// Package serialize round-trips a finalized internal/typedast.Program
// back into source text. The written text is not required to
// match what a human originally wrote; it is required to re-parse and
// re-finalize to an equal typed tree.
package serialize

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-tylang/tylang/internal/types"
	"github.com/go-tylang/tylang/internal/typedast"
)

// Program serializes every structure then every function definition in
// prog, in declaration order, to w.
func Program(w io.Writer, prog *typedast.Program) error {
	for _, def := range prog.Structures {
		if err := structureDef(w, def); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	for _, fn := range prog.Functions {
		if err := functionDef(w, fn); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

// ToString is a convenience wrapper returning the serialized text.
func ToString(prog *typedast.Program) (string, error) {
	var buf bytes.Buffer
	if err := Program(&buf, prog); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func structureDef(w io.Writer, def *types.StructureDefinition) error {
	if _, err := fmt.Fprintf(w, "structure %v", def.Name); err != nil {
		return err
	}
	if len(def.TypeParams) > 0 {
		if _, err := fmt.Fprintf(w, "[%v]", joinStrings(def.TypeParams)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(w, " ("); err != nil {
		return err
	}
	for _, f := range def.Fields {
		if _, err := fmt.Fprintf(w, " %v: %v,", f.Name, typeName(f.Type)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, " )\n")
	return err
}

func functionDef(w io.Writer, fn *typedast.FunctionDefinition) error {
	if _, err := fmt.Fprintf(w, "function %v (", fn.Name); err != nil {
		return err
	}
	for _, p := range fn.Params {
		if _, err := fmt.Fprintf(w, " %v: %v,", p.Name, typeName(p.Type)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, " ) -> %v (\n", typeName(fn.ReturnType)); err != nil {
		return err
	}
	for _, stmt := range fn.Body {
		if _, err := fmt.Fprint(w, "  "); err != nil {
			return err
		}
		if err := statement(w, stmt); err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, ";\n"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, ")\n")
	return err
}

func statement(w io.Writer, stmt typedast.Statement) error {
	switch s := stmt.(type) {
	case typedast.Assignment:
		if _, err := fmt.Fprintf(w, "%v = ", s.Name); err != nil {
			return err
		}
		return expression(w, s.Expr)
	case typedast.Return:
		if _, err := fmt.Fprint(w, "return "); err != nil {
			return err
		}
		return expression(w, s.Expr)
	default:
		return fmt.Errorf("serialize: unsupported statement variant %T", stmt)
	}
}

func expression(w io.Writer, expr typedast.Expression) error {
	switch e := expr.(type) {
	case typedast.Literal:
		_, err := fmt.Fprint(w, strconv.FormatFloat(e.Value, 'g', -1, 64))
		return err
	case typedast.VariableReference:
		_, err := fmt.Fprint(w, e.Name)
		return err
	case typedast.PropertyAccess:
		if err := expression(w, e.Inner); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, ".%v", e.Property)
		return err
	case typedast.BinaryOp:
		if _, err := fmt.Fprint(w, "("); err != nil {
			return err
		}
		if err := expression(w, e.Left); err != nil {
			return err
		}
		op := "+"
		if e.Op == typedast.Subtract {
			op = "-"
		}
		if _, err := fmt.Fprintf(w, " %v ", op); err != nil {
			return err
		}
		if err := expression(w, e.Right); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case typedast.Construction:
		if _, err := fmt.Fprint(w, e.Struct.Name); err != nil {
			return err
		}
		if len(e.TypeArgs) > 0 {
			if err := typeArgs(w, e.Struct.TypeParams, e.TypeArgs); err != nil {
				return err
			}
		}
		return namedArgs(w, e.Args)
	case typedast.FunctionCall:
		if _, err := fmt.Fprint(w, e.Name); err != nil {
			return err
		}
		return namedArgs(w, e.Args)
	default:
		return fmt.Errorf("serialize: unsupported expression variant %T", expr)
	}
}

func namedArgs(w io.Writer, args []typedast.Arg) error {
	if _, err := fmt.Fprint(w, "("); err != nil {
		return err
	}
	for _, a := range args {
		if _, err := fmt.Fprintf(w, "%v=", a.Name); err != nil {
			return err
		}
		if err := expression(w, a.Expr); err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, ","); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, ")")
	return err
}

// typeArgs emits type arguments in the structure's declared type-parameter
// order (TypeArgs is a map, so declaration order is the only stable
// ordering available).
func typeArgs(w io.Writer, params []string, args map[string]types.Type) error {
	if _, err := fmt.Fprint(w, "["); err != nil {
		return err
	}
	order := params
	if len(order) == 0 {
		order = sortedKeys(args)
	}
	for _, p := range order {
		t, ok := args[p]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%v=%v,", p, typeName(t)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "]")
	return err
}

func sortedKeys(m map[string]types.Type) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func typeName(t types.Type) string {
	return t.String()
}

func joinStrings(ss []string) string {
	var buf bytes.Buffer
	for i, s := range ss {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(s)
	}
	return buf.String()
}
