// Package interp implements the stack-based bytecode interpreter:
// per-call FrameStates, named variables, labeled branch targets,
// recursive subroutine calls, and structure values.
package interp

import (
	"context"
	"fmt"
	"io"

	"github.com/go-tylang/tylang/internal/bytecode"
	"github.com/go-tylang/tylang/internal/value"
)

// Error reports a runtime fault: stack underflow, a tag mismatch in
// arithmetic, an absent field, a double-set flag, a branch to an unset
// flag, or a wrong op inside a subroutine body. A missing "main" is not
// wrapped in Error: Run returns bytecode.MissingMainError directly.
type Error struct {
	Subroutine string
	PC         int
	Op         bytecode.Op
	Message    string
}

func (e *Error) Error() string {
	if e.Op != nil {
		return fmt.Sprintf("%v@%v: %v: %v", e.Subroutine, e.PC, e.Op, e.Message)
	}
	return fmt.Sprintf("%v: %v", e.Subroutine, e.Message)
}

// Machine interprets a bytecode.Program, configured through a set of
// functional Options: a step budget guards against a runaway recursive
// subroutine or an unbounded backward branch, and an output sink backs
// PRINT_NAME.
type Machine struct {
	prog       *bytecode.Program
	out        io.Writer
	trace      func(mess string, args ...interface{})
	stepBudget int
	maxDepth   int

	steps int
	depth int
}

// Option configures a Machine.
type Option interface{ apply(m *Machine) }

type optionFunc func(m *Machine)

func (f optionFunc) apply(m *Machine) { f(m) }

// WithOutput sets the sink PRINT_NAME writes to. Default is io.Discard.
func WithOutput(w io.Writer) Option {
	return optionFunc(func(m *Machine) { m.out = w })
}

// WithTrace sets a leveled trace function, typically a
// *logio.Logger.Leveledf("TRACE") value, called once per executed op.
func WithTrace(fn func(mess string, args ...interface{})) Option {
	return optionFunc(func(m *Machine) { m.trace = fn })
}

// WithStepBudget bounds the total number of ops any single Run may
// execute across all recursive subroutine calls; 0 (the default) means
// unbounded. Exceeding it is a runtime Error, not a panic, so a host
// embedding gets a clean error back instead of hanging on an unbounded
// backward branch.
func WithStepBudget(n int) Option {
	return optionFunc(func(m *Machine) { m.stepBudget = n })
}

// WithMaxCallDepth bounds recursive CALL_SUBROUTINE nesting; 0 means
// unbounded (and thus subject only to the host stack).
func WithMaxCallDepth(n int) Option {
	return optionFunc(func(m *Machine) { m.maxDepth = n })
}

// New constructs a Machine for prog.
func New(prog *bytecode.Program, opts ...Option) *Machine {
	m := &Machine{prog: prog, out: io.Discard}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(m)
		}
	}
	return m
}

// StepBudgetExceededError reports a Run that executed more ops than its
// Machine's configured step budget.
type StepBudgetExceededError struct{ Budget int }

func (e StepBudgetExceededError) Error() string {
	return fmt.Sprintf("exceeded step budget of %d ops", e.Budget)
}

// MaxCallDepthExceededError reports recursive CALL_SUBROUTINE nesting
// past a Machine's configured max depth.
type MaxCallDepthExceededError struct{ MaxDepth int }

func (e MaxCallDepthExceededError) Error() string {
	return fmt.Sprintf("exceeded max call depth of %d", e.MaxDepth)
}

// Run interprets the program's "main" subroutine to completion, returning
// its value.Value return value (or value.Zero if main never executes a
// RETURN).
func (m *Machine) Run(ctx context.Context) (value.Value, error) {
	if err := m.prog.Validate(); err != nil {
		return nil, err
	}
	main := m.prog.Subroutines["main"]
	fs := bytecode.NewFrameState(m.prog.Structures, nil)
	return m.interpretSubroutine(ctx, main, fs)
}

// interpretSubroutine is the recursive heart of the interpreter: it
// drives fs's program counter through sub.Ops, dispatching
// CALL_SUBROUTINE to a fresh recursive invocation and every other op to
// step.
func (m *Machine) interpretSubroutine(ctx context.Context, sub *bytecode.Subroutine, fs *bytecode.FrameState) (value.Value, error) {
	if m.maxDepth > 0 {
		m.depth++
		defer func() { m.depth-- }()
		if m.depth > m.maxDepth {
			return nil, &Error{Subroutine: sub.Name, Message: MaxCallDepthExceededError{MaxDepth: m.maxDepth}.Error()}
		}
	}

	for fs.PC < len(sub.Ops) && !fs.ReturnSet {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if m.stepBudget > 0 {
			m.steps++
			if m.steps > m.stepBudget {
				return nil, &Error{Subroutine: sub.Name, Message: StepBudgetExceededError{Budget: m.stepBudget}.Error()}
			}
		}

		op := sub.Ops[fs.PC]
		if m.trace != nil {
			m.trace("%v@%v %v", sub.Name, fs.PC, op)
		}

		switch o := op.(type) {
		case bytecode.CallSubroutine:
			callee, ok := m.prog.Subroutines[o.Name]
			if !ok {
				return nil, &Error{Subroutine: sub.Name, PC: fs.PC, Op: op, Message: fmt.Sprintf("call to unknown subroutine %q", o.Name)}
			}
			n := len(callee.Arguments)
			popped := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				v, err := fs.Pop(op.String())
				if err != nil {
					return nil, &Error{Subroutine: sub.Name, PC: fs.PC, Op: op, Message: err.Error()}
				}
				popped[i] = v
			}
			names := make(map[string]value.Value, n)
			for i, argName := range callee.Arguments {
				names[argName] = popped[i]
			}
			calleeFS := bytecode.NewFrameState(m.prog.Structures, names)
			ret, err := m.interpretSubroutine(ctx, callee, calleeFS)
			if err != nil {
				return nil, err
			}
			fs.Push(ret)
		case bytecode.StartSubroutine, bytecode.EndSubroutine:
			return nil, &Error{Subroutine: sub.Name, PC: fs.PC, Op: op, Message: "framing op illegal inside a subroutine body"}
		default:
			if err := step(fs, op, m.out); err != nil {
				return nil, &Error{Subroutine: sub.Name, PC: fs.PC, Op: op, Message: err.Error()}
			}
		}

		fs.PC++
	}

	if fs.ReturnSet {
		return fs.ReturnValue, nil
	}
	return value.Zero, nil
}

// step executes every op variant legal inside a subroutine body except
// CALL_SUBROUTINE (handled by interpretSubroutine, since it alone
// recurses). Individual op semantics are exhaustive's table.
func step(fs *bytecode.FrameState, op bytecode.Op, out io.Writer) error {
	switch o := op.(type) {
	case bytecode.Noop:
		return nil

	case bytecode.PushFromLiteral:
		fs.Push(value.Tagged{Tag: o.Tag, Num: o.Lit})
		return nil

	case bytecode.PushFromName:
		v, ok := fs.Names[o.Name]
		if !ok {
			return fmt.Errorf("unbound name %q", o.Name)
		}
		fs.Push(v)
		return nil

	case bytecode.PopToName:
		v, err := fs.Pop(o.String())
		if err != nil {
			return err
		}
		fs.Names[o.Name] = v
		return nil

	case bytecode.StoreFromLiteral:
		fs.Names[o.Name] = value.Tagged{Tag: o.Tag, Num: o.Lit}
		return nil

	case bytecode.BinaryAdd:
		return binaryOp(fs, o.String(), func(l, r float64) float64 { return l + r })

	case bytecode.BinarySubtract:
		// Both operands are popped; the last-pushed value ("a" below, the
		// top of stack) is the right-hand side of the subtraction.
		return binaryOp(fs, o.String(), func(l, r float64) float64 { return l - r })

	case bytecode.ConstructStructure:
		return constructStructure(fs, o)

	case bytecode.PopAndPushProperty:
		return popAndPushProperty(fs, o)

	case bytecode.SetFlag:
		if _, set := fs.Flags[o.Flag]; set {
			return fmt.Errorf("flag %q already set", o.Flag)
		}
		fs.Flags[o.Flag] = fs.PC
		return nil

	case bytecode.BranchToFlag:
		pc, set := fs.Flags[o.Flag]
		if !set {
			return fmt.Errorf("branch to unset flag %q", o.Flag)
		}
		cond, err := fs.Pop(o.String())
		if err != nil {
			return err
		}
		tagged, ok := cond.(value.Tagged)
		if !ok {
			return fmt.Errorf("branch condition is not a tagged value: %v", cond)
		}
		if tagged.Truthy() {
			// the driver's unconditional post-increment means the next op
			// executed is the one *after* SET_FLAG, i.e. pc+1 here becomes
			// pc+1+1 once the caller's fs.PC++ runs; setting fs.PC = pc
			// reproduces that fencepost.
			fs.PC = pc
		}
		return nil

	case bytecode.Return:
		if fs.ReturnSet {
			return fmt.Errorf("return already set")
		}
		v, err := fs.Pop(o.String())
		if err != nil {
			return err
		}
		fs.ReturnValue = v
		fs.ReturnSet = true
		return nil

	case bytecode.PrintName:
		v, ok := fs.Names[o.Name]
		if !ok {
			return fmt.Errorf("unbound name %q", o.Name)
		}
		return printValue(out, v)

	default:
		return fmt.Errorf("unsupported op %T inside subroutine body", op)
	}
}

// printValue renders v the way original_source/ops.py's PrintNameOp does:
// the tagged value's raw numeric payload, not a "name = value" pair.
func printValue(out io.Writer, v value.Value) error {
	switch t := v.(type) {
	case value.Tagged:
		_, err := fmt.Fprintln(out, t.String())
		return err
	default:
		_, err := fmt.Fprintln(out, v)
		return err
	}
}

func binaryOp(fs *bytecode.FrameState, opName string, f func(l, r float64) float64) error {
	a, err := fs.Pop(opName) // last pushed: the right-hand operand
	if err != nil {
		return err
	}
	b, err := fs.Pop(opName) // the left-hand operand
	if err != nil {
		return err
	}
	at, aok := a.(value.Tagged)
	bt, bok := b.(value.Tagged)
	if !aok || !bok {
		return fmt.Errorf("%v: operands must be tagged values", opName)
	}
	if at.Tag != bt.Tag {
		return fmt.Errorf("%v: tag mismatch %v vs %v", opName, bt.Tag, at.Tag)
	}
	fs.Push(value.Tagged{Tag: bt.Tag, Num: f(bt.Num, at.Num)})
	return nil
}

func constructStructure(fs *bytecode.FrameState, o bytecode.ConstructStructure) error {
	def, ok := fs.Structures[o.Structure]
	if !ok {
		return fmt.Errorf("unknown structure %q", o.Structure)
	}
	n := len(def.Fields)
	popped := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := fs.Pop(o.String())
		if err != nil {
			return err
		}
		popped[i] = v
	}
	fields := make(map[string]value.Value, n)
	for i, field := range def.Fields {
		fields[field.Name] = popped[i]
	}
	fs.Push(value.Instance{Struct: def, Fields: fields})
	return nil
}

func popAndPushProperty(fs *bytecode.FrameState, o bytecode.PopAndPushProperty) error {
	v, err := fs.Pop(o.String())
	if err != nil {
		return err
	}
	inst, ok := v.(value.Instance)
	if !ok {
		return fmt.Errorf("%v: top of stack is not a structure instance", o.String())
	}
	field, ok := inst.Field(o.Property)
	if !ok {
		return fmt.Errorf("%v: %v has no field %q", o.String(), inst.Struct.Name, o.Property)
	}
	fs.Push(field)
	return nil
}
