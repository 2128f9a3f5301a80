package interp

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"

	"coolc/ast"
	"coolc/semant"
)

// Interp evaluates a program that already passed type-checking. It never
// re-validates types: a type violation surfacing here is a checker bug,
// and the error it produces is internal, not a user diagnostic.
type Interp struct {
	hierarchy *semant.Hierarchy
	classes   map[string]*classInfo

	// Out and In back the IO builtin methods.
	Out io.Writer
	In  io.Reader

	reader *bufio.Reader
}

type classInfo struct {
	methods map[string]*ast.Method
	attrs   []*ast.Attribute
}

// New indexes the checked program's classes and shares the context's
// inheritance registry for dispatch and case matching.
func New(prog *ast.Program, ctx *semant.Context) *Interp {
	in := &Interp{
		hierarchy: ctx.Hierarchy,
		classes:   make(map[string]*classInfo),
		Out:       os.Stdout,
		In:        os.Stdin,
	}
	for _, cls := range prog.Classes {
		info := &classInfo{methods: make(map[string]*ast.Method)}
		for _, feat := range cls.Features {
			switch f := feat.(type) {
			case *ast.Method:
				info.methods[f.Name] = f
			case *ast.Attribute:
				info.attrs = append(info.attrs, f)
			}
		}
		in.classes[cls.Name] = info
	}
	return in
}

// Run constructs a Main instance and dispatches its main method.
func (i *Interp) Run() (Value, error) {
	main, err := i.NewInstance("Main")
	if err != nil {
		return nil, err
	}
	return i.dispatch(main, "", "main", nil)
}

// NewInstance constructs a fresh value of the named class. Basic classes
// yield their default value; user classes get an attribute scope seeded
// with void-like defaults for every declared and inherited attribute.
func (i *Interp) NewInstance(class string) (Value, error) {
	switch class {
	case semant.IntClass:
		return &Integer{}, nil
	case semant.StringClass:
		return &String{}, nil
	case semant.BoolClass:
		return False, nil
	}

	inst := &Instance{Class: class, Fields: NewScope(nil)}
	inst.Fields.SetSelf(inst)

	for cur := class; cur != semant.ObjectClass; {
		if info, ok := i.classes[cur]; ok {
			for _, attr := range info.attrs {
				// A subclass attribute shadows a same-named
				// ancestor attribute; first writer wins on the
				// walk up.
				if _, bound := inst.Fields.vars[attr.Name]; !bound {
					inst.Fields.Define(attr.Name, defaultValue(attr.Type))
				}
			}
		}
		parent, ok := i.hierarchy.Parent(cur)
		if !ok {
			break
		}
		cur = parent
	}
	return inst, nil
}

func defaultValue(typ string) Value {
	switch typ {
	case semant.IntClass:
		return &Integer{}
	case semant.StringClass:
		return &String{}
	case semant.BoolClass:
		return False
	}
	return NoValue
}

// Eval computes the runtime value of an expression in the given scope.
func (i *Interp) Eval(expr ast.Expression, s *Scope) (Value, error) {
	switch e := expr.(type) {
	case *ast.Assignment:
		v, err := i.Eval(e.Value, s)
		if err != nil {
			return nil, err
		}
		if !s.Assign(e.Name, v) {
			return nil, errors.Errorf("assignment to unbound identifier %s", e.Name)
		}
		return v, nil

	case *ast.MethodCall:
		return i.evalCall(e, s)

	case *ast.IfExpression:
		cond, err := i.evalBool(e.Condition, s)
		if err != nil {
			return nil, err
		}
		if cond {
			return i.Eval(e.Consequence, s)
		}
		return i.Eval(e.Alternative, s)

	case *ast.WhileExpression:
		for {
			cond, err := i.evalBool(e.Condition, s)
			if err != nil {
				return nil, err
			}
			if !cond {
				return NoValue, nil
			}
			if _, err := i.Eval(e.Body, s); err != nil {
				return nil, err
			}
		}

	case *ast.BlockExpression:
		var last Value = NoValue
		for _, sub := range e.Expressions {
			v, err := i.Eval(sub, s)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *ast.LetExpression:
		return i.evalLet(e, s)

	case *ast.CaseExpression:
		return i.evalCase(e, s)

	case *ast.NewExpression:
		class := e.Type
		if class == semant.SelfType {
			class = s.Self().Type()
		}
		return i.NewInstance(class)

	case *ast.IsVoidExpression:
		v, err := i.Eval(e.Operand, s)
		if err != nil {
			return nil, err
		}
		return nativeBool(IsVoid(v)), nil

	case *ast.NegExpression:
		v, err := i.evalInt(e.Operand, s)
		if err != nil {
			return nil, err
		}
		return &Integer{Value: ^v}, nil

	case *ast.NotExpression:
		v, err := i.evalBool(e.Operand, s)
		if err != nil {
			return nil, err
		}
		return nativeBool(!v), nil

	case *ast.BinaryExpression:
		return i.evalBinary(e, s)

	case *ast.GroupingExpression:
		return i.Eval(e.Inner, s)

	case *ast.ObjectIdentifier:
		if e.Name == "self" {
			return s.Self(), nil
		}
		if v, ok := s.Resolve(e.Name); ok {
			return v, nil
		}
		return nil, errors.Errorf("unbound identifier %s", e.Name)

	case *ast.IntegerLiteral:
		return &Integer{Value: e.Value}, nil
	case *ast.StringLiteral:
		return &String{Value: e.Value}, nil
	case *ast.BooleanLiteral:
		return nativeBool(e.Value), nil
	}
	return nil, errors.Errorf("unknown expression node %T", expr)
}

func (i *Interp) evalCall(e *ast.MethodCall, s *Scope) (Value, error) {
	receiver := s.Self()
	if e.Receiver != nil {
		var err error
		receiver, err = i.Eval(e.Receiver, s)
		if err != nil {
			return nil, err
		}
	}
	if receiver == nil {
		return nil, errors.Errorf("dispatch of %s with no receiver", e.Method)
	}

	args := make([]Value, len(e.Arguments))
	for idx, arg := range e.Arguments {
		v, err := i.Eval(arg, s)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return i.dispatch(receiver, e.StaticType, e.Method, args)
}

// dispatch resolves a method through the receiver's runtime class,
// nearest ancestor first. A static qualifier pins the starting class,
// bypassing overrides below it. Builtin methods of the basic classes
// participate in the same walk.
func (i *Interp) dispatch(receiver Value, staticType, name string, args []Value) (Value, error) {
	start := staticType
	if start == "" {
		start = receiver.Type()
	}

	for cur := start; ; {
		if info, ok := i.classes[cur]; ok {
			if m, ok := info.methods[name]; ok {
				return i.invoke(receiver, m, args)
			}
		}
		if fn, ok := builtins[cur][name]; ok {
			return fn(i, receiver, args)
		}
		if cur == semant.ObjectClass {
			return nil, errors.Errorf("method %s not found on %s", name, start)
		}
		parent, ok := i.hierarchy.Parent(cur)
		if !ok {
			return nil, errors.Errorf("class %s has no registered ancestor", cur)
		}
		cur = parent
	}
}

// invoke runs a method body in a fresh child of the receiver's attribute
// scope: attributes resolve through the parent link, parameters shadow
// them, self is the receiver.
func (i *Interp) invoke(receiver Value, m *ast.Method, args []Value) (Value, error) {
	inst, ok := receiver.(*Instance)
	if !ok {
		return nil, errors.Errorf("method %s invoked on %s value", m.Name, receiver.Type())
	}
	if len(args) != len(m.Formals) {
		return nil, errors.Errorf("method %s expects %d arguments, got %d", m.Name, len(m.Formals), len(args))
	}
	scope := inst.Fields.Child()
	for idx, formal := range m.Formals {
		scope.Define(formal.Name, args[idx])
	}
	return i.Eval(m.Body, scope)
}

// evalLet mirrors the checker's scoping: every initializer evaluates in
// the outer scope, then all bindings land together in one child scope
// the body runs in.
func (i *Interp) evalLet(e *ast.LetExpression, s *Scope) (Value, error) {
	values := make([]Value, len(e.Bindings))
	for idx, b := range e.Bindings {
		if b.Init == nil {
			values[idx] = defaultValue(b.Type)
			continue
		}
		v, err := i.Eval(b.Init, s)
		if err != nil {
			return nil, err
		}
		values[idx] = v
	}

	body := s.Child()
	for idx, b := range e.Bindings {
		body.Define(b.Name, values[idx])
	}
	return i.Eval(e.Body, body)
}

// evalCase selects the branch with the most specific bound type the
// scrutinee's runtime type conforms to; an exact match is the most
// specific by construction.
func (i *Interp) evalCase(e *ast.CaseExpression, s *Scope) (Value, error) {
	scrutinee, err := i.Eval(e.Scrutinee, s)
	if err != nil {
		return nil, err
	}
	runtimeType := scrutinee.Type()

	var selected *ast.Case
	best := -1
	for _, branch := range e.Cases {
		bound := branch.Type
		if bound == semant.SelfType {
			self := s.Self()
			if self == nil {
				return nil, errors.New("self-typed case branch with no receiver")
			}
			bound = self.Type()
		}
		ok, err := i.conforms(runtimeType, bound)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if depth := i.hierarchy.Depth(bound); depth > best {
			best = depth
			selected = branch
		}
	}
	if selected == nil {
		return nil, errors.Errorf("no case branch matches runtime type %s", runtimeType)
	}

	branchScope := s.Child()
	branchScope.Define(selected.Name, scrutinee)
	return i.Eval(selected.Body, branchScope)
}

// conforms extends the subtype walk to runtime types with no place in
// the registered hierarchy: the no-value sentinel a loop or empty block
// yields conforms to Object alone.
func (i *Interp) conforms(runtimeType, bound string) (bool, error) {
	if bound == semant.ObjectClass || runtimeType == bound {
		return true, nil
	}
	if _, registered := i.hierarchy.Parent(runtimeType); !registered {
		return false, nil
	}
	return i.hierarchy.IsSubtype(runtimeType, bound)
}

func (i *Interp) evalBinary(e *ast.BinaryExpression, s *Scope) (Value, error) {
	left, err := i.Eval(e.Left, s)
	if err != nil {
		return nil, err
	}
	right, err := i.Eval(e.Right, s)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case "+", "-", "*", "/", "<", "<=":
		l, ok := left.(*Integer)
		if !ok {
			return nil, errors.Errorf("operator %s on %s value", e.Operator, left.Type())
		}
		r, ok := right.(*Integer)
		if !ok {
			return nil, errors.Errorf("operator %s on %s value", e.Operator, right.Type())
		}
		switch e.Operator {
		case "+":
			return &Integer{Value: l.Value + r.Value}, nil
		case "-":
			return &Integer{Value: l.Value - r.Value}, nil
		case "*":
			return &Integer{Value: l.Value * r.Value}, nil
		case "/":
			if r.Value == 0 {
				return nil, errors.New("division by zero")
			}
			return &Integer{Value: floorDiv(l.Value, r.Value)}, nil
		case "<":
			return nativeBool(l.Value < r.Value), nil
		default:
			return nativeBool(l.Value <= r.Value), nil
		}
	case "=":
		return nativeBool(valueEqual(left, right)), nil
	}
	return nil, errors.Errorf("unknown binary operator %q", e.Operator)
}

// floorDiv truncates toward the integer floor rather than toward zero.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// valueEqual is structural for the basic values and identity for
// instances.
func valueEqual(left, right Value) bool {
	switch l := left.(type) {
	case *Integer:
		r, ok := right.(*Integer)
		return ok && l.Value == r.Value
	case *Boolean:
		r, ok := right.(*Boolean)
		return ok && l.Value == r.Value
	case *String:
		r, ok := right.(*String)
		return ok && l.Value == r.Value
	case *Unit:
		_, ok := right.(*Unit)
		return ok
	case *Instance:
		return left == right
	}
	return false
}

func (i *Interp) evalBool(expr ast.Expression, s *Scope) (bool, error) {
	v, err := i.Eval(expr, s)
	if err != nil {
		return false, err
	}
	b, ok := v.(*Boolean)
	if !ok {
		return false, errors.Errorf("expected Bool value, got %s", v.Type())
	}
	return b.Value, nil
}

func (i *Interp) evalInt(expr ast.Expression, s *Scope) (int64, error) {
	v, err := i.Eval(expr, s)
	if err != nil {
		return 0, err
	}
	n, ok := v.(*Integer)
	if !ok {
		return 0, errors.Errorf("expected Int value, got %s", v.Type())
	}
	return n.Value, nil
}
