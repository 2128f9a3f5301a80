package semant

import (
	"github.com/pkg/errors"

	"coolc/ast"
)

// Checker is the type-check pass: an exhaustive walk over the node kinds
// against the type environments of a Context. The first error
// encountered stops the offending subtree and propagates; callers
// wanting per-class error collection wrap CheckClass themselves.
type Checker struct {
	ctx *Context
}

func NewChecker(ctx *Context) *Checker {
	return &Checker{ctx: ctx}
}

// resolveSelf normalizes the placeholder self-type to the enclosing
// class. Idempotent; applied wherever a declared type is read.
func resolveSelf(typ, class string) string {
	if typ == SelfType {
		return class
	}
	return typ
}

// CheckProgram validates a whole program: classes register their
// inheritance edges first, the hierarchy is validated for coverage and
// acyclicity, then every class's features are checked in declaration
// order.
func (c *Checker) CheckProgram(prog *ast.Program) error {
	for _, cls := range prog.Classes {
		if err := c.RegisterClass(cls); err != nil {
			return err
		}
	}
	if err := c.ctx.Hierarchy.Validate(); err != nil {
		return err
	}
	for _, cls := range prog.Classes {
		if _, err := c.CheckClass(cls); err != nil {
			return errors.Wrapf(err, "class %s", cls.Name)
		}
	}
	return nil
}

// RegisterClass validates the declared parent and records the
// inheritance edge. The root type is never itself declared.
func (c *Checker) RegisterClass(cls *ast.Class) error {
	if cls.Name == SelfType || c.ctx.IsBasicClass(cls.Name) {
		return &DuplicateDeclarationError{Name: cls.Name}
	}
	parent := cls.Parent
	if parent == "" {
		parent = ObjectClass
	}
	if !c.ctx.Hierarchy.IsInheritable(parent) {
		return &InvalidInheritanceError{Type: cls.Name, Parent: parent}
	}
	c.ctx.Hierarchy.Register(cls.Name, parent)
	return nil
}

// CheckClass type-checks every feature of an already-registered class
// against the class's own environment and yields the class name.
func (c *Checker) CheckClass(cls *ast.Class) (string, error) {
	env := c.ctx.EnvOf(cls.Name)
	for _, feat := range cls.Features {
		switch f := feat.(type) {
		case *ast.Attribute:
			if err := c.checkAttribute(f, env); err != nil {
				return "", errors.Wrapf(err, "attribute %s", f.Name)
			}
		case *ast.Method:
			if err := c.checkMethod(f, env); err != nil {
				return "", errors.Wrapf(err, "method %s", f.Name)
			}
		}
	}
	return cls.Name, nil
}

func (c *Checker) checkAttribute(attr *ast.Attribute, env *TypeEnv) error {
	declared := resolveSelf(attr.Type, env.Class())
	if err := env.DeclareObject(attr.Name, declared); err != nil {
		return err
	}
	if attr.Init != nil {
		initType, err := c.CheckExpr(attr.Init, env)
		if err != nil {
			return err
		}
		ok, err := c.ctx.Hierarchy.IsSubtype(initType, declared)
		if err != nil {
			return err
		}
		if !ok {
			return &TypeMismatchError{Expected: declared, Actual: initType}
		}
	}
	return nil
}

func (c *Checker) checkMethod(m *ast.Method, env *TypeEnv) error {
	sig := Signature{Return: m.ReturnType}
	for _, formal := range m.Formals {
		sig.Params = append(sig.Params, formal.Type)
	}
	if err := env.DeclareMethod(m.Name, sig); err != nil {
		return err
	}

	// Parameters live in a scope of their own so they can shadow
	// attributes without clashing with them.
	bodyEnv := env.Child()
	for _, formal := range m.Formals {
		if err := bodyEnv.DeclareObject(formal.Name, resolveSelf(formal.Type, env.Class())); err != nil {
			return err
		}
	}

	bodyType, err := c.CheckExpr(m.Body, bodyEnv)
	if err != nil {
		return err
	}
	declared := resolveSelf(m.ReturnType, env.Class())
	ok, err := c.ctx.Hierarchy.IsSubtype(bodyType, declared)
	if err != nil {
		return err
	}
	if !ok {
		return &TypeMismatchError{Expected: declared, Actual: bodyType}
	}
	return nil
}

// CheckExpr computes the static type of an expression in the given
// environment, or fails with one of the taxonomy errors.
func (c *Checker) CheckExpr(expr ast.Expression, env *TypeEnv) (string, error) {
	switch e := expr.(type) {
	case *ast.Assignment:
		return c.checkAssignment(e, env)
	case *ast.MethodCall:
		return c.checkCall(e, env)
	case *ast.IfExpression:
		return c.checkIf(e, env)
	case *ast.WhileExpression:
		return c.checkWhile(e, env)
	case *ast.BlockExpression:
		return c.checkBlock(e, env)
	case *ast.LetExpression:
		return c.checkLet(e, env)
	case *ast.CaseExpression:
		return c.checkCase(e, env)
	case *ast.NewExpression:
		return resolveSelf(e.Type, env.Class()), nil
	case *ast.IsVoidExpression:
		if _, err := c.CheckExpr(e.Operand, env); err != nil {
			return "", err
		}
		return BoolClass, nil
	case *ast.NegExpression:
		return c.checkUnary(e.Operand, IntClass, env)
	case *ast.NotExpression:
		return c.checkUnary(e.Operand, BoolClass, env)
	case *ast.BinaryExpression:
		return c.checkBinary(e, env)
	case *ast.GroupingExpression:
		return c.CheckExpr(e.Inner, env)
	case *ast.ObjectIdentifier:
		if e.Name == "self" {
			return env.Class(), nil
		}
		return env.ObjectType(e.Name)
	case *ast.IntegerLiteral:
		return IntClass, nil
	case *ast.StringLiteral:
		return StringClass, nil
	case *ast.BooleanLiteral:
		return BoolClass, nil
	}
	return "", errors.Errorf("unknown expression node %T", expr)
}

// checkAssignment types the mutation of an existing declaration. The
// result is the right-hand side's type, not the declared one:
// assignment is transparent to the value flowing through it.
func (c *Checker) checkAssignment(e *ast.Assignment, env *TypeEnv) (string, error) {
	declared, err := env.ObjectType(e.Name)
	if err != nil {
		return "", err
	}
	valueType, err := c.CheckExpr(e.Value, env)
	if err != nil {
		return "", err
	}
	ok, err := c.ctx.Hierarchy.IsSubtype(valueType, declared)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &TypeMismatchError{Expected: declared, Actual: valueType}
	}
	return valueType, nil
}

func (c *Checker) checkCall(e *ast.MethodCall, env *TypeEnv) (string, error) {
	receiverType := env.Class()
	if e.Receiver != nil {
		var err error
		receiverType, err = c.CheckExpr(e.Receiver, env)
		if err != nil {
			return "", err
		}
	}

	dispatchType := receiverType
	if e.StaticType != "" {
		// Static dispatch pins resolution to a named ancestor the
		// receiver must conform to.
		ok, err := c.ctx.Hierarchy.IsSubtype(receiverType, e.StaticType)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", &TypeMismatchError{Expected: e.StaticType, Actual: receiverType}
		}
		dispatchType = e.StaticType
	}

	sig, err := c.ctx.LookupMethod(resolveSelf(dispatchType, env.Class()), e.Method)
	if err != nil {
		return "", err
	}

	if len(e.Arguments) != len(sig.Params) {
		return "", &ArityMismatchError{Method: e.Method, Expected: len(sig.Params), Actual: len(e.Arguments)}
	}
	for i, arg := range e.Arguments {
		argType, err := c.CheckExpr(arg, env)
		if err != nil {
			return "", err
		}
		paramType := resolveSelf(sig.Params[i], dispatchType)
		ok, err := c.ctx.Hierarchy.IsSubtype(argType, paramType)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", &TypeMismatchError{Expected: paramType, Actual: argType}
		}
	}

	// A SELF_TYPE result propagates the receiver's actual static type.
	if sig.Return == SelfType {
		return receiverType, nil
	}
	return sig.Return, nil
}

func (c *Checker) checkIf(e *ast.IfExpression, env *TypeEnv) (string, error) {
	condType, err := c.CheckExpr(e.Condition, env)
	if err != nil {
		return "", err
	}
	if condType != BoolClass {
		return "", &ConditionNotBoolError{Actual: condType}
	}
	thenType, err := c.CheckExpr(e.Consequence, env)
	if err != nil {
		return "", err
	}
	elseType, err := c.CheckExpr(e.Alternative, env)
	if err != nil {
		return "", err
	}
	return c.ctx.Hierarchy.Join(thenType, elseType), nil
}

// checkWhile validates the loop but types it as Object regardless of the
// body: loops yield no useful value.
func (c *Checker) checkWhile(e *ast.WhileExpression, env *TypeEnv) (string, error) {
	condType, err := c.CheckExpr(e.Condition, env)
	if err != nil {
		return "", err
	}
	if condType != BoolClass {
		return "", &ConditionNotBoolError{Actual: condType}
	}
	if _, err := c.CheckExpr(e.Body, env); err != nil {
		return "", err
	}
	return ObjectClass, nil
}

func (c *Checker) checkBlock(e *ast.BlockExpression, env *TypeEnv) (string, error) {
	last := ObjectClass
	for _, sub := range e.Expressions {
		t, err := c.CheckExpr(sub, env)
		if err != nil {
			return "", err
		}
		last = t
	}
	return last, nil
}

// checkLet types initializers against the outer environment: bindings of
// the same group are not visible to each other's initializers, only to
// the body.
func (c *Checker) checkLet(e *ast.LetExpression, env *TypeEnv) (string, error) {
	bodyEnv := env.Child()
	for _, b := range e.Bindings {
		declared := resolveSelf(b.Type, env.Class())
		if b.Init != nil {
			initType, err := c.CheckExpr(b.Init, env)
			if err != nil {
				return "", err
			}
			ok, err := c.ctx.Hierarchy.IsSubtype(initType, declared)
			if err != nil {
				return "", err
			}
			if !ok {
				return "", &TypeMismatchError{Expected: declared, Actual: initType}
			}
		}
		if err := bodyEnv.DeclareObject(b.Name, declared); err != nil {
			return "", err
		}
	}
	return c.CheckExpr(e.Body, bodyEnv)
}

func (c *Checker) checkCase(e *ast.CaseExpression, env *TypeEnv) (string, error) {
	if _, err := c.CheckExpr(e.Scrutinee, env); err != nil {
		return "", err
	}
	seen := make(map[string]bool)
	branchTypes := make([]string, 0, len(e.Cases))
	for _, branch := range e.Cases {
		bound := resolveSelf(branch.Type, env.Class())
		if seen[bound] {
			return "", &DuplicateCaseTypeError{Type: bound}
		}
		seen[bound] = true

		branchEnv := env.Child()
		if err := branchEnv.DeclareObject(branch.Name, bound); err != nil {
			return "", err
		}
		t, err := c.CheckExpr(branch.Body, branchEnv)
		if err != nil {
			return "", err
		}
		branchTypes = append(branchTypes, t)
	}
	return c.ctx.Hierarchy.Join(branchTypes...), nil
}

func (c *Checker) checkUnary(operand ast.Expression, want string, env *TypeEnv) (string, error) {
	t, err := c.CheckExpr(operand, env)
	if err != nil {
		return "", err
	}
	if t != want {
		return "", &TypeMismatchError{Expected: want, Actual: t}
	}
	return want, nil
}

func (c *Checker) checkBinary(e *ast.BinaryExpression, env *TypeEnv) (string, error) {
	leftType, err := c.CheckExpr(e.Left, env)
	if err != nil {
		return "", err
	}
	rightType, err := c.CheckExpr(e.Right, env)
	if err != nil {
		return "", err
	}

	switch e.Operator {
	case "+", "-", "*", "/":
		if leftType != IntClass {
			return "", &TypeMismatchError{Expected: IntClass, Actual: leftType}
		}
		if rightType != IntClass {
			return "", &TypeMismatchError{Expected: IntClass, Actual: rightType}
		}
		return IntClass, nil
	case "<", "<=":
		if leftType != IntClass {
			return "", &TypeMismatchError{Expected: IntClass, Actual: leftType}
		}
		if rightType != IntClass {
			return "", &TypeMismatchError{Expected: IntClass, Actual: rightType}
		}
		return BoolClass, nil
	case "=":
		// Equality demands identical operand types, not mere
		// subtype compatibility.
		if leftType != rightType {
			return "", &TypeMismatchError{Expected: leftType, Actual: rightType}
		}
		return BoolClass, nil
	}
	return "", errors.Errorf("unknown binary operator %q", e.Operator)
}
