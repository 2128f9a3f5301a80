package semant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coolc/ast"
)

// checkProgram runs a full program check against a fresh context and
// returns both so tests can keep querying the context.
func checkProgram(t *testing.T, classes ...*ast.Class) (*Context, error) {
	t.Helper()
	ctx := NewContext()
	err := NewChecker(ctx).CheckProgram(&ast.Program{Classes: classes})
	return ctx, err
}

// checkExprIn type-checks a single expression in the environment of a
// freshly registered class.
func checkExprIn(t *testing.T, class string, expr ast.Expression) (string, error) {
	t.Helper()
	ctx := NewContext()
	ctx.Hierarchy.Register(class, ObjectClass)
	return NewChecker(ctx).CheckExpr(expr, ctx.EnvOf(class))
}

func TestClassRegistration(t *testing.T) {
	t.Run("inheriting a final basic class", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{Name: "Bad", Parent: IntClass})
		var invalid *InvalidInheritanceError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Bad", invalid.Type)
		assert.Equal(t, IntClass, invalid.Parent)
	})

	t.Run("inheriting the self placeholder", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{Name: "Bad", Parent: SelfType})
		var invalid *InvalidInheritanceError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("redefining a basic class", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{Name: StringClass})
		var dup *DuplicateDeclarationError
		require.ErrorAs(t, err, &dup)
	})

	t.Run("undeclared parent is caught before feature checks", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{Name: "Orphan", Parent: "Ghost"})
		var broken *BrokenHierarchyError
		require.ErrorAs(t, err, &broken)
		assert.Equal(t, "Ghost", broken.Type)
	})

	t.Run("inheritance cycle", func(t *testing.T) {
		_, err := checkProgram(t,
			&ast.Class{Name: "X", Parent: "Y"},
			&ast.Class{Name: "Y", Parent: "X"},
		)
		var cyclic *CyclicInheritanceError
		require.ErrorAs(t, err, &cyclic)
	})

	t.Run("missing parent omitted means Object", func(t *testing.T) {
		ctx, err := checkProgram(t, &ast.Class{Name: "Plain"})
		require.NoError(t, err)
		parent, ok := ctx.Hierarchy.Parent("Plain")
		require.True(t, ok)
		assert.Equal(t, ObjectClass, parent)
	})
}

func TestAttributeChecking(t *testing.T) {
	t.Run("duplicate attribute in one class", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{
			Name: "Dup",
			Features: []ast.Feature{
				&ast.Attribute{Name: "n", Type: IntClass},
				&ast.Attribute{Name: "n", Type: StringClass},
			},
		})
		var dup *DuplicateDeclarationError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "n", dup.Name)
	})

	t.Run("shadowing an ancestor attribute is legal", func(t *testing.T) {
		_, err := checkProgram(t,
			&ast.Class{Name: "Base", Features: []ast.Feature{
				&ast.Attribute{Name: "n", Type: IntClass},
			}},
			&ast.Class{Name: "Derived", Parent: "Base", Features: []ast.Feature{
				&ast.Attribute{Name: "n", Type: IntClass},
			}},
		)
		require.NoError(t, err)
	})

	t.Run("initializer must conform", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{
			Name: "Bad",
			Features: []ast.Feature{
				&ast.Attribute{Name: "n", Type: IntClass, Init: &ast.StringLiteral{Value: "zero"}},
			},
		})
		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, IntClass, mismatch.Expected)
		assert.Equal(t, StringClass, mismatch.Actual)
	})

	t.Run("subtype initializer is accepted", func(t *testing.T) {
		_, err := checkProgram(t,
			&ast.Class{Name: "Base"},
			&ast.Class{Name: "Derived", Parent: "Base"},
			&ast.Class{Name: "Holder", Features: []ast.Feature{
				&ast.Attribute{Name: "b", Type: "Base", Init: &ast.NewExpression{Type: "Derived"}},
			}},
		)
		require.NoError(t, err)
	})
}

func TestMethodChecking(t *testing.T) {
	t.Run("body must conform to return type", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{
			Name: "Bad",
			Features: []ast.Feature{
				&ast.Method{Name: "f", ReturnType: IntClass, Body: &ast.BooleanLiteral{Value: true}},
			},
		})
		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
	})

	t.Run("parameters are visible to the body", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{
			Name: "Adder",
			Features: []ast.Feature{
				&ast.Method{
					Name:       "add",
					Formals:    []*ast.Formal{{Name: "a", Type: IntClass}, {Name: "b", Type: IntClass}},
					ReturnType: IntClass,
					Body: &ast.BinaryExpression{
						Operator: "+",
						Left:     &ast.ObjectIdentifier{Name: "a"},
						Right:    &ast.ObjectIdentifier{Name: "b"},
					},
				},
			},
		})
		require.NoError(t, err)
	})

	t.Run("self types to the enclosing class", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{
			Name: "Me",
			Features: []ast.Feature{
				&ast.Method{Name: "who", ReturnType: "Me", Body: &ast.ObjectIdentifier{Name: "self"}},
			},
		})
		require.NoError(t, err)
	})

	t.Run("SELF_TYPE return accepts the class body type", func(t *testing.T) {
		_, err := checkProgram(t, &ast.Class{
			Name: "Me",
			Features: []ast.Feature{
				&ast.Method{Name: "who", ReturnType: SelfType, Body: &ast.ObjectIdentifier{Name: "self"}},
			},
		})
		require.NoError(t, err)
	})
}

func TestCallChecking(t *testing.T) {
	counter := &ast.Class{
		Name: "Counter",
		Features: []ast.Feature{
			&ast.Attribute{Name: "n", Type: IntClass},
			&ast.Method{
				Name:       "inc",
				ReturnType: IntClass,
				Body: &ast.Assignment{
					Name: "n",
					Value: &ast.BinaryExpression{
						Operator: "+",
						Left:     &ast.ObjectIdentifier{Name: "n"},
						Right:    &ast.IntegerLiteral{Value: 1},
					},
				},
			},
		},
	}

	t.Run("dispatch on an explicit receiver", func(t *testing.T) {
		ctx, err := checkProgram(t, counter)
		require.NoError(t, err)

		typ, err := NewChecker(ctx).CheckExpr(&ast.MethodCall{
			Receiver: &ast.NewExpression{Type: "Counter"},
			Method:   "inc",
		}, ctx.EnvOf("Counter"))
		require.NoError(t, err)
		assert.Equal(t, IntClass, typ)
	})

	t.Run("inherited methods resolve through the chain", func(t *testing.T) {
		ctx, err := checkProgram(t, counter)
		require.NoError(t, err)

		typ, err := NewChecker(ctx).CheckExpr(&ast.MethodCall{
			Receiver: &ast.NewExpression{Type: "Counter"},
			Method:   "type_name",
		}, ctx.EnvOf("Counter"))
		require.NoError(t, err)
		assert.Equal(t, StringClass, typ)
	})

	t.Run("SELF_TYPE return propagates the receiver type", func(t *testing.T) {
		ctx, err := checkProgram(t, counter)
		require.NoError(t, err)

		typ, err := NewChecker(ctx).CheckExpr(&ast.MethodCall{
			Receiver: &ast.NewExpression{Type: "Counter"},
			Method:   "copy",
		}, ctx.EnvOf("Counter"))
		require.NoError(t, err)
		assert.Equal(t, "Counter", typ)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		ctx, err := checkProgram(t, counter)
		require.NoError(t, err)

		_, err = NewChecker(ctx).CheckExpr(&ast.MethodCall{
			Receiver:  &ast.NewExpression{Type: "Counter"},
			Method:    "inc",
			Arguments: []ast.Expression{&ast.IntegerLiteral{Value: 1}},
		}, ctx.EnvOf("Counter"))
		var arity *ArityMismatchError
		require.ErrorAs(t, err, &arity)
		assert.Equal(t, 0, arity.Expected)
		assert.Equal(t, 1, arity.Actual)
	})

	t.Run("undefined method", func(t *testing.T) {
		ctx, err := checkProgram(t, counter)
		require.NoError(t, err)

		_, err = NewChecker(ctx).CheckExpr(&ast.MethodCall{
			Receiver: &ast.NewExpression{Type: "Counter"},
			Method:   "dec",
		}, ctx.EnvOf("Counter"))
		var unbound *UnboundMethodError
		require.ErrorAs(t, err, &unbound)
		assert.Equal(t, "dec", unbound.Name)
	})

	t.Run("static dispatch to an ancestor", func(t *testing.T) {
		ctx, err := checkProgram(t, counter)
		require.NoError(t, err)

		typ, err := NewChecker(ctx).CheckExpr(&ast.MethodCall{
			Receiver:   &ast.NewExpression{Type: "Counter"},
			StaticType: ObjectClass,
			Method:     "type_name",
		}, ctx.EnvOf("Counter"))
		require.NoError(t, err)
		assert.Equal(t, StringClass, typ)
	})

	t.Run("static dispatch qualifier must be an ancestor", func(t *testing.T) {
		ctx, err := checkProgram(t, counter)
		require.NoError(t, err)

		_, err = NewChecker(ctx).CheckExpr(&ast.MethodCall{
			Receiver:   &ast.NewExpression{Type: "Counter"},
			StaticType: IOClass,
			Method:     "out_string",
			Arguments:  []ast.Expression{&ast.StringLiteral{Value: "x"}},
		}, ctx.EnvOf("Counter"))
		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, IOClass, mismatch.Expected)
	})
}

func TestExpressionTyping(t *testing.T) {
	t.Run("conditional joins its branches", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.IfExpression{
			Condition: &ast.BinaryExpression{
				Operator: "<",
				Left:     &ast.IntegerLiteral{Value: 1},
				Right:    &ast.IntegerLiteral{Value: 2},
			},
			Consequence: &ast.StringLiteral{Value: "a"},
			Alternative: &ast.StringLiteral{Value: "b"},
		})
		require.NoError(t, err)
		assert.Equal(t, StringClass, typ)
	})

	t.Run("conditional condition must be Bool", func(t *testing.T) {
		_, err := checkExprIn(t, "Main", &ast.IfExpression{
			Condition:   &ast.IntegerLiteral{Value: 1},
			Consequence: &ast.StringLiteral{Value: "a"},
			Alternative: &ast.StringLiteral{Value: "b"},
		})
		var cond *ConditionNotBoolError
		require.ErrorAs(t, err, &cond)
		assert.Equal(t, IntClass, cond.Actual)
	})

	t.Run("loop types to Object regardless of the body", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.WhileExpression{
			Condition: &ast.BinaryExpression{
				Operator: "<",
				Left:     &ast.IntegerLiteral{Value: 1},
				Right:    &ast.IntegerLiteral{Value: 2},
			},
			Body: &ast.StringLiteral{Value: "x"},
		})
		require.NoError(t, err)
		assert.Equal(t, ObjectClass, typ)
	})

	t.Run("block types as its last expression", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.BlockExpression{
			Expressions: []ast.Expression{
				&ast.IntegerLiteral{Value: 1},
				&ast.StringLiteral{Value: "done"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, StringClass, typ)
	})

	t.Run("empty block types to Object", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.BlockExpression{})
		require.NoError(t, err)
		assert.Equal(t, ObjectClass, typ)
	})

	t.Run("grouping passes through", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.GroupingExpression{
			Inner: &ast.IntegerLiteral{Value: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, IntClass, typ)
	})

	t.Run("isvoid always types Bool", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.IsVoidExpression{
			Operand: &ast.IntegerLiteral{Value: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, BoolClass, typ)
	})

	t.Run("negation requires Int", func(t *testing.T) {
		_, err := checkExprIn(t, "Main", &ast.NegExpression{
			Operand: &ast.BooleanLiteral{Value: true},
		})
		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, IntClass, mismatch.Expected)
	})

	t.Run("equality of identical types", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.BinaryExpression{
			Operator: "=",
			Left:     &ast.IntegerLiteral{Value: 5},
			Right:    &ast.IntegerLiteral{Value: 5},
		})
		require.NoError(t, err)
		assert.Equal(t, BoolClass, typ)
	})

	t.Run("equality rejects merely related types", func(t *testing.T) {
		_, err := checkExprIn(t, "Main", &ast.BinaryExpression{
			Operator: "=",
			Left:     &ast.IntegerLiteral{Value: 5},
			Right:    &ast.StringLiteral{Value: "5"},
		})
		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, IntClass, mismatch.Expected)
		assert.Equal(t, StringClass, mismatch.Actual)
	})

	t.Run("assignment result is the value type", func(t *testing.T) {
		ctx, err := checkProgram(t,
			&ast.Class{Name: "Base"},
			&ast.Class{Name: "Derived", Parent: "Base"},
			&ast.Class{Name: "Holder", Features: []ast.Feature{
				&ast.Attribute{Name: "b", Type: "Base"},
			}},
		)
		require.NoError(t, err)

		typ, err := NewChecker(ctx).CheckExpr(&ast.Assignment{
			Name:  "b",
			Value: &ast.NewExpression{Type: "Derived"},
		}, ctx.EnvOf("Holder"))
		require.NoError(t, err)
		assert.Equal(t, "Derived", typ)
	})

	t.Run("new of SELF_TYPE resolves to the enclosing class", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.NewExpression{Type: SelfType})
		require.NoError(t, err)
		assert.Equal(t, "Main", typ)
	})
}

func TestLetChecking(t *testing.T) {
	t.Run("bindings are visible to the body", func(t *testing.T) {
		typ, err := checkExprIn(t, "Main", &ast.LetExpression{
			Bindings: []*ast.Binding{
				{Name: "x", Type: IntClass, Init: &ast.IntegerLiteral{Value: 5}},
			},
			Body: &ast.ObjectIdentifier{Name: "x"},
		})
		require.NoError(t, err)
		assert.Equal(t, IntClass, typ)
	})

	t.Run("initializers see only the outer scope", func(t *testing.T) {
		// let x : Int <- 5, y : Int <- x in y
		_, err := checkExprIn(t, "Main", &ast.LetExpression{
			Bindings: []*ast.Binding{
				{Name: "x", Type: IntClass, Init: &ast.IntegerLiteral{Value: 5}},
				{Name: "y", Type: IntClass, Init: &ast.ObjectIdentifier{Name: "x"}},
			},
			Body: &ast.ObjectIdentifier{Name: "y"},
		})
		var unbound *UnboundIdentifierError
		require.ErrorAs(t, err, &unbound)
		assert.Equal(t, "x", unbound.Name)
	})

	t.Run("initializer must conform", func(t *testing.T) {
		_, err := checkExprIn(t, "Main", &ast.LetExpression{
			Bindings: []*ast.Binding{
				{Name: "x", Type: IntClass, Init: &ast.StringLiteral{Value: "five"}},
			},
			Body: &ast.ObjectIdentifier{Name: "x"},
		})
		var mismatch *TypeMismatchError
		require.ErrorAs(t, err, &mismatch)
	})
}

func TestCaseChecking(t *testing.T) {
	t.Run("duplicate branch type", func(t *testing.T) {
		_, err := checkExprIn(t, "Main", &ast.CaseExpression{
			Scrutinee: &ast.IntegerLiteral{Value: 1},
			Cases: []*ast.Case{
				{Name: "a", Type: IntClass, Body: &ast.IntegerLiteral{Value: 1}},
				{Name: "b", Type: IntClass, Body: &ast.IntegerLiteral{Value: 2}},
			},
		})
		var dup *DuplicateCaseTypeError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, IntClass, dup.Type)
	})

	t.Run("result is the join of the branch types", func(t *testing.T) {
		ctx, err := checkProgram(t,
			&ast.Class{Name: "P"},
			&ast.Class{Name: "A", Parent: "P"},
			&ast.Class{Name: "B", Parent: "P"},
		)
		require.NoError(t, err)

		typ, err := NewChecker(ctx).CheckExpr(&ast.CaseExpression{
			Scrutinee: &ast.NewExpression{Type: "A"},
			Cases: []*ast.Case{
				{Name: "a", Type: "A", Body: &ast.NewExpression{Type: "A"}},
				{Name: "b", Type: "B", Body: &ast.NewExpression{Type: "B"}},
			},
		}, ctx.EnvOf("P"))
		require.NoError(t, err)
		assert.Equal(t, "P", typ)
	})

	t.Run("case variable is bound inside each branch only", func(t *testing.T) {
		ctx := NewContext()
		ctx.Hierarchy.Register("Main", ObjectClass)
		env := ctx.EnvOf("Main")

		_, err := NewChecker(ctx).CheckExpr(&ast.CaseExpression{
			Scrutinee: &ast.IntegerLiteral{Value: 1},
			Cases: []*ast.Case{
				{Name: "v", Type: IntClass, Body: &ast.ObjectIdentifier{Name: "v"}},
			},
		}, env)
		require.NoError(t, err)

		// The binding did not escape into the surrounding scope.
		_, err = env.ObjectType("v")
		var unbound *UnboundIdentifierError
		require.ErrorAs(t, err, &unbound)
	})
}
