package semant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeEnvObjects(t *testing.T) {
	env := NewTypeEnv("Main")

	t.Run("declare and resolve", func(t *testing.T) {
		require.NoError(t, env.DeclareObject("x", IntClass))
		typ, err := env.ObjectType("x")
		require.NoError(t, err)
		assert.Equal(t, IntClass, typ)
	})

	t.Run("redeclaration at the same level fails", func(t *testing.T) {
		err := env.DeclareObject("x", StringClass)
		var dup *DuplicateDeclarationError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "x", dup.Name)
	})

	t.Run("shadowing in a child level is allowed", func(t *testing.T) {
		child := env.Child()
		require.NoError(t, child.DeclareObject("x", StringClass))

		typ, err := child.ObjectType("x")
		require.NoError(t, err)
		assert.Equal(t, StringClass, typ)

		// The outer declaration is untouched.
		typ, err = env.ObjectType("x")
		require.NoError(t, err)
		assert.Equal(t, IntClass, typ)
	})

	t.Run("lookup walks outward", func(t *testing.T) {
		child := env.Child().Child()
		typ, err := child.ObjectType("x")
		require.NoError(t, err)
		assert.Equal(t, IntClass, typ)
		assert.Equal(t, "Main", child.Class())
	})

	t.Run("unbound identifier", func(t *testing.T) {
		_, err := env.ObjectType("missing")
		var unbound *UnboundIdentifierError
		require.ErrorAs(t, err, &unbound)
		assert.Equal(t, "missing", unbound.Name)
	})
}

func TestTypeEnvMethods(t *testing.T) {
	env := NewTypeEnv("Main")
	sig := Signature{Params: []string{IntClass}, Return: BoolClass}
	require.NoError(t, env.DeclareMethod("test", sig))

	t.Run("resolve through child levels", func(t *testing.T) {
		got, err := env.Child().MethodSignature("test")
		require.NoError(t, err)
		assert.Equal(t, sig, got)
	})

	t.Run("duplicate method", func(t *testing.T) {
		err := env.DeclareMethod("test", Signature{Return: IntClass})
		var dup *DuplicateDeclarationError
		require.ErrorAs(t, err, &dup)
	})

	t.Run("unbound method", func(t *testing.T) {
		_, err := env.MethodSignature("missing")
		var unbound *UnboundMethodError
		require.ErrorAs(t, err, &unbound)
	})
}
