package semant

// Context owns everything one compilation shares: the inheritance
// registry and the per-class type environment cache. It replaces a
// process-global symbol table so independent compilations never observe
// each other. One context has a single-writer phase (class registration
// and feature checking) followed by read-only queries; it is not safe
// for concurrent checks.
type Context struct {
	Hierarchy *Hierarchy

	envs map[string]*TypeEnv
}

func NewContext() *Context {
	ctx := &Context{
		Hierarchy: NewHierarchy(),
		envs:      make(map[string]*TypeEnv),
	}
	ctx.registerBasicClasses()
	return ctx
}

// registerBasicClasses seeds Object, IO, Int, String and Bool with their
// builtin method signatures.
func (ctx *Context) registerBasicClasses() {
	for _, basic := range []string{IOClass, IntClass, StringClass, BoolClass} {
		ctx.Hierarchy.Register(basic, ObjectClass)
	}

	object := ctx.EnvOf(ObjectClass)
	object.DeclareMethod("abort", Signature{Return: ObjectClass})
	object.DeclareMethod("type_name", Signature{Return: StringClass})
	object.DeclareMethod("copy", Signature{Return: SelfType})

	io := ctx.EnvOf(IOClass)
	io.DeclareMethod("out_string", Signature{Params: []string{StringClass}, Return: SelfType})
	io.DeclareMethod("out_int", Signature{Params: []string{IntClass}, Return: SelfType})
	io.DeclareMethod("in_string", Signature{Return: StringClass})
	io.DeclareMethod("in_int", Signature{Return: IntClass})

	str := ctx.EnvOf(StringClass)
	str.DeclareMethod("length", Signature{Return: IntClass})
	str.DeclareMethod("concat", Signature{Params: []string{StringClass}, Return: StringClass})
	str.DeclareMethod("substr", Signature{Params: []string{IntClass, IntClass}, Return: StringClass})
}

// IsBasicClass reports whether name is one of the seeded builtin classes.
func (ctx *Context) IsBasicClass(name string) bool {
	switch name {
	case ObjectClass, IOClass, IntClass, StringClass, BoolClass:
		return true
	}
	return false
}

// EnvOf returns the type environment of a class, creating it on first
// use. One environment exists per class for the lifetime of the context.
func (ctx *Context) EnvOf(class string) *TypeEnv {
	if env, ok := ctx.envs[class]; ok {
		return env
	}
	env := NewTypeEnv(class)
	ctx.envs[class] = env
	return env
}

// LookupMethod resolves a method signature by walking the inheritance
// chain of class from the class itself up to Object, nearest declaration
// first, so overrides shadow inherited signatures.
func (ctx *Context) LookupMethod(class, name string) (Signature, error) {
	cur := class
	for {
		if env, ok := ctx.envs[cur]; ok {
			if sig, err := env.MethodSignature(name); err == nil {
				return sig, nil
			}
		}
		if cur == ObjectClass {
			return Signature{}, &UnboundMethodError{Name: name}
		}
		parent, ok := ctx.Hierarchy.Parent(cur)
		if !ok {
			return Signature{}, &BrokenHierarchyError{Type: cur}
		}
		cur = parent
	}
}
