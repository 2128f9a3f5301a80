package semant

// Signature is a method's declared parameter types and return type.
type Signature struct {
	Params []string
	Return string
}

// TypeEnv is one level of the lexically chained static environment of a
// class: declared identifier types, declared method signatures, and the
// name of the class the chain belongs to. Reads resolve upward through
// the parent link; writes land in this level only.
type TypeEnv struct {
	class   string
	objects map[string]string
	methods map[string]Signature
	parent  *TypeEnv
}

func NewTypeEnv(class string) *TypeEnv {
	return &TypeEnv{
		class:   class,
		objects: make(map[string]string),
		methods: make(map[string]Signature),
	}
}

// Class is the enclosing class this environment belongs to, used to
// resolve SELF_TYPE and the self identifier.
func (te *TypeEnv) Class() string {
	return te.class
}

// Child creates a nested scope level sharing the class tag. The parent
// link is for lookup only; the child is owned by whichever traversal
// created it.
func (te *TypeEnv) Child() *TypeEnv {
	child := NewTypeEnv(te.class)
	child.parent = te
	return child
}

func (te *TypeEnv) ObjectType(name string) (string, error) {
	for env := te; env != nil; env = env.parent {
		if typ, ok := env.objects[name]; ok {
			return typ, nil
		}
	}
	return "", &UnboundIdentifierError{Name: name}
}

// DeclareObject registers an identifier at this level. Shadowing an outer
// declaration is legal; redeclaring at the same level is not.
func (te *TypeEnv) DeclareObject(name, typ string) error {
	if _, ok := te.objects[name]; ok {
		return &DuplicateDeclarationError{Name: name}
	}
	te.objects[name] = typ
	return nil
}

func (te *TypeEnv) MethodSignature(name string) (Signature, error) {
	for env := te; env != nil; env = env.parent {
		if sig, ok := env.methods[name]; ok {
			return sig, nil
		}
	}
	return Signature{}, &UnboundMethodError{Name: name}
}

func (te *TypeEnv) DeclareMethod(name string, sig Signature) error {
	if _, ok := te.methods[name]; ok {
		return &DuplicateDeclarationError{Name: name}
	}
	te.methods[name] = sig
	return nil
}
