package interp

// Scope is one level of the runtime environment: bound values, the
// current receiver, and a parent link for lookup. Its lifetime matches
// one activation of a method body, let body, loop body or case branch.
type Scope struct {
	parent *Scope
	vars   map[string]Value
	self   Value
}

func NewScope(parent *Scope) *Scope {
	s := &Scope{
		parent: parent,
		vars:   make(map[string]Value),
	}
	if parent != nil {
		s.self = parent.self
	}
	return s
}

func (s *Scope) Child() *Scope {
	return NewScope(s)
}

// Self is the current receiver.
func (s *Scope) Self() Value {
	return s.self
}

func (s *Scope) SetSelf(v Value) {
	s.self = v
}

// Resolve walks the chain outward until the name is found.
func (s *Scope) Resolve(name string) (Value, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if v, ok := scope.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define binds a name at this level, shadowing any outer binding.
func (s *Scope) Define(name string, v Value) {
	s.vars[name] = v
}

// Assign updates the binding at the level that owns it, so mutating an
// instance attribute from a method body writes through to the instance.
// Reports false if no level binds the name.
func (s *Scope) Assign(name string, v Value) bool {
	for scope := s; scope != nil; scope = scope.parent {
		if _, ok := scope.vars[name]; ok {
			scope.vars[name] = v
			return true
		}
	}
	return false
}
