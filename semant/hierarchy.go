package semant

// Basic class names. Object is the universal root; SELF_TYPE is the
// placeholder resolved to the enclosing class before any comparison.
const (
	SelfType    = "SELF_TYPE"
	ObjectClass = "Object"
	IOClass     = "IO"
	IntClass    = "Int"
	StringClass = "String"
	BoolClass   = "Bool"
)

// Hierarchy is the inheritance registry: the class-to-parent edge map and
// the subtype/join algorithms over the single-inheritance tree rooted at
// Object. It is written during class registration and read-only afterwards;
// it is not safe for concurrent registration.
type Hierarchy struct {
	parents map[string]string
}

func NewHierarchy() *Hierarchy {
	return &Hierarchy{parents: make(map[string]string)}
}

// Register records the parent edge for typ, overwriting any previous edge.
// Cycle and coverage checks are deferred to Validate.
func (h *Hierarchy) Register(typ, parent string) {
	h.parents[typ] = parent
}

// Parent returns the registered parent of typ. Object has no parent.
func (h *Hierarchy) Parent(typ string) (string, bool) {
	p, ok := h.parents[typ]
	return p, ok
}

// IsSubtype reports whether typ conforms to ancestor: it is the same
// class or a descendant of it. Every
// type is a descendant of Object by definition. A missing edge below the
// root is a BrokenHierarchyError: the program references an undeclared
// ancestor.
func (h *Hierarchy) IsSubtype(typ, ancestor string) (bool, error) {
	if ancestor == ObjectClass {
		return true, nil
	}
	for cur := typ; cur != ObjectClass; {
		if cur == ancestor {
			return true, nil
		}
		parent, ok := h.parents[cur]
		if !ok {
			return false, &BrokenHierarchyError{Type: cur}
		}
		cur = parent
	}
	return false, nil
}

// IsInheritable reports whether a class may declare typ as its parent.
// The placeholder self-type and the final basic classes cannot be
// subclassed.
func (h *Hierarchy) IsInheritable(typ string) bool {
	switch typ {
	case SelfType, IntClass, StringClass, BoolClass:
		return false
	}
	return true
}

// Join computes the least upper bound of the given types: the most
// specific ancestor shared by all of them. The empty set joins to Object.
func (h *Hierarchy) Join(types ...string) string {
	distinct := types[:0:0]
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			distinct = append(distinct, t)
		}
	}
	if len(distinct) == 0 {
		return ObjectClass
	}
	if len(distinct) == 1 {
		return distinct[0]
	}

	chains := make([][]string, len(distinct))
	for i, t := range distinct {
		chains[i] = h.chain(t)
	}

	// Walk the root-down chains in lockstep; the join is the last
	// position at which every chain agrees.
	join := ObjectClass
	for pos := 0; ; pos++ {
		var agreed string
		for i, chain := range chains {
			if pos >= len(chain) {
				return join
			}
			if i == 0 {
				agreed = chain[pos]
			} else if chain[pos] != agreed {
				return join
			}
		}
		join = agreed
	}
}

// chain builds the ancestor chain of typ ordered from Object down to typ.
// An unregistered edge terminates the walk as if the root were reached;
// Validate reports that case properly.
func (h *Hierarchy) chain(typ string) []string {
	var rev []string
	for cur := typ; cur != ObjectClass; {
		rev = append(rev, cur)
		parent, ok := h.parents[cur]
		if !ok {
			break
		}
		cur = parent
	}
	chain := make([]string, 0, len(rev)+1)
	chain = append(chain, ObjectClass)
	for i := len(rev) - 1; i >= 0; i-- {
		chain = append(chain, rev[i])
	}
	return chain
}

// Depth is the number of edges between typ and Object. Used to rank case
// branches by specificity.
func (h *Hierarchy) Depth(typ string) int {
	depth := 0
	for cur := typ; cur != ObjectClass; depth++ {
		parent, ok := h.parents[cur]
		if !ok {
			break
		}
		cur = parent
	}
	return depth
}

// Validate checks the whole registry once: every chain must terminate at
// Object and the parent relation must be acyclic. Run after all classes
// have registered and before any feature check.
func (h *Hierarchy) Validate() error {
	for typ := range h.parents {
		visited := make(map[string]bool)
		for cur := typ; cur != ObjectClass; {
			if visited[cur] {
				return &CyclicInheritanceError{Type: cur}
			}
			visited[cur] = true
			parent, ok := h.parents[cur]
			if !ok {
				return &BrokenHierarchyError{Type: cur}
			}
			cur = parent
		}
	}
	return nil
}
