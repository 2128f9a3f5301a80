package interp

import (
	"fmt"

	"coolc/semant"
)

// Value is a language-level runtime value. Type returns the value's
// runtime class name, which is what dynamic dispatch and case matching
// resolve against.
type Value interface {
	Type() string
	Inspect() string
}

var (
	True    = &Boolean{Value: true}
	False   = &Boolean{Value: false}
	NoValue = &Unit{}
)

type Integer struct {
	Value int64
}

func (i *Integer) Type() string    { return semant.IntClass }
func (i *Integer) Inspect() string { return fmt.Sprintf("%d", i.Value) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() string    { return semant.BoolClass }
func (b *Boolean) Inspect() string { return fmt.Sprintf("%t", b.Value) }

type String struct {
	Value string
}

func (s *String) Type() string    { return semant.StringClass }
func (s *String) Inspect() string { return s.Value }

// Instance is a constructed object: its class name plus a scope of its
// own holding the attribute slots. Two instances never share slots.
type Instance struct {
	Class  string
	Fields *Scope
}

func (i *Instance) Type() string    { return i.Class }
func (i *Instance) Inspect() string { return fmt.Sprintf("<%s instance>", i.Class) }

// Unit is the "no value" sentinel yielded by loops and empty blocks.
type Unit struct{}

func (u *Unit) Type() string    { return "Unit" }
func (u *Unit) Inspect() string { return "unit" }

func nativeBool(v bool) *Boolean {
	if v {
		return True
	}
	return False
}

// IsVoid reports whether v is one of the void-like sentinels: the
// language has no distinct null, so absence is a type-specific empty
// value.
func IsVoid(v Value) bool {
	switch val := v.(type) {
	case *Integer:
		return val.Value == 0
	case *String:
		return val.Value == ""
	case *Boolean:
		return !val.Value
	case *Unit:
		return true
	}
	return false
}
