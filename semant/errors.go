package semant

import "fmt"

// The checker reports failures as typed values so a diagnostics layer can
// match on the kind with errors.As and format its own message. The checker
// itself never prints.

type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type %s does not conform to %s", e.Actual, e.Expected)
}

type ConditionNotBoolError struct {
	Actual string
}

func (e *ConditionNotBoolError) Error() string {
	return fmt.Sprintf("condition must be Bool, got %s", e.Actual)
}

type UnboundIdentifierError struct {
	Name string
}

func (e *UnboundIdentifierError) Error() string {
	return fmt.Sprintf("undefined identifier %s", e.Name)
}

type UnboundMethodError struct {
	Name string
}

func (e *UnboundMethodError) Error() string {
	return fmt.Sprintf("undefined method %s", e.Name)
}

type DuplicateDeclarationError struct {
	Name string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("%s is already declared in this scope", e.Name)
}

type DuplicateCaseTypeError struct {
	Type string
}

func (e *DuplicateCaseTypeError) Error() string {
	return fmt.Sprintf("duplicate case branch type %s", e.Type)
}

type InvalidInheritanceError struct {
	Type   string
	Parent string
}

func (e *InvalidInheritanceError) Error() string {
	return fmt.Sprintf("class %s cannot inherit from %s", e.Type, e.Parent)
}

type ArityMismatchError struct {
	Method   string
	Expected int
	Actual   int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("method %s expects %d arguments, got %d", e.Method, e.Expected, e.Actual)
}

// BrokenHierarchyError reports a type whose ancestor chain references a
// class with no registered parent edge.
type BrokenHierarchyError struct {
	Type string
}

func (e *BrokenHierarchyError) Error() string {
	return fmt.Sprintf("class %s has no registered ancestor", e.Type)
}

type CyclicInheritanceError struct {
	Type string
}

func (e *CyclicInheritanceError) Error() string {
	return fmt.Sprintf("inheritance cycle involving class %s", e.Type)
}
