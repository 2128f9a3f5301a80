package ast

// Node is the root of the AST hierarchy. The tree is produced by an
// external parser; this package only defines its shape.
type Node interface {
	node()
}

// Expression is any node that has a static type and a runtime value.
type Expression interface {
	Node
	expressionNode()
}

// Feature is a class member: an attribute or a method.
type Feature interface {
	Node
	featureNode()
}

// Program is a flat listing of class declarations.
type Program struct {
	Classes []*Class
}

func (p *Program) node() {}

// Class declares a type. An empty Parent means the class inherits
// Object directly.
type Class struct {
	Name     string
	Parent   string
	Features []Feature
}

func (c *Class) node() {}

// Attribute is a named, typed slot with an optional initializer.
type Attribute struct {
	Name string
	Type string
	Init Expression
}

func (a *Attribute) node()        {}
func (a *Attribute) featureNode() {}

// Formal is a method parameter.
type Formal struct {
	Name string
	Type string
}

func (f *Formal) node() {}

type Method struct {
	Name       string
	Formals    []*Formal
	ReturnType string
	Body       Expression
}

func (m *Method) node()        {}
func (m *Method) featureNode() {}

// Assignment mutates an already-declared identifier.
type Assignment struct {
	Name  string
	Value Expression
}

func (a *Assignment) node()           {}
func (a *Assignment) expressionNode() {}

// MethodCall dispatches Method on Receiver. A nil Receiver dispatches on
// self. A non-empty StaticType pins resolution to that ancestor instead
// of the receiver's runtime class.
type MethodCall struct {
	Receiver   Expression
	StaticType string
	Method     string
	Arguments  []Expression
}

func (mc *MethodCall) node()           {}
func (mc *MethodCall) expressionNode() {}

type IfExpression struct {
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (ie *IfExpression) node()           {}
func (ie *IfExpression) expressionNode() {}

type WhileExpression struct {
	Condition Expression
	Body      Expression
}

func (we *WhileExpression) node()           {}
func (we *WhileExpression) expressionNode() {}

type BlockExpression struct {
	Expressions []Expression
}

func (be *BlockExpression) node()           {}
func (be *BlockExpression) expressionNode() {}

// Binding is one name/type/initializer triple of a let expression.
type Binding struct {
	Name string
	Type string
	Init Expression
}

func (b *Binding) node() {}

type LetExpression struct {
	Bindings []*Binding
	Body     Expression
}

func (le *LetExpression) node()           {}
func (le *LetExpression) expressionNode() {}

// Case is one branch of a case expression: the scrutinee is bound to
// Name with static type Type inside Body.
type Case struct {
	Name string
	Type string
	Body Expression
}

func (c *Case) node() {}

type CaseExpression struct {
	Scrutinee Expression
	Cases     []*Case
}

func (ce *CaseExpression) node()           {}
func (ce *CaseExpression) expressionNode() {}

type NewExpression struct {
	Type string
}

func (ne *NewExpression) node()           {}
func (ne *NewExpression) expressionNode() {}

type IsVoidExpression struct {
	Operand Expression
}

func (ie *IsVoidExpression) node()           {}
func (ie *IsVoidExpression) expressionNode() {}

// NegExpression is arithmetic negation (integer complement).
type NegExpression struct {
	Operand Expression
}

func (ne *NegExpression) node()           {}
func (ne *NegExpression) expressionNode() {}

// NotExpression is boolean negation.
type NotExpression struct {
	Operand Expression
}

func (ne *NotExpression) node()           {}
func (ne *NotExpression) expressionNode() {}

// BinaryExpression covers arithmetic ("+", "-", "*", "/"), comparison
// ("<", "<=") and equality ("=") operators.
type BinaryExpression struct {
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) node()           {}
func (be *BinaryExpression) expressionNode() {}

// GroupingExpression is explicit parenthesization; a pure pass-through.
type GroupingExpression struct {
	Inner Expression
}

func (ge *GroupingExpression) node()           {}
func (ge *GroupingExpression) expressionNode() {}

// ObjectIdentifier references a declared identifier, or the current
// receiver when the name is "self".
type ObjectIdentifier struct {
	Name string
}

func (oi *ObjectIdentifier) node()           {}
func (oi *ObjectIdentifier) expressionNode() {}

type IntegerLiteral struct {
	Value int64
}

func (il *IntegerLiteral) node()           {}
func (il *IntegerLiteral) expressionNode() {}

type StringLiteral struct {
	Value string
}

func (sl *StringLiteral) node()           {}
func (sl *StringLiteral) expressionNode() {}

type BooleanLiteral struct {
	Value bool
}

func (bl *BooleanLiteral) node()           {}
func (bl *BooleanLiteral) expressionNode() {}
