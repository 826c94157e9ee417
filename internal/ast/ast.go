// Package ast defines the algebraic data type produced by the parser and
// annotated in place by the checker (spec §3, §9 design note: mutable
// fields on pointer nodes, not a side-table — "matches the original
// semantics most directly").
package ast

import (
	"github.com/ChAoSUnItY/Yakou/internal/token"
	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() token.Position
	Accept(v Visitor)
}

// Statement is a Node that stands alone in a block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that yields a value; every Expression eventually
// carries a resolved Type once checked (spec §3 invariant 1), or the
// checker has recorded a diagnostic explaining why it could not.
type Expression interface {
	Node
	expressionNode()
	Type() typesystem.Type
	SetType(typesystem.Type)
	CastTo() typesystem.Type
	SetCastTo(typesystem.Type)
}

// NodeBase supplies the Pos() method via an embedded field.
type NodeBase struct {
	P token.Position
}

func (n NodeBase) Pos() token.Position { return n.P }

// ExprBase supplies Type()/SetType()/CastTo()/SetCastTo() for every
// Expression via embedding.
type ExprBase struct {
	NodeBase
	Typ  typesystem.Type
	Cast typesystem.Type
}

func (e *ExprBase) Type() typesystem.Type      { return e.Typ }
func (e *ExprBase) SetType(t typesystem.Type)  { e.Typ = t }
func (e *ExprBase) CastTo() typesystem.Type     { return e.Cast }
func (e *ExprBase) SetCastTo(t typesystem.Type) { e.Cast = t }

func (e *ExprBase) expressionNode() {}

// Reference is a fully-qualified dotted name plus its simple (last)
// component; references compare structurally by Path (spec §3).
type Reference struct {
	Path []string // e.g. ["a", "b", "G"]
	Name string   // simple name, last path element
	P    token.Position
}

func (r Reference) Pos() token.Position { return r.P }

// Equal compares two references by their dotted path, per spec §3:
// "References are structural: equal references compare by path."
func (r Reference) Equal(other Reference) bool {
	if len(r.Path) != len(other.Path) {
		return false
	}
	for i := range r.Path {
		if r.Path[i] != other.Path[i] {
			return false
		}
	}
	return true
}

func (r Reference) String() string {
	s := ""
	for i, p := range r.Path {
		if i > 0 {
			s += "/"
		}
		s += p
	}
	return s
}

// ---------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------

// Accessor is the syntactic access modifier on a declaration.
type Accessor int

const (
	AccPub Accessor = iota
	AccProt
	AccIntl
	AccPriv
)

// Package is the optional "mod a.b" header of a File.
type Package struct {
	NodeBase
	Path []string
}

// Usage is a "use" import, possibly aliased, possibly a grouped list
// ("use c::{D, E as F}" parses into one Usage per leaf reference).
type Usage struct {
	NodeBase
	Ref   Reference
	Alias string // empty if not aliased
}

// Parameter is a function/constructor formal parameter.
type Parameter struct {
	NodeBase
	Mut     bool
	Name    string
	TypeRef TypeRef
	Type    typesystem.Type // resolved by checker Pass A
}

// Field is a class (or companion) field declaration.
type Field struct {
	NodeBase
	Owner    *Class
	Accessor Accessor
	Mut      bool
	Comp     bool
	Name     string
	TypeRef  TypeRef
	Type     typesystem.Type
}

// Function is a class (or companion) method declaration.
type Function struct {
	NodeBase
	Owner         *Class
	Accessor      Accessor
	Mut           bool
	Comp          bool
	Name          string
	Params        []*Parameter
	ReturnTypeRef *TypeRef // nil means no declared return type (-> Unit)
	ReturnType    typesystem.Type
	Statements    []Statement
}

// Constructor is a class constructor ("new(...) { ... }").
type Constructor struct {
	NodeBase
	Owner      *Class
	ParentRef  *Reference   // reserved for future super-call support
	SuperArgs  []Expression // recorded but unchecked, per spec §9
	Accessor   Accessor
	Params     []*Parameter
	Statements []Statement
}

// Class is the single class declared by a File.
type Class struct {
	NodeBase
	Pkg          *Package
	Usages       []*Usage
	Accessor     Accessor
	Name         string
	Fields       []*Field
	Constructors []*Constructor
	Functions    []*Function
}

// File is the parser's top-level output: one compilation unit.
type File struct {
	NodeBase
	Path  string
	Class *Class
}

func (p *Package) Accept(v Visitor)     { v.VisitPackage(p) }
func (u *Usage) Accept(v Visitor)       { v.VisitUsage(u) }
func (p *Parameter) Accept(v Visitor)   { v.VisitParameter(p) }
func (f *Field) Accept(v Visitor)       { v.VisitField(f) }
func (f *Function) Accept(v Visitor)    { v.VisitFunction(f) }
func (c *Constructor) Accept(v Visitor) { v.VisitConstructor(c) }
func (c *Class) Accept(v Visitor)       { v.VisitClass(c) }
func (f *File) Accept(v Visitor)        { v.VisitFile(f) }

// ---------------------------------------------------------------------
// Type references (unresolved, syntactic)
// ---------------------------------------------------------------------

// TypeRef is the syntactic form of a type mention: a reference plus a
// bracket-suffix depth for array types ("Int[][]" -> Depth 2).
type TypeRef struct {
	Ref   Reference
	Depth int
}

func (t TypeRef) Pos() token.Position { return t.Ref.P }

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// StmtBase supplies the statementNode() marker for every Statement via
// embedding, mirroring ExprBase.
type StmtBase struct {
	NodeBase
}

func (StmtBase) statementNode() {}

// VariableDeclaration is "[mut] name := expr".
type VariableDeclaration struct {
	StmtBase
	Mut   bool
	Name  string
	Expr  Expression
	Index int // stack slot assigned by the checker; -1 until assigned
}

// ExpressionStatement wraps a bare expression used for its side effect.
type ExpressionStatement struct {
	StmtBase
	Expr Expression
}

// ReturnStatement is "return [expr]".
type ReturnStatement struct {
	StmtBase
	Expr       Expression // nil for a bare "return"
	ReturnType typesystem.Type
}

// IfStatement is "if cond then [else else]".
type IfStatement struct {
	StmtBase
	Cond Expression
	Then Statement
	Else Statement // nil if no else branch
}

// JForStatement is the C-style "for init; cond; post body" loop.
type JForStatement struct {
	StmtBase
	Init Statement  // nil if omitted
	Cond Expression // nil if omitted
	Post Statement  // nil if omitted
	Body Statement
}

// BlockStatement is "{ stmt* }".
type BlockStatement struct {
	StmtBase
	Statements []Statement
}

func (s *VariableDeclaration) Accept(v Visitor) { v.VisitVariableDeclaration(s) }
func (s *ExpressionStatement) Accept(v Visitor) { v.VisitExpressionStatement(s) }
func (s *ReturnStatement) Accept(v Visitor)     { v.VisitReturnStatement(s) }
func (s *IfStatement) Accept(v Visitor)         { v.VisitIfStatement(s) }
func (s *JForStatement) Accept(v Visitor)       { v.VisitJForStatement(s) }
func (s *BlockStatement) Accept(v Visitor)      { v.VisitBlockStatement(s) }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// IntegerLiteral is a whole-number literal; its fitted primitive is
// assigned during checking (spec §4.3 "Integer literals are typed by
// fit").
type IntegerLiteral struct {
	ExprBase
	Value int64
}

// FloatLiteral is a floating-point literal; Forced64 records whether the
// literal carried the 'D' suffix forcing F64 (else F32).
type FloatLiteral struct {
	ExprBase
	Value    float64
	Forced64 bool
}

// CharLiteral is a single-quoted character literal.
type CharLiteral struct {
	ExprBase
	Value rune
}

// StringLiteral is a double-quoted string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral is true/false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NullLiteral is the null literal.
type NullLiteral struct {
	ExprBase
}

// IdentifierCall is a bare name reference: a local variable, a field
// (optionally owner-qualified or chained off Previous), or — when later
// rewritten by the parser's chain logic — the head of a companion path.
type IdentifierCall struct {
	ExprBase
	OwnerRef *Reference // set for "Owner::name" companion field access
	Previous Expression // set for "previous.name" chained field access
	Name     string
	Index    int // variable stack slot, if resolved to a local variable
}

// FunctionCall is "name(args)", optionally owner- or chain-qualified.
type FunctionCall struct {
	ExprBase
	OwnerRef    *Reference
	Previous    Expression
	Name        string
	Args        []Expression
	InCompanion bool // true if the call site is inside a companion scope
	Signature   *typesystem.Signature
}

// ConstructorCall is "new QualifiedName(args)".
type ConstructorCall struct {
	ExprBase
	OwnerRef  Reference
	Args      []Expression
	Signature *typesystem.Signature
}

// IndexExpression is "previous[indexExpr]".
type IndexExpression struct {
	ExprBase
	Previous     Expression
	IndexExpr    Expression
	IsAssignedBy bool // set by the checker when this is an assignment target
}

// UnaryOp enumerates unary operators.
type UnaryOp string

const (
	UnaryPlus  UnaryOp = "+"
	UnaryMinus UnaryOp = "-"
	UnaryNot   UnaryOp = "!"
	UnaryBNot  UnaryOp = "~"
	UnaryIncr  UnaryOp = "++"
	UnaryDecr  UnaryOp = "--"
)

// UnaryExpression is a prefix or postfix unary operator application.
type UnaryExpression struct {
	ExprBase
	Op          UnaryOp
	Operand     Expression
	IsPostfix   bool
	RetainValue bool // whether the pre-update value must be preserved (postfix ++/--)
}

// BinaryOp enumerates binary operators.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpMod  BinaryOp = "%"
	OpLt   BinaryOp = "<"
	OpLte  BinaryOp = "<="
	OpGt   BinaryOp = ">"
	OpGte  BinaryOp = ">="
	OpEq   BinaryOp = "=="
	OpNeq  BinaryOp = "!="
	OpAnd  BinaryOp = "&&"
	OpOr   BinaryOp = "||"
	OpBOr  BinaryOp = "|"
	OpBXor BinaryOp = "^"
	OpBAnd BinaryOp = "&"
	OpShl  BinaryOp = "<<"
	OpShr  BinaryOp = ">>"
	OpUShr BinaryOp = ">>>"
)

// BinaryExpression is "left op right".
type BinaryExpression struct {
	ExprBase
	Left  Expression
	Op    BinaryOp
	Right Expression
}

// AssignmentOp enumerates assignment operators (only plain "=" per
// spec's grammar; kept as its own type for clarity/future compound ops).
type AssignmentOp string

const AssignPlain AssignmentOp = "="

// AssignmentExpression is "left = right".
type AssignmentExpression struct {
	ExprBase
	Left        Expression
	Op          AssignmentOp
	Right       Expression
	RetainValue bool // whether the assigned value is used (not a bare ExpressionStatement)
}

// ParenthesizedExpression is "(inner)".
type ParenthesizedExpression struct {
	ExprBase
	Inner Expression
}

// ArrayInitialization is an array literal, either typed
// ("T:[]{e1,e2}") or inferred (":{e1,e2}").
type ArrayInitialization struct {
	ExprBase
	InferTypeRef *TypeRef // nil when the element type is inferred from elements
	Elements     []Expression
}

// ArrayDeclaration is a sized array constructor: "T:[e1][e2]".
type ArrayDeclaration struct {
	ExprBase
	BaseTypeRef TypeRef
	Dimensions  []Expression // one expression per bracket pair, outermost first
}

func (e *IntegerLiteral) Accept(v Visitor)          { v.VisitIntegerLiteral(e) }
func (e *FloatLiteral) Accept(v Visitor)            { v.VisitFloatLiteral(e) }
func (e *CharLiteral) Accept(v Visitor)             { v.VisitCharLiteral(e) }
func (e *StringLiteral) Accept(v Visitor)           { v.VisitStringLiteral(e) }
func (e *BoolLiteral) Accept(v Visitor)             { v.VisitBoolLiteral(e) }
func (e *NullLiteral) Accept(v Visitor)             { v.VisitNullLiteral(e) }
func (e *IdentifierCall) Accept(v Visitor)          { v.VisitIdentifierCall(e) }
func (e *FunctionCall) Accept(v Visitor)            { v.VisitFunctionCall(e) }
func (e *ConstructorCall) Accept(v Visitor)         { v.VisitConstructorCall(e) }
func (e *IndexExpression) Accept(v Visitor)         { v.VisitIndexExpression(e) }
func (e *UnaryExpression) Accept(v Visitor)         { v.VisitUnaryExpression(e) }
func (e *BinaryExpression) Accept(v Visitor)        { v.VisitBinaryExpression(e) }
func (e *AssignmentExpression) Accept(v Visitor)    { v.VisitAssignmentExpression(e) }
func (e *ParenthesizedExpression) Accept(v Visitor) { v.VisitParenthesizedExpression(e) }
func (e *ArrayInitialization) Accept(v Visitor)     { v.VisitArrayInitialization(e) }
func (e *ArrayDeclaration) Accept(v Visitor)        { v.VisitArrayDeclaration(e) }

// ---------------------------------------------------------------------
// Visitor
// ---------------------------------------------------------------------

// Visitor is implemented by any AST walker — the checker's per-class
// walker being the only one in this module (spec §4.3's two-pass walk).
type Visitor interface {
	VisitFile(*File)
	VisitClass(*Class)
	VisitPackage(*Package)
	VisitUsage(*Usage)
	VisitParameter(*Parameter)
	VisitField(*Field)
	VisitFunction(*Function)
	VisitConstructor(*Constructor)

	VisitVariableDeclaration(*VariableDeclaration)
	VisitExpressionStatement(*ExpressionStatement)
	VisitReturnStatement(*ReturnStatement)
	VisitIfStatement(*IfStatement)
	VisitJForStatement(*JForStatement)
	VisitBlockStatement(*BlockStatement)

	VisitIntegerLiteral(*IntegerLiteral)
	VisitFloatLiteral(*FloatLiteral)
	VisitCharLiteral(*CharLiteral)
	VisitStringLiteral(*StringLiteral)
	VisitBoolLiteral(*BoolLiteral)
	VisitNullLiteral(*NullLiteral)
	VisitIdentifierCall(*IdentifierCall)
	VisitFunctionCall(*FunctionCall)
	VisitConstructorCall(*ConstructorCall)
	VisitIndexExpression(*IndexExpression)
	VisitUnaryExpression(*UnaryExpression)
	VisitBinaryExpression(*BinaryExpression)
	VisitAssignmentExpression(*AssignmentExpression)
	VisitParenthesizedExpression(*ParenthesizedExpression)
	VisitArrayInitialization(*ArrayInitialization)
	VisitArrayDeclaration(*ArrayDeclaration)
}
