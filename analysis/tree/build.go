// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines Spec, a declarative description of a tree, and Build,
// which lays a Spec out into an arena.  Build assigns every node an opening
// and a closing byte, so the offsets of a built tree are synthetic but
// properly nested; a selection is described by the nodes it spans.

package tree

import "github.com/godoctor/extractcheck/text"

// A Spec describes a node and its children prior to layout.
type Spec struct {
	Node
	Children []*Spec

	built bool
	id    NodeID
	start int
	end   int
}

// ID returns the NodeID assigned to s by Build.  It panics if s has not
// been built.
func (s *Spec) ID() NodeID {
	if !s.built {
		panic("tree: Spec has not been built")
	}
	return s.id
}

// Extent returns the region occupied by s in the built tree.
func (s *Spec) Extent() text.Extent {
	return text.NewExtent(s.start, s.end)
}

// Select returns the extent running from the start of first to the end of
// last.
func Select(first, last *Spec) text.Extent {
	return text.NewExtent(first.start, last.end)
}

// Build lays out root and its descendants into a new Tree.  Declared Vars
// receive the offset of their declarator.
func Build(root *Spec) *Tree {
	t := New()
	offset := 0
	var lay func(parent NodeID, s *Spec)
	lay = func(parent NodeID, s *Spec) {
		s.start = offset
		offset++
		n := s.Node
		n.Start = s.start
		s.id = t.Add(parent, n)
		s.built = true
		if s.Kind == Declarator {
			if v, ok := s.Binding.(*Var); ok {
				v.pos = s.start
			}
		}
		for _, c := range s.Children {
			lay(s.id, c)
		}
		offset++
		s.end = offset
		t.SetEnd(s.id, offset)
	}
	lay(NoNode, root)
	return t
}

func spec(kind Kind, children ...*Spec) *Spec {
	s := &Spec{Node: Node{Kind: kind}}
	for _, c := range children {
		if c != nil {
			s.Children = append(s.Children, c)
		}
	}
	return s
}

func withRole(role Role, s *Spec) *Spec {
	if s != nil {
		s.Role = role
	}
	return s
}

// FileOf returns a compilation unit containing the given declarations.
func FileOf(decls ...*Spec) *Spec {
	return spec(File, decls...)
}

// TypeOf returns a type declaration containing the given members.
func TypeOf(name string, members ...*Spec) *Spec {
	s := spec(TypeDecl, members...)
	s.Text = name
	return s
}

// MethodOf returns a method declaration with the given parameters and body
// statements.
func MethodOf(name string, void bool, params []*Var, body ...*Spec) *Spec {
	var children []*Spec
	for _, p := range params {
		d := spec(Declarator)
		d.Binding = p
		d.Initialized = true
		children = append(children, d)
	}
	children = append(children, withRole(Body, BlockOf(body...)))
	s := spec(Method, children...)
	s.Text = name
	s.Void = void
	return s
}

// LambdaOf returns an anonymous function with the given body statements.
func LambdaOf(void bool, body ...*Spec) *Spec {
	s := spec(Lambda, withRole(Body, BlockOf(body...)))
	s.Void = void
	return s
}

// BlockOf returns a block of statements.
func BlockOf(stmts ...*Spec) *Spec {
	return spec(Block, stmts...)
}

// Eval returns an expression statement.
func Eval(expr *Spec) *Spec {
	return spec(ExprStmt, expr)
}

// Declare returns a local variable declaration of v, initialized by init
// unless init is nil.
func Declare(v *Var, init *Spec) *Spec {
	d := spec(Declarator, withRole(Value, init))
	d.Binding = v
	d.Initialized = init != nil
	return spec(LocalDecl, d)
}

// Set returns the statement v = rhs.
func Set(v *Var, rhs *Spec) *Spec {
	return Eval(spec(Assign, withRole(LHS, Ref(v)), withRole(RHS, rhs)))
}

// Update returns the statement v op= rhs.
func Update(v *Var, rhs *Spec) *Spec {
	a := spec(Assign, withRole(LHS, Ref(v)), withRole(RHS, rhs))
	a.Compound = true
	return Eval(a)
}

// Incr returns the statement v++.
func Incr(v *Var) *Spec {
	return Eval(spec(IncDec, Ref(v)))
}

// Ref returns a name referring to v.
func Ref(v Binding) *Spec {
	s := spec(Name)
	s.Binding = v
	return s
}

// Invoke returns a call of the named operation, which is declared to throw
// the given types.
func Invoke(name string, throws []Type, args ...*Spec) *Spec {
	s := spec(Call, args...)
	s.Text = name
	s.Types = throws
	return s
}

// Lit returns a literal expression.
func Lit() *Spec {
	return spec(Expr)
}

// Op returns a compound expression over the given operands.
func Op(operands ...*Spec) *Spec {
	return spec(Expr, operands...)
}

// Ret returns a return statement; value may be nil.
func Ret(value *Spec) *Spec {
	s := spec(Return, value)
	s.HasValue = value != nil
	return s
}

// BreakTo returns a break statement; label may be empty.
func BreakTo(label string) *Spec {
	s := spec(Break)
	s.Label = label
	return s
}

// ContinueTo returns a continue statement; label may be empty.
func ContinueTo(label string) *Spec {
	s := spec(Continue)
	s.Label = label
	return s
}

// GotoLabel returns a goto statement.
func GotoLabel(label string) *Spec {
	s := spec(Goto)
	s.Label = label
	return s
}

// IfOf returns an if statement; els may be nil.
func IfOf(cond, then, els *Spec) *Spec {
	return spec(If, withRole(Cond, cond), withRole(Then, then), withRole(Else, els))
}

// While returns a loop that tests cond before each iteration.
func While(cond, body *Spec) *Spec {
	return spec(Loop, withRole(Cond, cond), withRole(Body, body))
}

// ForOf returns a three-clause loop; any clause may be nil.
func ForOf(init, cond, post, body *Spec) *Spec {
	return spec(Loop, withRole(Init, init), withRole(Cond, cond),
		withRole(Post, post), withRole(Body, body))
}

// DoWhileOf returns a loop that tests cond after each iteration.
func DoWhileOf(body, cond *Spec) *Spec {
	return spec(DoWhile, withRole(Body, body), withRole(Cond, cond))
}

// LabeledOf returns stmt labeled with label.
func LabeledOf(label string, stmt *Spec) *Spec {
	s := spec(Labeled, withRole(Body, stmt))
	s.Label = label
	return s
}

// SwitchOf returns a switch statement over tag.
func SwitchOf(tag *Spec, cases ...*Spec) *Spec {
	return spec(Switch, append([]*Spec{withRole(Cond, tag)}, cases...)...)
}

// CaseOf returns a case clause matching value.
func CaseOf(value *Spec, stmts ...*Spec) *Spec {
	return spec(Case, append([]*Spec{withRole(Cond, value)}, stmts...)...)
}

// DefaultOf returns the default clause of a switch.
func DefaultOf(stmts ...*Spec) *Spec {
	s := spec(Case, stmts...)
	s.Default = true
	return s
}

// TryOf returns a try statement; finally may be nil.
func TryOf(body *Spec, catches []*Spec, finally *Spec) *Spec {
	children := []*Spec{withRole(Body, body)}
	children = append(children, catches...)
	if finally != nil {
		children = append(children, spec(Finally, finally))
	}
	return spec(Try, children...)
}

// CatchOf returns a catch clause declaring param, handling the given types.
func CatchOf(param *Var, types []Type, body *Spec) *Spec {
	d := spec(Declarator)
	d.Binding = param
	d.Initialized = true
	s := spec(Catch, d, withRole(Body, body))
	s.Types = types
	return s
}

// ThrowOf returns a throw statement raising an exception of type typ.
func ThrowOf(typ Type, expr *Spec) *Spec {
	s := spec(Throw, expr)
	if typ != nil {
		s.Types = []Type{typ}
	}
	return s
}

// Other returns an uninterpreted statement with the given children.
func Other(children ...*Spec) *Spec {
	return spec(Stmt, children...)
}
