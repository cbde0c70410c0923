// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tree provides a language-neutral syntax tree for the statements
// and expressions of method bodies.  Nodes live in an arena and are named
// by stable integer identifiers, so analyses can attach facts to nodes
// using plain maps or slices indexed by NodeID.
//
// A Tree is read-only once built.  It may be shared between goroutines.
package tree

import (
	"fmt"
	"strings"
)

// A NodeID identifies a node within its Tree.
type NodeID int32

// NoNode is the NodeID of a missing node (e.g., the parent of the root).
const NoNode NodeID = -1

// A Kind classifies a syntax node.
type Kind int

const (
	Invalid Kind = iota

	File     // compilation unit
	Method   // method or function declaration
	TypeDecl // type (class) declaration
	Lambda   // anonymous function

	// Statements
	Block
	ExprStmt
	LocalDecl  // local variable declaration statement
	Declarator // one declared variable, optionally initialized
	Assign
	IncDec
	Return
	Break
	Continue
	Goto
	Fallthrough
	If
	Loop    // for, while, range
	DoWhile // body executes before the test
	Labeled
	Switch
	Case
	Try
	Catch
	Finally
	Throw
	Stmt // any other statement

	// Expressions
	Name
	Call
	Expr // any other expression
)

var kindNames = [...]string{
	Invalid:     "Invalid",
	File:        "File",
	Method:      "Method",
	TypeDecl:    "TypeDecl",
	Lambda:      "Lambda",
	Block:       "Block",
	ExprStmt:    "ExprStmt",
	LocalDecl:   "LocalDecl",
	Declarator:  "Declarator",
	Assign:      "Assign",
	IncDec:      "IncDec",
	Return:      "Return",
	Break:       "Break",
	Continue:    "Continue",
	Goto:        "Goto",
	Fallthrough: "Fallthrough",
	If:          "If",
	Loop:        "Loop",
	DoWhile:     "DoWhile",
	Labeled:     "Labeled",
	Switch:      "Switch",
	Case:        "Case",
	Try:         "Try",
	Catch:       "Catch",
	Finally:     "Finally",
	Throw:       "Throw",
	Stmt:        "Stmt",
	Name:        "Name",
	Call:        "Call",
	Expr:        "Expr",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsStatement returns true iff nodes of this kind are statements (or
// statement-like parts of statements, such as catch clauses).
func (k Kind) IsStatement() bool {
	return k >= Block && k <= Stmt
}

// IsExpression returns true iff nodes of this kind are expressions.
func (k Kind) IsExpression() bool {
	return k >= Name && k <= Expr || k == Lambda
}

// IsBranch returns true iff nodes of this kind transfer control to a label
// or an enclosing statement.
func (k Kind) IsBranch() bool {
	switch k {
	case Break, Continue, Goto, Fallthrough:
		return true
	}
	return false
}

// A Role describes the position a node occupies within its parent.
type Role int

const (
	NoRole Role = iota
	Init        // for-init, if-init, switch-init
	Cond        // loop or if condition, switch tag
	Then
	Else
	Post  // for-post
	Body  // loop, method, lambda, catch body
	LHS   // assignment target
	RHS   // assigned value
	Value // declarator initializer
)

// A Node is one element of a Tree.
type Node struct {
	ID       NodeID
	Kind     Kind
	Role     Role
	Start    int // offset of the first byte
	End      int // offset just past the last byte
	Parent   NodeID
	Children []NodeID

	Label       string  // Labeled, Break, Continue, Goto
	Binding     Binding // Name, Declarator
	Compound    bool    // Assign: x op= y
	Initialized bool    // Declarator: a value is stored at the declaration
	HasValue    bool    // Return: returns a value
	Void        bool    // Method, Lambda: no result
	Default     bool    // Case: the default case
	Types       []Type  // Call, Throw: thrown types; Catch: caught types
	Text        string  // optional display text (e.g., a method name)
}

// A Tree is an arena of Nodes.  Node IDs are dense, so facts about nodes
// may be stored in slices of length Len().
type Tree struct {
	nodes []Node
	Root  NodeID
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given ID.  The result must not be
// modified.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Parent returns the parent of the given node, or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].Parent
}

// Child returns the first child of id with the given role, or NoNode.
func (t *Tree) Child(id NodeID, role Role) NodeID {
	for _, c := range t.nodes[id].Children {
		if t.nodes[c].Role == role {
			return c
		}
	}
	return NoNode
}

// Ancestor returns the nearest proper ancestor of id whose kind is one of
// the given kinds, or NoNode.
func (t *Tree) Ancestor(id NodeID, kinds ...Kind) NodeID {
	for p := t.nodes[id].Parent; p != NoNode; p = t.nodes[p].Parent {
		for _, k := range kinds {
			if t.nodes[p].Kind == k {
				return p
			}
		}
	}
	return NoNode
}

// Inspect traverses the subtree rooted at id in depth-first order, calling
// f for each node.  If f returns false, the children of that node are not
// visited.
func (t *Tree) Inspect(id NodeID, f func(*Node) bool) {
	n := &t.nodes[id]
	if !f(n) {
		return
	}
	for _, c := range n.Children {
		t.Inspect(c, f)
	}
}

// Add appends a node to the arena and links it to its parent.  The node's
// ID and Children are assigned by Add.  It is used by front ends while
// constructing a tree in source order.
func (t *Tree) Add(parent NodeID, n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.ID = id
	n.Parent = parent
	n.Children = nil
	t.nodes = append(t.nodes, n)
	if parent != NoNode {
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}
	return id
}

// SetEnd updates the end offset of a node under construction.
func (t *Tree) SetEnd(id NodeID, end int) {
	t.nodes[id].End = end
}

// New returns an empty tree whose root will be the first node added.
func New() *Tree {
	return &Tree{Root: 0}
}

// String returns an indented outline of the tree, one node per line.
func (t *Tree) String() string {
	var b strings.Builder
	if len(t.nodes) == 0 {
		return ""
	}
	var dump func(id NodeID, depth int)
	dump = func(id NodeID, depth int) {
		n := &t.nodes[id]
		fmt.Fprintf(&b, "%s%s [%d,%d)", strings.Repeat("  ", depth), n.Kind, n.Start, n.End)
		if n.Label != "" {
			fmt.Fprintf(&b, " %s", n.Label)
		}
		if n.Binding != nil {
			fmt.Fprintf(&b, " %s", n.Binding.Name())
		}
		b.WriteByte('\n')
		for _, c := range n.Children {
			dump(c, depth+1)
		}
	}
	dump(t.Root, 0)
	return b.String()
}
