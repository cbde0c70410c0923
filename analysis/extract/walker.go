// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file contains the statement analyzer, which walks the tree once,
// classifies every node of the enclosing method as before, inside, or after
// the selection, and emits the events consumed by the other analyzers.

package extract

import (
	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/text"
)

type stepAction int

const (
	continueStep stepAction = iota
	skipStep
	abortStep
)

// A Step tells the traversal how to proceed after visiting a node.
type Step struct {
	action stepAction
	reason string
}

var (
	// Continue visits the children of the current node.
	Continue = Step{action: continueStep}
	// SkipChildren does not visit the children of the current node.
	SkipChildren = Step{action: skipStep}
)

// Abort stops the traversal.  Ancestors of the current node are not left.
func Abort(reason string) Step {
	return Step{action: abortStep, reason: reason}
}

// Aborted returns true iff this step stops the traversal.
func (s Step) Aborted() bool { return s.action == abortStep }

// Reason returns the reason given to Abort.
func (s Step) Reason() string { return s.reason }

// Walk traverses the subtree rooted at id, calling enter before and leave
// after the children of each node.  leave is not called for a node whose
// enter returned SkipChildren or Abort.  The step that aborted the
// traversal, if any, is returned.
func Walk(t *tree.Tree, id tree.NodeID, enter func(*tree.Node) Step, leave func(*tree.Node)) Step {
	n := t.Node(id)
	step := enter(n)
	switch step.action {
	case abortStep:
		return step
	case skipStep:
		return Continue
	}
	for _, c := range n.Children {
		if s := Walk(t, c, enter, leave); s.Aborted() {
			return s
		}
	}
	leave(n)
	return Continue
}

// statementAnalyzer classifies nodes relative to the selection.  It owns
// the traversal and forwards events to emit.
type statementAnalyzer struct {
	tree *tree.Tree
	sel  text.Extent
	emit func(Event)

	phase  Phase
	phases []Phase // indexed by NodeID
	cursor int     // rightmost end offset of a selected node
	nested int     // depth of lambdas and types inside the enclosing method
	done   bool

	enclosing          tree.NodeID
	first              tree.NodeID
	parentOfFirst      tree.NodeID
	last               tree.NodeID
	lastWithSameParent tree.NodeID
	topLevel           []tree.NodeID

	diags diagnostics
}

func newStatementAnalyzer(t *tree.Tree, sel text.Extent, emit func(Event)) *statementAnalyzer {
	return &statementAnalyzer{
		tree:               t,
		sel:                sel,
		emit:               emit,
		phases:             make([]Phase, t.Len()),
		cursor:             -1,
		enclosing:          tree.NoNode,
		first:              tree.NoNode,
		parentOfFirst:      tree.NoNode,
		last:               tree.NoNode,
		lastWithSameParent: tree.NoNode,
	}
}

func (s *statementAnalyzer) run() {
	if s.tree.Len() == 0 {
		return
	}
	Walk(s.tree, s.tree.Root, s.enter, s.leave)
}

func isScope(k tree.Kind) bool {
	return k == tree.Method || k == tree.Lambda || k == tree.TypeDecl
}

func (s *statementAnalyzer) enter(n *tree.Node) Step {
	if s.done {
		return Abort("enclosing method complete")
	}

	if n.Kind == tree.Method || n.Kind == tree.Lambda {
		if body := s.tree.Child(n.ID, tree.Body); body != tree.NoNode {
			b := s.tree.Node(body)
			if s.sel.Encloses(b.Start, b.End) {
				s.startMethod(n.ID)
				return Continue
			}
		}
	}

	if s.enclosing == tree.NoNode {
		switch n.Kind {
		case tree.File:
			return Continue
		case tree.TypeDecl:
			if s.sel.CoveredBy(n.Start, n.End) {
				return Continue
			}
		}
		return SkipChildren
	}

	s.classify(n)
	s.phases[n.ID] = s.phase
	s.emit(Event{Kind: EnterNode, Phase: s.phase, Nested: s.nested > 0, Node: n.ID})
	if isScope(n.Kind) {
		s.nested++
	}

	switch n.Kind {
	case tree.Name:
		s.enterName(n)
	case tree.Catch:
		s.emit(Event{Kind: CatchClause, Phase: s.phase, Nested: s.nested > 0, Node: n.ID, Types: n.Types})
	}
	return Continue
}

// startMethod makes id the enclosing method.  A method found inside a
// method that was previously thought to enclose the selection is nearer to
// it, so all selection state is reset.
func (s *statementAnalyzer) startMethod(id tree.NodeID) {
	s.enclosing = id
	s.phase = Before
	s.nested = 0
	s.first = tree.NoNode
	s.parentOfFirst = tree.NoNode
	s.last = tree.NoNode
	s.lastWithSameParent = tree.NoNode
	s.topLevel = nil
	s.diags = nil
}

// classify advances the phase state machine for a node being entered.
func (s *statementAnalyzer) classify(n *tree.Node) {
	switch s.phase {
	case Before:
		if n.Start < n.End && s.sel.Covers(n.Start, n.End) {
			s.phase = Selected
			s.first = n.ID
			s.parentOfFirst = n.Parent
			s.last = n.ID
			s.lastWithSameParent = n.ID
			s.topLevel = append(s.topLevel, n.ID)
		}
	case Selected:
		if n.Start >= s.sel.OffsetPastEnd() {
			s.phase = After
		} else if s.sel.EndsIn(n.Start, n.End) {
			s.diags.add(EndsMidStatement, n.ID, text.NewExtent(n.Start, n.End),
				"The selection ends in the middle of a %s", describe(n.Kind))
			s.phase = After
		} else if s.isTopLevel(n) {
			s.last = n.ID
			s.topLevel = append(s.topLevel, n.ID)
			if n.Parent == s.parentOfFirst {
				s.lastWithSameParent = n.ID
			} else if !s.diags.has(MixedParents) {
				s.diags.add(MixedParents, n.ID, text.NewExtent(n.Start, n.End),
					"The selected statements do not belong to the same block")
			}
		}
	}
}

// isTopLevel returns true iff n is selected but its parent is not.
func (s *statementAnalyzer) isTopLevel(n *tree.Node) bool {
	if n.Parent == tree.NoNode {
		return true
	}
	p := s.tree.Node(n.Parent)
	return !s.sel.Covers(p.Start, p.End)
}

func (s *statementAnalyzer) access(n *tree.Node, mode AccessMode, phase Phase) {
	if n.Binding == nil || !n.Binding.Kind().IsVariable() {
		return
	}
	s.emit(Event{
		Kind:   NameRef,
		Phase:  phase,
		Nested: s.nested > 0,
		Node:   n.ID,
		Access: LocalAccess{Binding: n.Binding, Mode: mode},
	})
}

// enterName emits the reads performed by a name.  A plain assignment target
// is only written, and that write is emitted when the assignment is left so
// that reads on the right-hand side come first.
func (s *statementAnalyzer) enterName(n *tree.Node) {
	if n.Parent != tree.NoNode {
		p := s.tree.Node(n.Parent)
		switch {
		case p.Kind == tree.Assign && n.Role == tree.LHS:
			if p.Compound {
				s.access(n, Read, s.phase)
			}
			return
		case p.Kind == tree.IncDec:
			s.access(n, Read, s.phase)
			s.access(n, Write, s.phase)
			return
		}
	}
	s.access(n, Read, s.phase)
}

func (s *statementAnalyzer) leave(n *tree.Node) {
	if n.ID == s.enclosing {
		s.done = true
		return
	}
	if s.enclosing == tree.NoNode {
		return
	}
	phase := s.phases[n.ID]

	switch n.Kind {
	case tree.Assign:
		for _, c := range n.Children {
			if cn := s.tree.Node(c); cn.Role == tree.LHS && cn.Kind == tree.Name {
				s.access(cn, Write, s.phases[c])
			}
		}
	case tree.Declarator:
		if n.Initialized {
			s.access(n, Write, phase)
		}
	case tree.Call, tree.Throw:
		if len(n.Types) > 0 {
			s.emit(Event{Kind: CallSite, Phase: phase, Nested: s.nested > 0, Node: n.ID, Types: n.Types})
		}
	}

	if isScope(n.Kind) {
		s.nested--
	}
	s.emit(Event{Kind: LeaveNode, Phase: phase, Nested: s.nested > 0, Node: n.ID})
	if phase == Selected && n.End > s.cursor {
		s.cursor = n.End
	}
}

// validate performs the checks that require the whole traversal.
func (s *statementAnalyzer) validate(cls text.Classifier) {
	if s.enclosing == tree.NoNode || s.first == tree.NoNode {
		s.diags.add(NoEnclosingMethod, tree.NoNode, s.sel,
			"The selection does not contain any statements of a method body")
		return
	}
	if len(s.topLevel) == 1 {
		if n := s.tree.Node(s.topLevel[0]); n.Kind == tree.Return {
			s.diags.add(SingleReturnNotExtractable, n.ID, text.NewExtent(n.Start, n.End),
				"A single return statement cannot be extracted")
		}
	}

	first := s.tree.Node(s.first)
	if !cls.IsBoundary(s.sel.Offset) || !cls.OnlyTrivia(s.sel.Offset, first.Start) {
		s.diags.add(InvalidBoundary, s.first, text.NewExtent(s.sel.Offset, first.Start),
			"The beginning of the selection is not a valid statement boundary")
	}
	end := s.sel.OffsetPastEnd()
	if !s.diags.has(EndsMidStatement) && s.cursor >= 0 && s.cursor <= end &&
		(!cls.IsBoundary(end) || !cls.OnlyTrivia(s.cursor, end)) {
		s.diags.add(InvalidBoundary, s.last, text.NewExtent(s.cursor, end),
			"The end of the selection is not a valid statement boundary")
	}
}

// isExpressionSelected returns true iff the selection is exactly one
// self-contained expression.
func (s *statementAnalyzer) isExpressionSelected() bool {
	if len(s.topLevel) != 1 {
		return false
	}
	n := s.tree.Node(s.topLevel[0])
	return n.Kind.IsExpression() && n.Role != tree.LHS
}

func describe(k tree.Kind) string {
	switch {
	case k.IsStatement():
		return "statement"
	case k.IsExpression():
		return "expression"
	}
	return "declaration"
}
