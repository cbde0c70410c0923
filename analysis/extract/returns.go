// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file contains the return analyzer, which builds a small control flow
// tree of the selected statements and computes whether every, some, or no
// path through the selection returns, and which branch targets remain
// unresolved within the selection.

package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/godoctor/extractcheck/analysis/tree"
)

// A ReturnMode describes how control leaves a fragment of code.
type ReturnMode int

const (
	NoReturn   ReturnMode = iota // every path completes normally
	SomeReturn                   // some, but not all, paths return
	AllReturn                    // every path returns
	Throws                       // every path raises; neutral when merged
)

func (m ReturnMode) String() string {
	switch m {
	case NoReturn:
		return "NO_RETURN"
	case SomeReturn:
		return "SOME_RETURN"
	case AllReturn:
		return "ALL_RETURN"
	case Throws:
		return "THROW"
	}
	return fmt.Sprintf("ReturnMode(%d)", int(m))
}

// A BranchKind identifies the statement that transfers control.
type BranchKind int

const (
	BreakBranch BranchKind = iota
	ContinueBranch
	GotoBranch
	FallthroughBranch
)

var branchKinds = map[tree.Kind]BranchKind{
	tree.Break:       BreakBranch,
	tree.Continue:    ContinueBranch,
	tree.Goto:        GotoBranch,
	tree.Fallthrough: FallthroughBranch,
}

// A BranchTarget is a jump that has not been matched to its target.  An
// empty Label denotes an unlabeled break or continue.
type BranchTarget struct {
	Kind  BranchKind
	Label string
}

func (b BranchTarget) String() string {
	var kw string
	switch b.Kind {
	case BreakBranch:
		kw = "break"
	case ContinueBranch:
		kw = "continue"
	case GotoBranch:
		kw = "goto"
	case FallthroughBranch:
		kw = "fallthrough"
	}
	if b.Label == "" {
		return kw
	}
	return kw + " " + b.Label
}

// A FlowInfo summarizes the control flow of a fragment.
type FlowInfo struct {
	Mode ReturnMode
	Open map[BranchTarget]struct{}
}

// Extractable returns true iff a fragment with this flow can be replaced by
// a single call: either all or no paths return, and no jump leaves it.
func (f FlowInfo) Extractable() bool {
	return f.Mode != SomeReturn && len(f.Open) == 0
}

// OpenBranches returns the unresolved branch targets in a stable order.
func (f FlowInfo) OpenBranches() []BranchTarget {
	result := make([]BranchTarget, 0, len(f.Open))
	for b := range f.Open {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Kind != result[j].Kind {
			return result[i].Kind < result[j].Kind
		}
		return result[i].Label < result[j].Label
	})
	return result
}

func (f FlowInfo) String() string {
	var open []string
	for _, b := range f.OpenBranches() {
		open = append(open, b.String())
	}
	return fmt.Sprintf("%s {%s}", f.Mode, strings.Join(open, ", "))
}

func openSet(targets ...BranchTarget) map[BranchTarget]struct{} {
	m := make(map[BranchTarget]struct{}, len(targets))
	for _, t := range targets {
		m[t] = struct{}{}
	}
	return m
}

// merge combines the flows of two alternative (or consecutive) fragments.
func merge(a, b FlowInfo) FlowInfo {
	open := openSet()
	for t := range a.Open {
		open[t] = struct{}{}
	}
	for t := range b.Open {
		open[t] = struct{}{}
	}
	mode := a.Mode
	switch {
	case a.Mode == Throws:
		mode = b.Mode
	case b.Mode == Throws:
		mode = a.Mode
	case a.Mode != b.Mode:
		mode = SomeReturn
	}
	return FlowInfo{Mode: mode, Open: open}
}

// demote weakens a guarantee that holds only if a fragment is executed.
func demote(m ReturnMode) ReturnMode {
	switch m {
	case AllReturn:
		return SomeReturn
	case Throws:
		return NoReturn
	}
	return m
}

// resolve removes the given targets from the open set of f, returning the
// new flow and whether any target was removed.
func resolve(f FlowInfo, targets ...BranchTarget) (FlowInfo, bool) {
	open := openSet()
	removed := false
	for t := range f.Open {
		open[t] = struct{}{}
	}
	for _, t := range targets {
		if _, ok := open[t]; ok {
			delete(open, t)
			removed = true
		}
	}
	return FlowInfo{Mode: f.Mode, Open: open}, removed
}

// A flowNode is a node of the control flow tree: one selected statement.
type flowNode struct {
	id       tree.NodeID
	children []*flowNode
	flow     FlowInfo
}

func (f *flowNode) child(t *tree.Tree, pred func(*tree.Node) bool) *flowNode {
	for _, c := range f.children {
		if pred(t.Node(c.id)) {
			return c
		}
	}
	return nil
}

func withRole(role tree.Role) func(*tree.Node) bool {
	return func(n *tree.Node) bool { return n.Role == role }
}

func withKind(kind tree.Kind) func(*tree.Node) bool {
	return func(n *tree.Node) bool { return n.Kind == kind }
}

// returnAnalyzer consumes the events of selected, non-nested statements.
type returnAnalyzer struct {
	tree  *tree.Tree
	stack []*flowNode
	roots []*flowNode

	labels   map[string]bool // labels declared inside the selection
	incoming map[string]bool // goto targets outside the selection
}

func newReturnAnalyzer(t *tree.Tree) *returnAnalyzer {
	return &returnAnalyzer{
		tree:     t,
		labels:   make(map[string]bool),
		incoming: make(map[string]bool),
	}
}

func (a *returnAnalyzer) Reduce(e Event) {
	if e.Nested || (e.Kind != EnterNode && e.Kind != LeaveNode) {
		return
	}
	n := a.tree.Node(e.Node)
	if !n.Kind.IsStatement() {
		return
	}
	if e.Phase != Selected {
		if e.Kind == EnterNode && n.Kind == tree.Goto {
			a.incoming[n.Label] = true
		}
		return
	}

	switch e.Kind {
	case EnterNode:
		if n.Kind == tree.Labeled {
			a.labels[n.Label] = true
		}
		a.stack = append(a.stack, &flowNode{id: n.ID})
	case LeaveNode:
		if len(a.stack) == 0 {
			return
		}
		top := a.stack[len(a.stack)-1]
		a.stack = a.stack[:len(a.stack)-1]
		top.flow = a.compute(top)
		if len(a.stack) == 0 {
			a.roots = append(a.roots, top)
		} else {
			parent := a.stack[len(a.stack)-1]
			parent.children = append(parent.children, top)
		}
	}
}

// label returns the label of the statement n, which is the label of its
// parent if the parent is a labeled statement.
func (a *returnAnalyzer) label(n *tree.Node) string {
	if n.Parent != tree.NoNode {
		if p := a.tree.Node(n.Parent); p.Kind == tree.Labeled {
			return p.Label
		}
	}
	return ""
}

func (a *returnAnalyzer) compute(f *flowNode) FlowInfo {
	n := a.tree.Node(f.id)
	if n.Kind.IsBranch() {
		return FlowInfo{Mode: NoReturn, Open: openSet(BranchTarget{branchKinds[n.Kind], n.Label})}
	}
	switch n.Kind {
	case tree.Return:
		return FlowInfo{Mode: AllReturn, Open: openSet()}
	case tree.Throw:
		return FlowInfo{Mode: Throws, Open: openSet()}
	case tree.Block, tree.Case, tree.Finally:
		return sequence(f.children)
	case tree.Catch:
		if body := f.child(a.tree, withRole(tree.Body)); body != nil {
			return body.flow
		}
		return FlowInfo{Mode: NoReturn, Open: openSet()}
	case tree.If:
		return a.ifFlow(f)
	case tree.Loop, tree.DoWhile:
		return a.loopFlow(f, n)
	case tree.Labeled:
		flow := sequence(f.children)
		flow, _ = resolve(flow, BranchTarget{BreakBranch, n.Label})
		return flow
	case tree.Switch:
		return a.switchFlow(f, n)
	case tree.Try:
		return a.tryFlow(f)
	}
	return fold(f.children)
}

// fold merges alternative flows.
func fold(children []*flowNode) FlowInfo {
	if len(children) == 0 {
		return FlowInfo{Mode: NoReturn, Open: openSet()}
	}
	acc := children[0].flow
	for _, c := range children[1:] {
		acc = merge(acc, c.flow)
	}
	return acc
}

// sequence merges the flows of consecutive statements.  A sequence whose
// last statement always returns (or raises) and which leaves no jump open
// is itself a guaranteed return.
func sequence(children []*flowNode) FlowInfo {
	acc := fold(children)
	if len(children) == 0 || len(acc.Open) > 0 {
		return acc
	}
	switch last := children[len(children)-1].flow.Mode; {
	case last == AllReturn:
		acc.Mode = AllReturn
	case last == Throws && (acc.Mode == SomeReturn || acc.Mode == AllReturn):
		acc.Mode = AllReturn
	case last == Throws:
		acc.Mode = Throws
	}
	return acc
}

func (a *returnAnalyzer) ifFlow(f *flowNode) FlowInfo {
	then := f.child(a.tree, withRole(tree.Then))
	els := f.child(a.tree, withRole(tree.Else))
	switch {
	case then != nil && els != nil:
		return merge(then.flow, els.flow)
	case then != nil:
		flow := merge(then.flow, FlowInfo{Mode: Throws})
		flow.Mode = demote(flow.Mode)
		return flow
	case els != nil:
		flow := merge(els.flow, FlowInfo{Mode: Throws})
		flow.Mode = demote(flow.Mode)
		return flow
	}
	return FlowInfo{Mode: NoReturn, Open: openSet()}
}

func (a *returnAnalyzer) loopFlow(f *flowNode, n *tree.Node) FlowInfo {
	flow := FlowInfo{Mode: NoReturn, Open: openSet()}
	if body := f.child(a.tree, withRole(tree.Body)); body != nil {
		flow = body.flow
	}
	targets := []BranchTarget{{BreakBranch, ""}, {ContinueBranch, ""}}
	if label := a.label(n); label != "" {
		targets = append(targets, BranchTarget{BreakBranch, label}, BranchTarget{ContinueBranch, label})
	}
	flow, resolved := resolve(flow, targets...)

	// The body of a do-while loop, or of a loop without a condition,
	// always runs; its outcome carries over unless a jump to the loop
	// can skip it.
	runsBody := n.Kind == tree.DoWhile || a.tree.Child(n.ID, tree.Cond) == tree.NoNode
	if !runsBody || resolved {
		flow.Mode = demote(flow.Mode)
	}
	return flow
}

func (a *returnAnalyzer) switchFlow(f *flowNode, n *tree.Node) FlowInfo {
	var cases []*flowNode
	hasDefault := false
	for _, c := range f.children {
		cn := a.tree.Node(c.id)
		if cn.Kind == tree.Case {
			cases = append(cases, c)
			if cn.Default {
				hasDefault = true
			}
		}
	}
	flow := fold(cases)
	targets := []BranchTarget{{BreakBranch, ""}, {FallthroughBranch, ""}}
	if label := a.label(n); label != "" {
		targets = append(targets, BranchTarget{BreakBranch, label})
	}
	flow, _ = resolve(flow, targets...)
	if !hasDefault || len(flow.Open) > 0 {
		flow.Mode = demote(flow.Mode)
	}
	return flow
}

func (a *returnAnalyzer) tryFlow(f *flowNode) FlowInfo {
	var alternatives []*flowNode
	var finally *flowNode
	for _, c := range f.children {
		switch cn := a.tree.Node(c.id); {
		case cn.Kind == tree.Finally:
			finally = c
		case cn.Role == tree.Body, cn.Kind == tree.Catch:
			alternatives = append(alternatives, c)
		}
	}
	if finally != nil && (finally.flow.Mode == AllReturn || finally.flow.Mode == Throws) {
		return finally.flow
	}
	flow := fold(alternatives)
	if finally != nil {
		flow = FlowInfo{Mode: flow.Mode, Open: merge(flow, finally.flow).Open}
	}
	return flow
}

// result returns the flow of the whole selection.  Gotos whose labels are
// declared inside the selection are resolved here; a goto from outside the
// selection to a label inside it is reported as an open branch.
func (a *returnAnalyzer) result() FlowInfo {
	flow := sequence(a.roots)
	var targets []BranchTarget
	for label := range a.labels {
		targets = append(targets, BranchTarget{GotoBranch, label})
	}
	flow, _ = resolve(flow, targets...)
	for label := range a.incoming {
		if a.labels[label] {
			flow.Open[BranchTarget{GotoBranch, label}] = struct{}{}
		}
	}
	return flow
}
