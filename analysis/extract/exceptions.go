// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file contains the exception analyzer, which computes the checked
// exceptions that escape the selection.

package extract

import "github.com/godoctor/extractcheck/analysis/tree"

// An exceptionSet is an immutable, insertion-ordered set of exception
// types.  Each type maps to the node that first raised it.
type exceptionSet struct {
	types []tree.Type
	refs  []tree.NodeID
}

func (s exceptionSet) contains(t tree.Type) bool {
	for _, u := range s.types {
		if u == t {
			return true
		}
	}
	return false
}

func (s exceptionSet) add(t tree.Type, ref tree.NodeID) exceptionSet {
	if s.contains(t) {
		return s
	}
	return exceptionSet{
		types: append(s.types[:len(s.types):len(s.types)], t),
		refs:  append(s.refs[:len(s.refs):len(s.refs)], ref),
	}
}

func (s exceptionSet) union(other exceptionSet) exceptionSet {
	for i, t := range other.types {
		s = s.add(t, other.refs[i])
	}
	return s
}

// discharge removes every type that is handled by one of the caught types.
func (s exceptionSet) discharge(caught []tree.Type) exceptionSet {
	var result exceptionSet
	for i, t := range s.types {
		handled := false
		for _, c := range caught {
			if t.AssignableTo(c) {
				handled = true
				break
			}
		}
		if !handled {
			result = result.add(t, s.refs[i])
		}
	}
	return result
}

// An exceptionFrame holds the exceptions raised within one try statement.
// Exceptions raised in its protected body may be discharged by its catch
// clauses; those raised in handlers or in the finally block escape.
type exceptionFrame struct {
	try      tree.NodeID
	body     exceptionSet
	escaping exceptionSet
	handlers bool // the protected body has been left
	parent   *exceptionFrame
}

// An exceptionStack is an immutable stack of frames.  Operations return
// new stacks and never modify frames reachable from an existing stack.
type exceptionStack struct {
	top *exceptionFrame
}

func (s exceptionStack) push(try tree.NodeID) exceptionStack {
	return exceptionStack{&exceptionFrame{try: try, parent: s.top}}
}

func (s exceptionStack) pop() (exceptionFrame, exceptionStack) {
	return *s.top, exceptionStack{s.top.parent}
}

func (s exceptionStack) replaceTop(f exceptionFrame) exceptionStack {
	f.parent = s.top.parent
	return exceptionStack{&f}
}

// raise records exceptions in the top frame.
func (s exceptionStack) raise(raised exceptionSet) exceptionStack {
	f := *s.top
	if f.handlers {
		f.escaping = f.escaping.union(raised)
	} else {
		f.body = f.body.union(raised)
	}
	return s.replaceTop(f)
}

// exceptionAnalyzer consumes the events of selected, non-nested nodes.
type exceptionAnalyzer struct {
	tree  *tree.Tree
	stack exceptionStack
}

func newExceptionAnalyzer(t *tree.Tree) *exceptionAnalyzer {
	return &exceptionAnalyzer{
		tree:  t,
		stack: exceptionStack{}.push(tree.NoNode),
	}
}

func (a *exceptionAnalyzer) Reduce(e Event) {
	if e.Nested || e.Phase != Selected {
		return
	}
	n := a.tree.Node(e.Node)
	switch e.Kind {
	case EnterNode:
		if n.Kind == tree.Try {
			a.stack = a.stack.push(n.ID)
		}
	case CallSite:
		var raised exceptionSet
		for _, t := range e.Types {
			if t.Checked() {
				raised = raised.add(t, n.ID)
			}
		}
		a.stack = a.stack.raise(raised)
	case CatchClause:
		if f := *a.stack.top; f.try == n.Parent {
			f.body = f.body.discharge(e.Types)
			a.stack = a.stack.replaceTop(f)
		}
	case LeaveNode:
		switch {
		case n.Kind == tree.Try && a.stack.top.try == n.ID:
			var f exceptionFrame
			f, a.stack = a.stack.pop()
			a.stack = a.stack.raise(f.body.union(f.escaping))
		case n.Role == tree.Body && a.stack.top.try != tree.NoNode && n.Parent == a.stack.top.try:
			f := *a.stack.top
			f.handlers = true
			a.stack = a.stack.replaceTop(f)
		}
	}
}

// result returns the exceptions that escape the selection, in the order
// they were first raised.
func (a *exceptionAnalyzer) result() []tree.Type {
	root := a.stack.top
	for root.parent != nil {
		root = root.parent
	}
	return root.body.union(root.escaping).types
}
