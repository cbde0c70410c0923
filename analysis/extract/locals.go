// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file contains the local variable analyzer, which derives parameters,
// locals, and the returned variable from the accesses made inside and after
// the selection.

package extract

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/text"
)

// localsAnalyzer records accesses to local variables.  Each variable is
// assigned an index on first access, and the per-phase access sets are
// bitsets over those indices.
//
// Code preceding the selection inside a loop that encloses it runs again
// after the selection, on the next iteration.  Its accesses are held back
// and counted as following accesses when the loop is left.
type localsAnalyzer struct {
	tree *tree.Tree
	sel  text.Extent

	vars    []tree.Binding // vars[i] has index i
	indices map[tree.Binding]uint

	selectedReads, selectedWrites   *bitset.BitSet
	followingReads, followingWrites *bitset.BitSet

	preceding []precedingAccess
	loops     []tree.NodeID // loops enclosing the selection, innermost first
	seen      bool          // a selected node has been entered
}

// A precedingAccess is an access made before the selection.
type precedingAccess struct {
	LocalAccess
	node tree.NodeID
}

func newLocalsAnalyzer(t *tree.Tree, sel text.Extent) *localsAnalyzer {
	return &localsAnalyzer{
		tree:            t,
		sel:             sel,
		indices:         make(map[tree.Binding]uint),
		selectedReads:   new(bitset.BitSet),
		selectedWrites:  new(bitset.BitSet),
		followingReads:  new(bitset.BitSet),
		followingWrites: new(bitset.BitSet),
	}
}

func (a *localsAnalyzer) index(b tree.Binding) uint {
	if i, ok := a.indices[b]; ok {
		return i
	}
	i := uint(len(a.vars))
	a.vars = append(a.vars, b)
	a.indices[b] = i
	return i
}

func (a *localsAnalyzer) Reduce(e Event) {
	switch e.Kind {
	case EnterNode:
		if e.Phase == Selected && !a.seen {
			a.seen = true
			a.loops = enclosingLoops(a.tree, e.Node)
		}
		return
	case LeaveNode:
		if len(a.loops) > 0 && e.Node == a.loops[0] {
			a.reenter(a.loops[0])
			a.loops = a.loops[1:]
		}
		return
	case NameRef:
	default:
		return
	}
	switch e.Phase {
	case Before:
		a.preceding = append(a.preceding, precedingAccess{e.Access, e.Node})
	case Selected:
		i := a.index(e.Access.Binding)
		if e.Access.Mode == Read {
			a.selectedReads.Set(i)
		} else {
			a.selectedWrites.Set(i)
		}
	case After:
		i := a.index(e.Access.Binding)
		if e.Access.Mode == Write {
			a.followingWrites.Set(i)
		} else if !a.followingWrites.Test(i) {
			// once written after the selection, the variable no
			// longer carries the value computed by the selection
			a.followingReads.Set(i)
		}
	}
}

// enclosingLoops returns the loops between id and its method, innermost
// first.
func enclosingLoops(t *tree.Tree, id tree.NodeID) []tree.NodeID {
	var loops []tree.NodeID
	for {
		id = t.Ancestor(id, tree.Loop, tree.DoWhile, tree.Method, tree.Lambda)
		if id == tree.NoNode {
			return loops
		}
		if k := t.Node(id).Kind; k == tree.Method || k == tree.Lambda {
			return loops
		}
		loops = append(loops, id)
	}
}

// reenter counts the accesses that preceded the selection inside loop as
// following accesses.  The loop's initializer runs only once and is
// excluded.  A variable written after the selection, or earlier in the
// repeated code, no longer holds the value computed by the selection.
func (a *localsAnalyzer) reenter(loop tree.NodeID) {
	l := a.tree.Node(loop)
	initializer := tree.NoNode
	if l.Kind == tree.Loop {
		initializer = a.tree.Child(loop, tree.Init)
	}
	killed := a.followingWrites.Clone()
	for _, p := range a.preceding {
		n := a.tree.Node(p.node)
		if n.Start < l.Start || n.Start >= l.End || a.within(p.node, initializer) {
			continue
		}
		i := a.index(p.Binding)
		if p.Mode == Write {
			killed.Set(i)
		} else if !killed.Test(i) {
			a.followingReads.Set(i)
		}
	}
}

// within returns true iff id is ancestor or one of its descendants.
func (a *localsAnalyzer) within(id, ancestor tree.NodeID) bool {
	if ancestor == tree.NoNode {
		return false
	}
	for ; id != tree.NoNode; id = a.tree.Parent(id) {
		if id == ancestor {
			return true
		}
	}
	return false
}

// SelectedAccesses returns the distinct accesses made inside the selection,
// in order of first access.
func (a *localsAnalyzer) SelectedAccesses() []LocalAccess {
	return a.accesses(a.selectedReads, a.selectedWrites)
}

func (a *localsAnalyzer) accesses(reads, writes *bitset.BitSet) []LocalAccess {
	var result []LocalAccess
	for i, v := range a.vars {
		if reads.Test(uint(i)) {
			result = append(result, LocalAccess{v, Read})
		}
		if writes.Test(uint(i)) {
			result = append(result, LocalAccess{v, Write})
		}
	}
	return result
}

// localsResult is the outcome of the local variable analysis.
type localsResult struct {
	arguments    []tree.Binding
	extracted    []tree.Binding
	callerLocals []tree.Binding
	candidates   []tree.Binding // variables live after the selection
	returnValue  tree.Binding   // the only candidate, if there is exactly one
}

func (a *localsAnalyzer) declaredInside() *bitset.BitSet {
	inside := new(bitset.BitSet)
	for i, v := range a.vars {
		if pos := v.Pos(); pos >= a.sel.Offset && pos < a.sel.OffsetPastEnd() {
			inside.Set(uint(i))
		}
	}
	return inside
}

func (a *localsAnalyzer) result() localsResult {
	inside := a.declaredInside()

	arguments := a.selectedReads.Difference(inside)
	candidates := a.followingReads.Intersection(a.selectedWrites)
	callerLocals := inside.Intersection(a.followingWrites)

	var returnValue tree.Binding
	extracted := a.selectedWrites.Difference(arguments).Difference(callerLocals)
	if candidates.Count() == 1 {
		// the returned variable stays a local of the extracted method;
		// the caller assigns the result to its own copy
		i, _ := candidates.NextSet(0)
		returnValue = a.vars[i]
	} else {
		extracted = extracted.Difference(candidates)
	}

	return localsResult{
		arguments:    a.bindings(arguments),
		extracted:    a.bindings(extracted),
		callerLocals: a.bindings(callerLocals),
		candidates:   a.bindings(candidates),
		returnValue:  returnValue,
	}
}

func (a *localsAnalyzer) bindings(set *bitset.BitSet) []tree.Binding {
	var result []tree.Binding
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		result = append(result, a.vars[i])
	}
	return result
}
