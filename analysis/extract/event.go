// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package extract determines whether a text selection within a method body
// can be extracted into a new method, and if so, which variables become
// parameters, which become locals of the new method or of the caller, which
// value is returned, and which checked exceptions must be declared.
//
// The analysis is a single traversal of a tree.Tree.  The traversal emits a
// stream of Events, each tagged with the Phase (before, inside, or after the
// selection) in which it occurred; three independent reducers consume the
// stream: one for local variable accesses, one for returns and branches,
// and one for thrown exceptions.  Analyze combines their results into a
// Verdict.
package extract

import (
	"fmt"

	"github.com/godoctor/extractcheck/analysis/tree"
)

// A Phase classifies a node relative to the selection.
type Phase int

const (
	Undefined Phase = iota
	Before
	Selected
	After
)

func (p Phase) String() string {
	switch p {
	case Before:
		return "before"
	case Selected:
		return "selected"
	case After:
		return "after"
	}
	return "undefined"
}

// An AccessMode tells whether a variable reference reads or writes it.
type AccessMode int

const (
	Read AccessMode = iota
	Write
)

func (m AccessMode) String() string {
	if m == Write {
		return "write"
	}
	return "read"
}

// A LocalAccess is a single read or write of a variable.  Two accesses are
// equal iff their bindings and modes are equal.
type LocalAccess struct {
	Binding tree.Binding
	Mode    AccessMode
}

func (a LocalAccess) String() string {
	return fmt.Sprintf("%s %s", a.Mode, a.Binding.Name())
}

// An EventKind identifies the type of an Event.
type EventKind int

const (
	EnterNode EventKind = iota
	LeaveNode
	NameRef     // Access is set
	CallSite    // Types holds the declared thrown types
	CatchClause // Types holds the caught types
)

func (k EventKind) String() string {
	switch k {
	case EnterNode:
		return "enter"
	case LeaveNode:
		return "leave"
	case NameRef:
		return "name"
	case CallSite:
		return "call"
	case CatchClause:
		return "catch"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// An Event is one step of the traversal.
type Event struct {
	Kind  EventKind
	Phase Phase
	// Nested is true when the event occurs inside a lambda or a type
	// declared within the enclosing method.  Returns and exceptions in
	// nested bodies do not belong to the selection's control flow.
	Nested bool
	Node   tree.NodeID
	Access LocalAccess
	Types  []tree.Type
}

func (e Event) String() string {
	switch e.Kind {
	case NameRef:
		return fmt.Sprintf("%s %s %s", e.Phase, e.Kind, e.Access)
	default:
		return fmt.Sprintf("%s %s #%d", e.Phase, e.Kind, e.Node)
	}
}

// A Reducer consumes the events of one traversal, in order, and folds them
// into its own state.
type Reducer interface {
	Reduce(Event)
}

// ReducerFunc adapts a function to the Reducer interface.
type ReducerFunc func(Event)

func (f ReducerFunc) Reduce(e Event) { f(e) }

// Replay feeds recorded events to the given reducers.
func Replay(events []Event, reducers ...Reducer) {
	for _, e := range events {
		for _, r := range reducers {
			r.Reduce(e)
		}
	}
}
