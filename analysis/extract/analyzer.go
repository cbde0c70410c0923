// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"strings"

	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/text"
)

// A ReturnKind tells what the extracted method returns.
type ReturnKind int

const (
	// ReturnNone: the extracted method returns nothing.
	ReturnNone ReturnKind = iota
	// ReturnExpression: the selection is an expression, whose value
	// is returned.
	ReturnExpression
	// ReturnAccessToLocal: a variable assigned in the selection is
	// read afterward; its value is returned and assigned by the caller.
	ReturnAccessToLocal
	// ReturnStatementValue: the selection always returns a value from
	// the enclosing method; the call is returned by the caller.
	ReturnStatementValue
	// ReturnStatementVoid: the selection always returns from a method
	// without a result; the caller returns after the call.
	ReturnStatementVoid
)

func (k ReturnKind) String() string {
	switch k {
	case ReturnNone:
		return "NO"
	case ReturnExpression:
		return "EXPRESSION"
	case ReturnAccessToLocal:
		return "ACCESS_TO_LOCAL"
	case ReturnStatementValue:
		return "RETURN_STATEMENT_VALUE"
	case ReturnStatementVoid:
		return "RETURN_STATEMENT_VOID"
	}
	return "UNKNOWN"
}

// A Verdict is the result of analyzing one selection.
type Verdict struct {
	// Legal is true iff there are no diagnostics.
	Legal       bool
	Diagnostics []Diagnostic

	ReturnKind ReturnKind
	// Arguments are read in the selection but declared outside it; they
	// become parameters of the extracted method.
	Arguments []tree.Binding
	// ExtractedLocals become locals of the extracted method only.
	ExtractedLocals []tree.Binding
	// CallerLocals are declared in the selection but used after it; their
	// declarations must be hoisted into the caller.
	CallerLocals []tree.Binding
	// ReturnValue is the variable whose value must be returned, if any.
	ReturnValue tree.Binding
	// Throws lists the checked exceptions the extracted method declares.
	Throws []tree.Type

	// Method is the enclosing method (or lambda), or tree.NoNode.
	Method tree.NodeID
	// Selected lists the top-level selected nodes.
	Selected []tree.NodeID
	// Flow is the control flow summary of the selection.
	Flow FlowInfo
}

func (v *Verdict) String() string {
	var b strings.Builder
	if v.Legal {
		b.WriteString("extractable")
	} else {
		b.WriteString("not extractable")
	}
	b.WriteString("; return ")
	b.WriteString(v.ReturnKind.String())
	writeNames(&b, "arguments", v.Arguments)
	writeNames(&b, "locals", v.ExtractedLocals)
	writeNames(&b, "caller locals", v.CallerLocals)
	if v.ReturnValue != nil {
		b.WriteString("; returns ")
		b.WriteString(v.ReturnValue.Name())
	}
	if len(v.Throws) > 0 {
		names := make([]string, len(v.Throws))
		for i, t := range v.Throws {
			names[i] = t.Name()
		}
		b.WriteString("; throws ")
		b.WriteString(strings.Join(names, ", "))
	}
	for _, d := range v.Diagnostics {
		b.WriteString("; ")
		b.WriteString(d.String())
	}
	return b.String()
}

func writeNames(b *strings.Builder, label string, vars []tree.Binding) {
	if len(vars) == 0 {
		return
	}
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name()
	}
	b.WriteString("; ")
	b.WriteString(label)
	b.WriteString(" ")
	b.WriteString(strings.Join(names, ", "))
}

// An Option configures Analyze.
type Option func(*options)

type options struct {
	classifier text.Classifier
	observers  []Reducer
	workers    int
}

// WithClassifier sets the classifier used to validate the boundaries of the
// selection.  By default every offset is accepted.
func WithClassifier(c text.Classifier) Option {
	return func(o *options) { o.classifier = c }
}

// WithObserver adds a reducer that receives every event of the traversal
// after the built-in analyzers.  Observers passed to Batch must be safe for
// concurrent use.
func WithObserver(r Reducer) Option {
	return func(o *options) { o.observers = append(o.observers, r) }
}

// WithWorkers limits the number of selections Batch analyzes at once.  A
// value less than one means GOMAXPROCS.  Analyze ignores it.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Analyze determines whether the selection sel of t can be extracted into
// a new method.  Analyze does not modify t; concurrent calls on the same
// tree are safe.
func Analyze(t *tree.Tree, sel text.Extent, opts ...Option) *Verdict {
	o := options{classifier: text.AnyBoundary{}}
	for _, opt := range opts {
		opt(&o)
	}

	locals := newLocalsAnalyzer(t, sel)
	returns := newReturnAnalyzer(t)
	exceptions := newExceptionAnalyzer(t)
	reducers := append([]Reducer{locals, returns, exceptions}, o.observers...)

	stmts := newStatementAnalyzer(t, sel, func(e Event) {
		for _, r := range reducers {
			r.Reduce(e)
		}
	})
	stmts.run()
	stmts.validate(o.classifier)

	v := &Verdict{
		Method:   stmts.enclosing,
		Selected: stmts.topLevel,
	}
	diags := stmts.diags
	if diags.has(NoEnclosingMethod) {
		v.Flow = FlowInfo{Mode: NoReturn, Open: openSet()}
		v.Diagnostics = diags
		return v
	}

	v.Flow = returns.result()
	if !v.Flow.Extractable() {
		if v.Flow.Mode == SomeReturn {
			diags.add(PartialReturn, tree.NoNode, sel,
				"Some, but not all, paths through the selection return")
		}
		if open := v.Flow.OpenBranches(); len(open) > 0 {
			names := make([]string, len(open))
			for i, b := range open {
				names[i] = b.String()
			}
			diags.add(UnresolvedBranch, tree.NoNode, sel,
				"The selection contains a jump whose target is outside it (%s)",
				strings.Join(names, ", "))
		}
	}

	lr := locals.result()
	v.Arguments = lr.arguments
	v.ExtractedLocals = lr.extracted
	v.CallerLocals = lr.callerLocals
	v.ReturnValue = lr.returnValue
	v.Throws = exceptions.result()
	if len(lr.candidates) > 1 {
		var names []string
		for _, b := range lr.candidates {
			names = append(names, b.Name())
		}
		diags.add(AmbiguousReturnValue, tree.NoNode, sel,
			"More than one variable assigned in the selection is used afterward (%s)",
			strings.Join(names, ", "))
	}

	v.ReturnKind = returnKind(t, stmts, v, &diags, sel)
	v.Diagnostics = diags
	v.Legal = len(diags) == 0
	return v
}

// returnKind decides what the extracted method returns.  The selection may
// produce the value of an expression, the value of a variable, or a return
// from the enclosing method, but never more than one of these.  A return
// counts even when the method has no result, since the caller must still
// return after the call.
func returnKind(t *tree.Tree, stmts *statementAnalyzer, v *Verdict, diags *diagnostics, sel text.Extent) ReturnKind {
	expression := stmts.isExpressionSelected()
	returns := v.Flow.Mode == AllReturn

	count := 0
	if expression {
		count++
	}
	if v.ReturnValue != nil {
		count++
	}
	if returns {
		count++
	}
	if count > 1 {
		diags.add(MultipleReturnCandidates, tree.NoNode, sel,
			"The selection yields more than one of an expression, an assigned variable, and a return")
		if !diags.has(AmbiguousReturnValue) {
			diags.add(AmbiguousReturnValue, tree.NoNode, sel,
				"The extracted method cannot return more than one value")
		}
	}

	switch {
	case expression:
		return ReturnExpression
	case v.ReturnValue != nil:
		return ReturnAccessToLocal
	case returns && !t.Node(stmts.enclosing).Void:
		return ReturnStatementValue
	case returns:
		return ReturnStatementVoid
	}
	return ReturnNone
}
