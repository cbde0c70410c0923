// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/text"
	"github.com/google/go-cmp/cmp"
)

func names(bindings []tree.Binding) []string {
	result := []string{}
	for _, b := range bindings {
		result = append(result, b.Name())
	}
	return result
}

func typeNames(types []tree.Type) []string {
	result := []string{}
	for _, t := range types {
		result = append(result, t.Name())
	}
	return result
}

// method builds a tree containing a single method with the given body.
func method(void bool, params []*tree.Var, body ...*tree.Spec) *tree.Tree {
	return tree.Build(tree.FileOf(tree.MethodOf("m", void, params, body...)))
}

func assertLegal(t *testing.T, v *Verdict) {
	t.Helper()
	if !v.Legal {
		t.Fatalf("expected a legal selection, got %s", v)
	}
}

func assertDiagnostic(t *testing.T, v *Verdict, kind DiagnosticKind) {
	t.Helper()
	if v.Legal {
		t.Fatalf("expected %s, got a legal selection: %s", kind, v)
	}
	if !diagnostics(v.Diagnostics).has(kind) {
		t.Fatalf("expected %s, got %s", kind, v)
	}
}

func assertNames(t *testing.T, what string, expected []string, actual []tree.Binding) {
	t.Helper()
	if diff := cmp.Diff(expected, names(actual)); diff != "" {
		t.Errorf("%s (-want +got):\n%s", what, diff)
	}
}

// Selecting a declaration and its only use yields a local of the new method.
func TestDeclarationConsumedInside(t *testing.T) {
	x := tree.NewVar("x", tree.Local, nil)
	decl := tree.Declare(x, tree.Lit())
	use := tree.Eval(tree.Invoke("println", nil, tree.Ref(x)))
	v := Analyze(method(true, nil, decl, use), tree.Select(decl, use))

	assertLegal(t, v)
	assertNames(t, "arguments", []string{}, v.Arguments)
	assertNames(t, "extracted locals", []string{"x"}, v.ExtractedLocals)
	if v.ReturnKind != ReturnNone {
		t.Errorf("expected NO, got %s", v.ReturnKind)
	}
}

// Assigning a variable that is read afterward makes it the return value.
func TestAssignedVariableReadAfterward(t *testing.T) {
	x := tree.NewVar("x", tree.Local, nil)
	decl := tree.Declare(x, nil)
	set := tree.Set(x, tree.Invoke("compute", nil))
	use := tree.Eval(tree.Invoke("println", nil, tree.Ref(x)))
	v := Analyze(method(true, nil, decl, set, use), set.Extent())

	assertLegal(t, v)
	assertNames(t, "arguments", []string{}, v.Arguments)
	if v.ReturnValue != tree.Binding(x) {
		t.Errorf("expected x to be returned, got %v", v.ReturnValue)
	}
	if v.ReturnKind != ReturnAccessToLocal {
		t.Errorf("expected ACCESS_TO_LOCAL, got %s", v.ReturnKind)
	}
}

func TestConditionalReturn(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	ifStmt := tree.IfOf(tree.Ref(c), tree.Ret(tree.Lit()), nil)
	v := Analyze(method(false, []*tree.Var{c}, ifStmt, tree.Ret(tree.Lit())), ifStmt.Extent())

	assertDiagnostic(t, v, PartialReturn)
	if v.Flow.Mode != SomeReturn {
		t.Errorf("expected SOME_RETURN, got %s", v.Flow.Mode)
	}
}

func TestBreakResolvedInsideSelection(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	loop := tree.ForOf(nil, tree.Ref(c), nil,
		tree.BlockOf(tree.IfOf(tree.Ref(c), tree.BreakTo(""), nil)))
	v := Analyze(method(true, []*tree.Var{c}, loop), loop.Extent())

	assertLegal(t, v)
	if len(v.Flow.Open) != 0 {
		t.Errorf("expected no open branches, got %s", v.Flow)
	}
	assertNames(t, "arguments", []string{"c"}, v.Arguments)
}

func TestBreakOutOfSelection(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	ifStmt := tree.IfOf(tree.Ref(c), tree.BreakTo(""), nil)
	loop := tree.While(tree.Ref(c), tree.BlockOf(ifStmt))
	v := Analyze(method(true, []*tree.Var{c}, loop), ifStmt.Extent())

	assertDiagnostic(t, v, UnresolvedBranch)
	if diff := cmp.Diff([]BranchTarget{{BreakBranch, ""}}, v.Flow.OpenBranches()); diff != "" {
		t.Errorf("open branches (-want +got):\n%s", diff)
	}
}

func TestCaughtExceptionIsDischarged(t *testing.T) {
	specific := &tree.NamedType{TypeName: "SpecificException"}
	e := tree.NewVar("e", tree.Local, specific)
	call := tree.Eval(tree.Invoke("risky", []tree.Type{specific}))
	try := tree.TryOf(tree.BlockOf(call),
		[]*tree.Spec{tree.CatchOf(e, []tree.Type{specific}, tree.BlockOf())}, nil)
	tr := method(true, nil, try)

	v := Analyze(tr, try.Extent())
	assertLegal(t, v)
	if diff := cmp.Diff([]string{}, typeNames(v.Throws)); diff != "" {
		t.Errorf("throws (-want +got):\n%s", diff)
	}

	v = Analyze(tr, call.Extent())
	assertLegal(t, v)
	if diff := cmp.Diff([]string{"SpecificException"}, typeNames(v.Throws)); diff != "" {
		t.Errorf("throws (-want +got):\n%s", diff)
	}
}

func TestCatchSupertype(t *testing.T) {
	exception := &tree.NamedType{TypeName: "Exception"}
	io := &tree.NamedType{TypeName: "IOException", Super: exception}
	runtime := &tree.NamedType{TypeName: "RuntimeException", Super: exception, Unchecked: true}
	e := tree.NewVar("e", tree.Local, exception)

	inner := tree.TryOf(tree.BlockOf(tree.Eval(tree.Invoke("read", []tree.Type{io, runtime}))), nil,
		tree.BlockOf(tree.Eval(tree.Invoke("close", nil))))
	outer := tree.TryOf(tree.BlockOf(inner),
		[]*tree.Spec{tree.CatchOf(e, []tree.Type{exception}, tree.BlockOf())}, nil)
	tr := method(true, nil, outer)

	if v := Analyze(tr, outer.Extent()); len(v.Throws) != 0 {
		t.Errorf("expected nothing to escape, got %s", v)
	}
	v := Analyze(tr, inner.Extent())
	if diff := cmp.Diff([]string{"IOException"}, typeNames(v.Throws)); diff != "" {
		t.Errorf("throws (-want +got):\n%s", diff)
	}
}

func TestThrowInHandlerEscapes(t *testing.T) {
	specific := &tree.NamedType{TypeName: "SpecificException"}
	wrapped := &tree.NamedType{TypeName: "WrappedException"}
	e := tree.NewVar("e", tree.Local, specific)
	try := tree.TryOf(tree.BlockOf(tree.Eval(tree.Invoke("risky", []tree.Type{specific}))),
		[]*tree.Spec{tree.CatchOf(e, []tree.Type{specific, wrapped},
			tree.BlockOf(tree.ThrowOf(wrapped, tree.Ref(e))))}, nil)
	v := Analyze(method(true, nil, try), try.Extent())

	assertLegal(t, v)
	if diff := cmp.Diff([]string{"WrappedException"}, typeNames(v.Throws)); diff != "" {
		t.Errorf("throws (-want +got):\n%s", diff)
	}
}

func TestFinallyReturnDominates(t *testing.T) {
	try := tree.TryOf(tree.BlockOf(tree.Eval(tree.Invoke("work", nil))), nil,
		tree.BlockOf(tree.Ret(tree.Lit())))
	v := Analyze(method(false, nil, try), try.Extent())

	assertLegal(t, v)
	if v.ReturnKind != ReturnStatementValue {
		t.Errorf("expected RETURN_STATEMENT_VALUE, got %s", v.ReturnKind)
	}
}

func TestDoWhileAlwaysRuns(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	loop := tree.DoWhileOf(tree.BlockOf(tree.Ret(nil)), tree.Ref(c))
	v := Analyze(method(true, []*tree.Var{c}, loop), loop.Extent())

	assertLegal(t, v)
	if v.ReturnKind != ReturnStatementVoid {
		t.Errorf("expected RETURN_STATEMENT_VOID, got %s", v.ReturnKind)
	}
}

func TestWhileMayNotRun(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	loop := tree.While(tree.Ref(c), tree.BlockOf(tree.Ret(tree.Lit())))
	v := Analyze(method(false, []*tree.Var{c}, loop, tree.Ret(tree.Lit())), loop.Extent())
	assertDiagnostic(t, v, PartialReturn)
}

func TestSwitchRequiresDefault(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	without := tree.SwitchOf(tree.Ref(c),
		tree.CaseOf(tree.Lit(), tree.Ret(tree.Lit())))
	v := Analyze(method(false, []*tree.Var{c}, without, tree.Ret(tree.Lit())), without.Extent())
	assertDiagnostic(t, v, PartialReturn)

	with := tree.SwitchOf(tree.Ref(c),
		tree.CaseOf(tree.Lit(), tree.Ret(tree.Lit())),
		tree.DefaultOf(tree.Ret(tree.Lit())))
	v = Analyze(method(false, []*tree.Var{c}, with), with.Extent())
	assertLegal(t, v)
	if v.Flow.Mode != AllReturn {
		t.Errorf("expected ALL_RETURN, got %s", v.Flow)
	}
}

func TestSwitchBreakResolved(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	sw := tree.SwitchOf(tree.Ref(c),
		tree.CaseOf(tree.Lit(), tree.Eval(tree.Invoke("a", nil)), tree.BreakTo("")),
		tree.DefaultOf(tree.Eval(tree.Invoke("b", nil))))
	v := Analyze(method(true, []*tree.Var{c}, sw), sw.Extent())
	assertLegal(t, v)
}

func TestLabeledContinue(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	inner := tree.While(tree.Ref(c),
		tree.BlockOf(tree.IfOf(tree.Ref(c), tree.ContinueTo("outer"), nil)))
	labeled := tree.LabeledOf("outer", tree.While(tree.Ref(c), tree.BlockOf(inner)))
	tr := method(true, []*tree.Var{c}, labeled)

	v := Analyze(tr, inner.Extent())
	assertDiagnostic(t, v, UnresolvedBranch)
	if diff := cmp.Diff([]BranchTarget{{ContinueBranch, "outer"}}, v.Flow.OpenBranches()); diff != "" {
		t.Errorf("open branches (-want +got):\n%s", diff)
	}

	assertLegal(t, Analyze(tr, labeled.Extent()))
}

func TestGotoIntoSelection(t *testing.T) {
	jump := tree.GotoLabel("L")
	target := tree.LabeledOf("L", tree.Eval(tree.Invoke("a", nil)))
	v := Analyze(method(true, nil, jump, target), target.Extent())
	assertDiagnostic(t, v, UnresolvedBranch)

	jump = tree.GotoLabel("L")
	target = tree.LabeledOf("L", tree.Eval(tree.Invoke("a", nil)))
	v = Analyze(method(true, nil, jump, target), tree.Select(jump, target))
	assertLegal(t, v)
}

func TestThrowCompletesSequence(t *testing.T) {
	call := tree.Eval(tree.Invoke("a", nil))
	throw := tree.ThrowOf(nil, tree.Lit())
	v := Analyze(method(true, nil, call, throw), tree.Select(call, throw))

	assertLegal(t, v)
	if v.Flow.Mode != Throws || v.ReturnKind != ReturnNone {
		t.Errorf("expected a throwing selection that returns nothing, got %s", v)
	}
}

func TestNestedLambdaReturnsIgnored(t *testing.T) {
	x := tree.NewVar("x", tree.Local, nil)
	stmt := tree.Eval(tree.Invoke("run", nil, tree.LambdaOf(false, tree.Ret(tree.Ref(x)))))
	v := Analyze(method(true, nil, tree.Declare(x, tree.Lit()), stmt), stmt.Extent())

	assertLegal(t, v)
	if v.ReturnKind != ReturnNone {
		t.Errorf("expected NO, got %s", v.ReturnKind)
	}
	assertNames(t, "arguments", []string{"x"}, v.Arguments)
}

func TestSelectionInsideLambda(t *testing.T) {
	y := tree.NewVar("y", tree.Local, nil)
	decl := tree.Declare(y, tree.Lit())
	use := tree.Eval(tree.Invoke("println", nil, tree.Ref(y)))
	lambda := tree.LambdaOf(true, decl, use)
	tr := method(true, nil, tree.Eval(tree.Invoke("run", nil, lambda)))

	v := Analyze(tr, tree.Select(decl, use))
	assertLegal(t, v)
	if v.Method != lambda.ID() {
		t.Errorf("expected the lambda to enclose the selection, got node %d", v.Method)
	}
}

func TestSingleReturn(t *testing.T) {
	ret := tree.Ret(tree.Lit())
	v := Analyze(method(false, nil, ret), ret.Extent())
	assertDiagnostic(t, v, SingleReturnNotExtractable)
}

func TestNoEnclosingMethod(t *testing.T) {
	m := tree.MethodOf("m", true, nil, tree.Eval(tree.Invoke("a", nil)))
	tr := tree.Build(tree.FileOf(m))
	v := Analyze(tr, m.Extent())

	assertDiagnostic(t, v, NoEnclosingMethod)
	if v.Method != tree.NoNode {
		t.Errorf("expected no enclosing method, got node %d", v.Method)
	}
}

func TestMixedParents(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	inside := tree.Eval(tree.Invoke("a", nil))
	after := tree.Eval(tree.Invoke("b", nil))
	tr := method(true, []*tree.Var{c}, tree.IfOf(tree.Ref(c), tree.BlockOf(inside), nil), after)
	v := Analyze(tr, tree.Select(inside, after))
	assertDiagnostic(t, v, MixedParents)
}

func TestEndsMidStatement(t *testing.T) {
	a := tree.Eval(tree.Invoke("a", nil))
	arg := tree.Lit()
	b := tree.Eval(tree.Invoke("b", nil, arg))
	v := Analyze(method(true, nil, a, b), tree.Select(a, arg))
	assertDiagnostic(t, v, EndsMidStatement)
}

func TestAmbiguousReturnValue(t *testing.T) {
	x := tree.NewVar("x", tree.Local, nil)
	y := tree.NewVar("y", tree.Local, nil)
	setX := tree.Set(x, tree.Lit())
	setY := tree.Set(y, tree.Lit())
	v := Analyze(method(true, nil,
		tree.Declare(x, nil), tree.Declare(y, nil), setX, setY,
		tree.Eval(tree.Invoke("println", nil, tree.Ref(x), tree.Ref(y)))),
		tree.Select(setX, setY))

	assertDiagnostic(t, v, AmbiguousReturnValue)
	if v.ReturnValue != nil {
		t.Errorf("expected no return value, got %s", v.ReturnValue.Name())
	}
}

func TestMultipleReturnCandidates(t *testing.T) {
	x := tree.NewVar("x", tree.Local, nil)
	set := tree.Set(x, tree.Lit())
	ret := tree.Ret(tree.Ref(x))
	v := Analyze(method(false, nil,
		tree.Declare(x, nil), set, ret,
		tree.Eval(tree.Invoke("println", nil, tree.Ref(x)))),
		tree.Select(set, ret))
	assertDiagnostic(t, v, MultipleReturnCandidates)
	assertDiagnostic(t, v, AmbiguousReturnValue)
}

// A selection that both assigns a variable used afterward and returns from
// a method without a result has two results to convey.
func TestVoidReturnWithLiveLocal(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	x := tree.NewVar("x", tree.Local, nil)
	set := tree.Set(x, tree.Lit())
	ret := tree.Ret(nil)
	v := Analyze(method(true, []*tree.Var{c},
		tree.Declare(x, tree.Lit()),
		tree.IfOf(tree.Ref(c), tree.BlockOf(set, ret), nil),
		tree.Eval(tree.Invoke("println", nil, tree.Ref(x)))),
		tree.Select(set, ret))

	assertDiagnostic(t, v, MultipleReturnCandidates)
	assertDiagnostic(t, v, AmbiguousReturnValue)
}

func TestVoidReturn(t *testing.T) {
	c := tree.NewVar("c", tree.Parameter, nil)
	call := tree.Eval(tree.Invoke("a", nil))
	ret := tree.Ret(nil)
	v := Analyze(method(true, []*tree.Var{c},
		tree.IfOf(tree.Ref(c), tree.BlockOf(call, ret), nil),
		tree.Eval(tree.Invoke("b", nil))),
		tree.Select(call, ret))

	assertLegal(t, v)
	if v.ReturnKind != ReturnStatementVoid {
		t.Errorf("expected RETURN_STATEMENT_VOID, got %s", v.ReturnKind)
	}
}

// Code preceding the selection in a loop body runs again after it, so a
// variable the selection assigns may be read on the next iteration.
func TestLoopReentry(t *testing.T) {
	tests := []struct {
		name     string
		build    func(s *tree.Var, update *tree.Spec) *tree.Spec
		returned bool
	}{
		{
			name: "for",
			build: func(s *tree.Var, update *tree.Spec) *tree.Spec {
				i := tree.NewVar("i", tree.Local, nil)
				return tree.ForOf(tree.Declare(i, tree.Lit()), tree.Ref(i), tree.Incr(i),
					tree.BlockOf(tree.Eval(tree.Invoke("println", nil, tree.Ref(s))), update))
			},
			returned: true,
		},
		{
			name: "do while",
			build: func(s *tree.Var, update *tree.Spec) *tree.Spec {
				return tree.DoWhileOf(
					tree.BlockOf(tree.Eval(tree.Invoke("println", nil, tree.Ref(s))), update),
					tree.Lit())
			},
			returned: true,
		},
		{
			name: "condition",
			build: func(s *tree.Var, update *tree.Spec) *tree.Spec {
				return tree.While(tree.Ref(s), tree.BlockOf(update))
			},
			returned: true,
		},
		{
			name: "overwritten before read",
			build: func(s *tree.Var, update *tree.Spec) *tree.Spec {
				return tree.While(tree.Lit(), tree.BlockOf(
					tree.Set(s, tree.Lit()),
					tree.Eval(tree.Invoke("println", nil, tree.Ref(s))),
					update))
			},
			returned: false,
		},
		{
			name: "initializer",
			build: func(s *tree.Var, update *tree.Spec) *tree.Spec {
				i := tree.NewVar("i", tree.Local, nil)
				return tree.ForOf(tree.Declare(i, tree.Ref(s)), tree.Lit(), nil, tree.BlockOf(update))
			},
			returned: false,
		},
	}
	for _, tt := range tests {
		s := tree.NewVar("s", tree.Local, nil)
		update := tree.Set(s, tree.Op(tree.Ref(s), tree.Lit()))
		v := Analyze(method(true, nil, tree.Declare(s, tree.Lit()), tt.build(s, update)), update.Extent())

		if !v.Legal {
			t.Errorf("%s: expected a legal selection, got %s", tt.name, v)
			continue
		}
		if tt.returned {
			if v.ReturnValue != s || v.ReturnKind != ReturnAccessToLocal {
				t.Errorf("%s: expected s to be returned, got %s", tt.name, v)
			}
		} else if v.ReturnValue != nil || v.ReturnKind != ReturnNone {
			t.Errorf("%s: expected no return value, got %s", tt.name, v)
		}
	}
}

// A loop outside the method containing the selection does not repeat it.
func TestLoopOutsideLambda(t *testing.T) {
	s := tree.NewVar("s", tree.Local, nil)
	update := tree.Set(s, tree.Op(tree.Ref(s), tree.Lit()))
	lambda := tree.LambdaOf(true, tree.Declare(s, tree.Lit()), update)
	v := Analyze(method(true, nil,
		tree.While(tree.Lit(), tree.BlockOf(tree.Eval(tree.Invoke("run", nil, lambda))))),
		update.Extent())

	assertLegal(t, v)
	if v.ReturnValue != nil {
		t.Errorf("expected no return value, got %s", v.ReturnValue.Name())
	}
}

func TestCallerLocals(t *testing.T) {
	y := tree.NewVar("y", tree.Local, nil)
	decl := tree.Declare(y, tree.Lit())
	use := tree.Eval(tree.Invoke("println", nil, tree.Ref(y)))
	v := Analyze(method(true, nil, decl, use,
		tree.Set(y, tree.Lit()),
		tree.Eval(tree.Invoke("println", nil, tree.Ref(y)))),
		tree.Select(decl, use))

	assertLegal(t, v)
	assertNames(t, "caller locals", []string{"y"}, v.CallerLocals)
	assertNames(t, "extracted locals", []string{}, v.ExtractedLocals)
	if v.ReturnValue != nil {
		t.Errorf("expected no return value, got %s", v.ReturnValue.Name())
	}
}

func TestExpressionSelected(t *testing.T) {
	a := tree.NewVar("a", tree.Parameter, nil)
	sum := tree.Op(tree.Ref(a), tree.Lit())
	v := Analyze(method(true, []*tree.Var{a}, tree.Eval(tree.Invoke("println", nil, sum))), sum.Extent())

	assertLegal(t, v)
	if v.ReturnKind != ReturnExpression {
		t.Errorf("expected EXPRESSION, got %s", v.ReturnKind)
	}
	assertNames(t, "arguments", []string{"a"}, v.Arguments)
}

func TestFieldsAreIgnored(t *testing.T) {
	f := tree.NewVar("f", tree.Field, nil)
	a := tree.NewVar("a", tree.Parameter, nil)
	set := tree.Set(f, tree.Ref(a))
	v := Analyze(method(true, []*tree.Var{a}, set, tree.Eval(tree.Invoke("println", nil, tree.Ref(f)))), set.Extent())

	assertLegal(t, v)
	assertNames(t, "arguments", []string{"a"}, v.Arguments)
	if v.ReturnValue != nil {
		t.Errorf("expected no return value, got %s", v.ReturnValue.Name())
	}
}

// scenario builds a method with a mixture of reads and writes around a
// selection, for the property tests below.
func scenario() (*tree.Tree, []*tree.Spec) {
	a := tree.NewVar("a", tree.Parameter, nil)
	b := tree.NewVar("b", tree.Local, nil)
	c := tree.NewVar("c", tree.Local, nil)
	d := tree.NewVar("d", tree.Local, nil)
	stmts := []*tree.Spec{
		tree.Declare(b, tree.Ref(a)),
		tree.Declare(c, tree.Op(tree.Ref(a), tree.Ref(b))),
		tree.Update(b, tree.Ref(c)),
		tree.Declare(d, tree.Lit()),
		tree.Incr(d),
		tree.Eval(tree.Invoke("println", nil, tree.Ref(b), tree.Ref(d))),
	}
	return method(true, []*tree.Var{a}, stmts...), stmts
}

func TestIdempotent(t *testing.T) {
	tr, stmts := scenario()
	for i := range stmts {
		for j := i; j < len(stmts); j++ {
			sel := tree.Select(stmts[i], stmts[j])
			first, second := Analyze(tr, sel), Analyze(tr, sel)
			if diff := cmp.Diff(first, second, cmp.AllowUnexported(tree.Var{})); diff != "" {
				t.Errorf("statements %d-%d (-first +second):\n%s", i, j, diff)
			}
		}
	}
}

func TestClassificationIsComplete(t *testing.T) {
	tr, stmts := scenario()
	for i := range stmts {
		for j := i; j < len(stmts); j++ {
			referenced := map[tree.Binding]bool{}
			observe := ReducerFunc(func(e Event) {
				if e.Kind == NameRef && e.Phase == Selected {
					referenced[e.Access.Binding] = true
				}
			})
			sorted := func(set map[tree.Binding]bool) []string {
				result := []string{}
				for b := range set {
					result = append(result, b.Name())
				}
				sort.Strings(result)
				return result
			}
			v := Analyze(tr, tree.Select(stmts[i], stmts[j]), WithObserver(observe))
			if !v.Legal {
				continue
			}

			args := map[tree.Binding]bool{}
			for _, b := range v.Arguments {
				args[b] = true
			}
			classified := map[tree.Binding]bool{}
			for _, b := range v.Arguments {
				classified[b] = true
			}
			for _, b := range v.ExtractedLocals {
				if args[b] {
					t.Errorf("statements %d-%d: %s is both an argument and a local", i, j, b.Name())
				}
				classified[b] = true
			}
			for _, b := range v.CallerLocals {
				if args[b] {
					t.Errorf("statements %d-%d: %s is both an argument and a caller local", i, j, b.Name())
				}
				classified[b] = true
			}
			if diff := cmp.Diff(sorted(referenced), sorted(classified)); diff != "" {
				t.Errorf("statements %d-%d: classified bindings (-referenced +classified):\n%s", i, j, diff)
			}
		}
	}
}

func TestReplay(t *testing.T) {
	tr, stmts := scenario()
	sel := tree.Select(stmts[1], stmts[2])
	var events []Event
	v := Analyze(tr, sel, WithObserver(ReducerFunc(func(e Event) {
		events = append(events, e)
	})))

	locals := newLocalsAnalyzer(tr, sel)
	Replay(events, locals)
	result := locals.result()
	assertNames(t, "arguments", names(v.Arguments), result.arguments)
	assertNames(t, "extracted locals", names(v.ExtractedLocals), result.extracted)
	if result.returnValue != v.ReturnValue {
		t.Errorf("expected return value %v, got %v", v.ReturnValue, result.returnValue)
	}
}

func TestSelectedAccesses(t *testing.T) {
	tr, stmts := scenario()
	sel := tree.Select(stmts[2], stmts[2])
	var events []Event
	Analyze(tr, sel, WithObserver(ReducerFunc(func(e Event) {
		events = append(events, e)
	})))
	locals := newLocalsAnalyzer(tr, sel)
	Replay(events, locals)

	var got []string
	for _, a := range locals.SelectedAccesses() {
		got = append(got, a.String())
	}
	if diff := cmp.Diff([]string{"read b", "write b", "read c"}, got); diff != "" {
		t.Errorf("selected accesses (-want +got):\n%s", diff)
	}
}

func TestAccessModes(t *testing.T) {
	tests := []struct {
		name string
		stmt func(x, y *tree.Var) *tree.Spec
		want []string
	}{
		{"assignment", func(x, y *tree.Var) *tree.Spec { return tree.Set(x, tree.Ref(y)) }, []string{"read y", "write x"}},
		{"compound assignment", func(x, y *tree.Var) *tree.Spec { return tree.Update(x, tree.Lit()) }, []string{"read x", "write x"}},
		{"increment", func(x, y *tree.Var) *tree.Spec { return tree.Incr(x) }, []string{"read x", "write x"}},
		{"declaration", func(x, y *tree.Var) *tree.Spec { return tree.Declare(x, tree.Ref(y)) }, []string{"read y", "write x"}},
		{"uninitialized declaration", func(x, y *tree.Var) *tree.Spec { return tree.Declare(x, nil) }, nil},
		{"read", func(x, y *tree.Var) *tree.Spec { return tree.Eval(tree.Op(tree.Ref(x), tree.Ref(y))) }, []string{"read x", "read y"}},
	}
	for _, tt := range tests {
		x := tree.NewVar("x", tree.Local, nil)
		y := tree.NewVar("y", tree.Parameter, nil)
		stmt := tt.stmt(x, y)
		body := []*tree.Spec{stmt}
		if stmt.Kind != tree.LocalDecl {
			body = append([]*tree.Spec{tree.Declare(x, nil)}, body...)
		}
		tr := method(true, []*tree.Var{y}, body...)

		var events []Event
		Analyze(tr, stmt.Extent(), WithObserver(ReducerFunc(func(e Event) {
			events = append(events, e)
		})))
		locals := newLocalsAnalyzer(tr, stmt.Extent())
		Replay(events, locals)

		var got []string
		for _, a := range locals.SelectedAccesses() {
			got = append(got, a.String())
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: selected accesses (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestBatch(t *testing.T) {
	tr, stmts := scenario()
	extents := make([]text.Extent, 0, len(stmts))
	for _, s := range stmts {
		extents = append(extents, s.Extent())
	}
	verdicts, err := Batch(context.Background(), tr, extents, WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(verdicts) != len(extents) {
		t.Fatalf("expected %d verdicts, got %d", len(extents), len(verdicts))
	}
	for i, v := range verdicts {
		if expected := Analyze(tr, extents[i]); v.String() != expected.String() {
			t.Errorf("selection %d: expected %s, got %s", i, expected, v)
		}
	}
}

func TestBatchCancelled(t *testing.T) {
	tr, stmts := scenario()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Batch(ctx, tr, []text.Extent{stmts[0].Extent()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWalk(t *testing.T) {
	tr, _ := scenario()
	all := 0
	Walk(tr, tr.Root, func(*tree.Node) Step { all++; return Continue }, func(*tree.Node) {})
	if all != tr.Len() {
		t.Errorf("expected to visit %d nodes, visited %d", tr.Len(), all)
	}

	visited, left := 0, 0
	Walk(tr, tr.Root, func(n *tree.Node) Step {
		visited++
		if n.Kind == tree.Method {
			return SkipChildren
		}
		return Continue
	}, func(*tree.Node) { left++ })
	if visited != 2 || left != 1 {
		t.Errorf("expected to visit the file and method, leaving only the file; visited %d, left %d", visited, left)
	}

	step := Walk(tr, tr.Root, func(n *tree.Node) Step {
		if n.Kind == tree.Method {
			return Abort("found")
		}
		return Continue
	}, func(*tree.Node) { t.Error("no node should be left after an abort") })
	if !step.Aborted() || step.Reason() != "found" {
		t.Errorf("expected an aborted walk, got %+v", step)
	}
}
