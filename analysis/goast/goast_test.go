// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goast_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/godoctor/extractcheck/analysis/extract"
	"github.com/godoctor/extractcheck/analysis/goast"
	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/text"
	"github.com/google/go-cmp/cmp"
)

func build(t *testing.T, src string) *tree.Tree {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}
	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
	}
	var conf types.Config
	if _, err := conf.Check("p", fset, []*ast.File{file}, info); err != nil {
		t.Fatal(err)
	}
	return goast.Build(fset, file, info)
}

// analyze analyzes the first occurrence of selected in src.
func analyze(t *testing.T, src, selected string) *extract.Verdict {
	offset := strings.Index(src, selected)
	if offset < 0 {
		t.Fatalf("%q not found", selected)
	}
	sel := text.Extent{Offset: offset, Length: len(selected)}
	return extract.Analyze(build(t, src), sel,
		extract.WithClassifier(text.NewBoundary([]byte(src))))
}

func names(bindings []tree.Binding) []string {
	result := []string{}
	for _, b := range bindings {
		result = append(result, b.Name())
	}
	return result
}

func hasDiagnostic(v *extract.Verdict, kind extract.DiagnosticKind) bool {
	for _, d := range v.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func assertLegal(t *testing.T, v *extract.Verdict, kind extract.ReturnKind, args ...string) {
	t.Helper()
	if !v.Legal {
		t.Fatalf("expected legal selection, got %s", v)
	}
	if v.ReturnKind != kind {
		t.Errorf("return kind: expected %s, got %s", kind, v.ReturnKind)
	}
	if args == nil {
		args = []string{}
	}
	if diff := cmp.Diff(args, names(v.Arguments)); diff != "" {
		t.Errorf("arguments (-want +got):\n%s", diff)
	}
}

const assignments = `package p

func f(a int) int {
	x := a + 1
	y := x * 2
	return y
}
`

func TestStatementsAssigningLocal(t *testing.T) {
	v := analyze(t, assignments, "x := a + 1\n\ty := x * 2")
	assertLegal(t, v, extract.ReturnAccessToLocal, "a")
	if v.ReturnValue == nil || v.ReturnValue.Name() != "y" {
		t.Errorf("expected y to be returned, got %v", v.ReturnValue)
	}
	if diff := cmp.Diff([]string{"x", "y"}, names(v.ExtractedLocals)); diff != "" {
		t.Errorf("extracted locals (-want +got):\n%s", diff)
	}
}

func TestExpression(t *testing.T) {
	v := analyze(t, assignments, "a + 1")
	assertLegal(t, v, extract.ReturnExpression, "a")
}

func TestEndsMidStatement(t *testing.T) {
	v := analyze(t, assignments, "x := a + 1\n\ty := x")
	if !hasDiagnostic(v, extract.EndsMidStatement) {
		t.Fatalf("expected EndsMidStatement, got %s", v)
	}
}

func TestStartsMidToken(t *testing.T) {
	src := `package p

func f() int {
	alpha := 1
	return alpha
}
`
	v := analyze(t, src, "pha := 1")
	if !hasDiagnostic(v, extract.InvalidBoundary) {
		t.Fatalf("expected InvalidBoundary, got %s", v)
	}
}

const returns = `package p

func g(a int) int {
	if a > 0 {
		return 1
	}
	return 2
}
`

func TestPartialReturn(t *testing.T) {
	v := analyze(t, returns, "if a > 0 {\n\t\treturn 1\n\t}")
	if !hasDiagnostic(v, extract.PartialReturn) {
		t.Fatalf("expected PartialReturn, got %s", v)
	}
}

func TestAllPathsReturn(t *testing.T) {
	v := analyze(t, returns, "if a > 0 {\n\t\treturn 1\n\t}\n\treturn 2")
	assertLegal(t, v, extract.ReturnStatementValue, "a")
}

func TestSingleReturn(t *testing.T) {
	v := analyze(t, returns, "return 2")
	if !hasDiagnostic(v, extract.SingleReturnNotExtractable) {
		t.Fatalf("expected SingleReturnNotExtractable, got %s", v)
	}
}

const loop = `package p

func h(xs []int) int {
	s := 0
	for _, x := range xs {
		if x < 0 {
			break
		}
		s += x
	}
	return s
}
`

func TestBreakOutOfSelection(t *testing.T) {
	v := analyze(t, loop, "if x < 0 {\n\t\t\tbreak\n\t\t}")
	if !hasDiagnostic(v, extract.UnresolvedBranch) {
		t.Fatalf("expected UnresolvedBranch, got %s", v)
	}
}

func TestWholeLoop(t *testing.T) {
	start := strings.Index(loop, "for _, x")
	end := strings.Index(loop, "\n\treturn s")
	v := analyze(t, loop, loop[start:end])
	assertLegal(t, v, extract.ReturnAccessToLocal, "xs", "s")
	if diff := cmp.Diff([]string{"x"}, names(v.ExtractedLocals)); diff != "" {
		t.Errorf("extracted locals (-want +got):\n%s", diff)
	}
}

func TestPanicIsThrow(t *testing.T) {
	src := `package p

func k(a int) int {
	if a < 0 {
		panic("negative")
	}
	return a
}
`
	tr := build(t, src)
	if !strings.Contains(tr.String(), "Throw") {
		t.Fatalf("expected a throw statement in\n%s", tr)
	}
	v := analyze(t, src, "if a < 0 {\n\t\tpanic(\"negative\")\n\t}")
	assertLegal(t, v, extract.ReturnNone, "a")
}

func TestFunctionLiteral(t *testing.T) {
	src := `package p

var fn = func(a int) int {
	b := a * 2
	return b
}
`
	v := analyze(t, src, "b := a * 2")
	assertLegal(t, v, extract.ReturnAccessToLocal, "a")
	if v.ReturnValue == nil || v.ReturnValue.Name() != "b" {
		t.Errorf("expected b to be returned, got %v", v.ReturnValue)
	}
}

func TestBareReturnReadsNamedResult(t *testing.T) {
	src := `package p

func m(a int) (r int) {
	r = a * 2
	return
}
`
	v := analyze(t, src, "r = a * 2")
	assertLegal(t, v, extract.ReturnAccessToLocal, "a")
	if v.ReturnValue == nil || v.ReturnValue.Name() != "r" {
		t.Fatalf("expected r to be returned, got %v", v.ReturnValue)
	}
	if v.ReturnValue.Kind() != tree.Parameter {
		t.Errorf("expected r to be a parameter, got %s", v.ReturnValue.Kind())
	}
}

func TestGlobalsAreIgnored(t *testing.T) {
	src := `package p

var counter int

func n(a int) {
	counter += a
	println(counter)
}
`
	v := analyze(t, src, "counter += a")
	assertLegal(t, v, extract.ReturnNone, "a")
}

func TestSwitch(t *testing.T) {
	src := `package p

func sw(a int) int {
	switch a {
	case 0:
		return 10
	default:
		return 20
	}
}
`
	start := strings.Index(src, "switch a")
	end := strings.LastIndex(src, "}\n}") + 1
	v := analyze(t, src, src[start:end])
	assertLegal(t, v, extract.ReturnStatementValue, "a")
}

const stores = `package p

type point struct{ x, y int }

func st(p *point, xs []int) {
	var v point
	var arr [2]int
	v.x = 1
	arr[0] = 2
	p.x = 3
	xs[0] = 4
	v.y++
	println(v.x, arr[0], p.x, xs[0])
}
`

func TestStoreIntoValueWritesVariable(t *testing.T) {
	tests := []struct {
		selected string
		args     []string
		returned string
	}{
		{"v.x = 1", []string{"v"}, "v"},
		{"arr[0] = 2", []string{"arr"}, "arr"},
		{"p.x = 3", []string{"p"}, ""},
		{"xs[0] = 4", []string{"xs"}, ""},
		{"v.y++", []string{"v"}, "v"},
	}
	for _, tt := range tests {
		v := analyze(t, stores, tt.selected)
		if !v.Legal {
			t.Errorf("%s: expected legal selection, got %s", tt.selected, v)
			continue
		}
		if diff := cmp.Diff(tt.args, names(v.Arguments)); diff != "" {
			t.Errorf("%s: arguments (-want +got):\n%s", tt.selected, diff)
		}
		returned := ""
		if v.ReturnValue != nil {
			returned = v.ReturnValue.Name()
		}
		if returned != tt.returned {
			t.Errorf("%s: expected return value %q, got %q", tt.selected, tt.returned, returned)
		}
	}
}
