// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package goast

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/godoctor/extractcheck/analysis/tree"
)

func (b *builder) stmts(parent tree.NodeID, list []ast.Stmt) {
	for _, s := range list {
		b.stmt(parent, s, tree.NoRole)
	}
}

func (b *builder) stmt(parent tree.NodeID, stmt ast.Stmt, role tree.Role) {
	switch s := stmt.(type) {
	case nil, *ast.EmptyStmt:
		// nothing to analyze

	case *ast.BlockStmt:
		id := b.add(parent, s, tree.Block, role)
		b.stmts(id, s.List)

	case *ast.ExprStmt:
		if call, ok := s.X.(*ast.CallExpr); ok && b.isPanic(call) {
			id := b.add(parent, s, tree.Throw, role)
			b.exprs(id, call.Args, tree.NoRole)
			return
		}
		id := b.add(parent, s, tree.ExprStmt, role)
		b.expr(id, s.X, tree.NoRole)

	case *ast.DeclStmt:
		b.declStmt(parent, s, role)

	case *ast.AssignStmt:
		id := b.add(parent, s, tree.Assign, role)
		b.tree.Node(id).Compound = s.Tok != token.ASSIGN && s.Tok != token.DEFINE
		for _, lhs := range s.Lhs {
			b.target(id, lhs, tree.LHS)
		}
		b.exprs(id, s.Rhs, tree.RHS)

	case *ast.IncDecStmt:
		id := b.add(parent, s, tree.IncDec, role)
		b.target(id, s.X, tree.NoRole)

	case *ast.ReturnStmt:
		id := b.add(parent, s, tree.Return, role)
		named := b.results[len(b.results)-1]
		b.tree.Node(id).HasValue = len(s.Results) > 0 || len(named) > 0
		b.exprs(id, s.Results, tree.NoRole)
		if len(s.Results) == 0 {
			// a bare return reads the named results
			for _, name := range named {
				b.tree.Add(id, tree.Node{
					Kind:    tree.Name,
					Start:   b.offset(s.Return),
					End:     b.offset(s.Return) + len("return"),
					Binding: b.binding(name),
				})
			}
		}

	case *ast.BranchStmt:
		kind := map[token.Token]tree.Kind{
			token.BREAK:       tree.Break,
			token.CONTINUE:    tree.Continue,
			token.GOTO:        tree.Goto,
			token.FALLTHROUGH: tree.Fallthrough,
		}[s.Tok]
		id := b.add(parent, s, kind, role)
		if s.Label != nil {
			b.tree.Node(id).Label = s.Label.Name
		}

	case *ast.LabeledStmt:
		id := b.add(parent, s, tree.Labeled, role)
		b.tree.Node(id).Label = s.Label.Name
		b.stmt(id, s.Stmt, tree.NoRole)

	case *ast.IfStmt:
		id := b.add(parent, s, tree.If, role)
		b.stmt(id, s.Init, tree.Init)
		b.expr(id, s.Cond, tree.Cond)
		b.stmt(id, s.Body, tree.Then)
		b.stmt(id, s.Else, tree.Else)

	case *ast.ForStmt:
		id := b.add(parent, s, tree.Loop, role)
		b.stmt(id, s.Init, tree.Init)
		b.expr(id, s.Cond, tree.Cond)
		b.stmt(id, s.Post, tree.Post)
		b.stmt(id, s.Body, tree.Body)

	case *ast.RangeStmt:
		id := b.add(parent, s, tree.Loop, role)
		if s.Key != nil && s.Tok != token.ILLEGAL {
			// each iteration assigns the key and value
			end := s.Key.End()
			if s.Value != nil {
				end = s.Value.End()
			}
			assign := b.tree.Add(id, tree.Node{
				Kind:  tree.Assign,
				Role:  tree.Init,
				Start: b.offset(s.Key.Pos()),
				End:   b.offset(end),
			})
			b.target(assign, s.Key, tree.LHS)
			b.target(assign, s.Value, tree.LHS)
		}
		b.expr(id, s.X, tree.Cond)
		b.stmt(id, s.Body, tree.Body)

	case *ast.SwitchStmt:
		id := b.add(parent, s, tree.Switch, role)
		b.stmt(id, s.Init, tree.Init)
		b.expr(id, s.Tag, tree.Cond)
		b.clauses(id, s.Body)

	case *ast.TypeSwitchStmt:
		id := b.add(parent, s, tree.Switch, role)
		b.stmt(id, s.Init, tree.Init)
		// the symbol of x := y.(type) is bound separately in each clause
		switch a := s.Assign.(type) {
		case *ast.AssignStmt:
			b.exprs(id, a.Rhs, tree.Cond)
		case *ast.ExprStmt:
			b.expr(id, a.X, tree.Cond)
		}
		b.clauses(id, s.Body)

	case *ast.SelectStmt:
		id := b.add(parent, s, tree.Switch, role)
		b.clauses(id, s.Body)

	case *ast.CaseClause:
		id := b.add(parent, s, tree.Case, role)
		b.tree.Node(id).Default = s.List == nil
		b.exprs(id, s.List, tree.Cond)
		b.stmts(id, s.Body)

	case *ast.CommClause:
		id := b.add(parent, s, tree.Case, role)
		b.tree.Node(id).Default = s.Comm == nil
		b.stmt(id, s.Comm, tree.Init)
		b.stmts(id, s.Body)

	case *ast.GoStmt:
		id := b.add(parent, s, tree.Stmt, role)
		b.expr(id, s.Call, tree.NoRole)

	case *ast.DeferStmt:
		id := b.add(parent, s, tree.Stmt, role)
		b.expr(id, s.Call, tree.NoRole)

	case *ast.SendStmt:
		id := b.add(parent, s, tree.Stmt, role)
		b.expr(id, s.Chan, tree.NoRole)
		b.expr(id, s.Value, tree.NoRole)

	default:
		b.add(parent, s, tree.Stmt, role)
	}
}

// clauses adds the clauses of a switch or select statement directly to the
// statement, without the enclosing braces.
func (b *builder) clauses(parent tree.NodeID, body *ast.BlockStmt) {
	for _, c := range body.List {
		b.stmt(parent, c, tree.NoRole)
	}
}

// declStmt adds a declaration inside a function body.  Every declared
// variable is initialized, explicitly or with its zero value.
func (b *builder) declStmt(parent tree.NodeID, s *ast.DeclStmt, role tree.Role) {
	d, ok := s.Decl.(*ast.GenDecl)
	if !ok {
		b.add(parent, s, tree.Stmt, role)
		return
	}
	switch d.Tok {
	case token.VAR:
		id := b.add(parent, s, tree.LocalDecl, role)
		for _, spec := range d.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, name := range vs.Names {
				decl := b.add(id, name, tree.Declarator, tree.NoRole)
				n := b.tree.Node(decl)
				n.Initialized = true
				n.Binding = b.binding(name)
			}
			b.exprs(id, vs.Values, tree.Value)
		}
	case token.TYPE:
		b.add(parent, s, tree.TypeDecl, role)
	default:
		b.add(parent, s, tree.Stmt, role)
	}
}

func (b *builder) exprs(parent tree.NodeID, list []ast.Expr, role tree.Role) {
	for _, e := range list {
		b.expr(parent, e, role)
	}
}

func (b *builder) expr(parent tree.NodeID, expr ast.Expr, role tree.Role) {
	switch e := expr.(type) {
	case nil:
		// absent

	case *ast.Ident:
		id := b.add(parent, e, tree.Name, role)
		b.tree.Node(id).Binding = b.binding(e)

	case *ast.FuncLit:
		b.funcLit(parent, e, role)

	case *ast.CallExpr:
		id := b.add(parent, e, tree.Call, role)
		b.tree.Node(id).Text = types.ExprString(e.Fun)
		b.expr(id, e.Fun, tree.NoRole)
		b.exprs(id, e.Args, tree.NoRole)

	case *ast.SelectorExpr:
		// Sel names a field, method, or package member; never a local
		id := b.add(parent, e, tree.Expr, role)
		b.expr(id, e.X, tree.NoRole)

	default:
		id := b.add(parent, e, tree.Expr, role)
		ast.Inspect(e, func(n ast.Node) bool {
			if n == ast.Node(e) {
				return true
			}
			if c, ok := n.(ast.Expr); ok {
				b.expr(id, c, tree.NoRole)
			}
			return false
		})
	}
}

// target adds the target of an assignment or increment.  Storing into a
// field or array element held directly in a variable also writes that
// variable, so the variable is added as a target of its own.
func (b *builder) target(parent tree.NodeID, e ast.Expr, role tree.Role) {
	b.expr(parent, e, role)
	if _, ok := e.(*ast.Ident); ok || e == nil {
		return
	}
	if root := b.storedIn(e); root != nil {
		if v := b.binding(root); v != nil {
			id := b.add(parent, root, tree.Name, role)
			b.tree.Node(id).Binding = v
		}
	}
}

// storedIn returns the variable that holds the storage denoted by e, or nil
// if e reaches that storage through a pointer, slice, or map.
func (b *builder) storedIn(e ast.Expr) *ast.Ident {
	for {
		switch x := astutil.Unparen(e).(type) {
		case *ast.Ident:
			return x
		case *ast.SelectorExpr:
			sel, ok := b.info.Selections[x]
			if !ok || sel.Kind() != types.FieldVal || sel.Indirect() {
				return nil
			}
			e = x.X
		case *ast.IndexExpr:
			typ := b.info.TypeOf(x.X)
			if typ == nil {
				return nil
			}
			if _, ok := typ.Underlying().(*types.Array); !ok {
				return nil
			}
			e = x.X
		default:
			return nil
		}
	}
}

// isPanic returns true iff call invokes the built-in panic function.
func (b *builder) isPanic(call *ast.CallExpr) bool {
	id, ok := astutil.Unparen(call.Fun).(*ast.Ident)
	if !ok {
		return false
	}
	builtin, ok := b.info.Uses[id].(*types.Builtin)
	return ok && builtin.Name() == "panic"
}
