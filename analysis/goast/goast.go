// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package goast converts type-checked Go syntax into the language-neutral
// trees analyzed by package extract.
//
// Go has no checked exceptions, so calls in trees built by this package
// never declare thrown types; a call of the built-in panic function is
// represented as a throw statement.
package goast

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/godoctor/extractcheck/analysis/tree"
)

// A Var is a Binding for a variable declared in Go source.
type Var struct {
	obj  *types.Var
	pos  int
	kind tree.BindingKind
}

func (v *Var) Name() string           { return v.obj.Name() }
func (v *Var) Pos() int               { return v.pos }
func (v *Var) Kind() tree.BindingKind { return v.kind }
func (v *Var) Type() tree.Type        { return goType{v.obj.Type()} }
func (v *Var) String() string         { return v.obj.Name() }

// Object returns the underlying type checker object.
func (v *Var) Object() *types.Var { return v.obj }

// goType adapts a go/types type.  Go types are never checked exceptions.
type goType struct{ typ types.Type }

func (t goType) Name() string  { return t.typ.String() }
func (t goType) Checked() bool { return false }

func (t goType) AssignableTo(other tree.Type) bool {
	if o, ok := other.(goType); ok {
		return types.AssignableTo(t.typ, o.typ)
	}
	return false
}

// A builder constructs a tree from one file.
type builder struct {
	fset   *token.FileSet
	file   *token.File
	info   *types.Info
	tree   *tree.Tree
	vars   map[*types.Var]*Var
	params map[*types.Var]bool
	// results holds the named results of each enclosing function; a bare
	// return reads them
	results [][]*ast.Ident
}

// Build returns the tree for the given file.  The offsets of the tree are
// byte offsets within the file.
func Build(fset *token.FileSet, file *ast.File, info *types.Info) *tree.Tree {
	b := &builder{
		fset:   fset,
		file:   fset.File(file.Pos()),
		info:   info,
		tree:   tree.New(),
		vars:   make(map[*types.Var]*Var),
		params: make(map[*types.Var]bool),
	}
	root := b.add(tree.NoNode, file, tree.File, tree.NoRole)
	for _, decl := range file.Decls {
		b.decl(root, decl)
	}
	b.tree.SetEnd(root, b.file.Size())
	return b.tree
}

func (b *builder) offset(pos token.Pos) int {
	return b.file.Offset(pos)
}

func (b *builder) add(parent tree.NodeID, n ast.Node, kind tree.Kind, role tree.Role) tree.NodeID {
	return b.tree.Add(parent, tree.Node{
		Kind:  kind,
		Role:  role,
		Start: b.offset(n.Pos()),
		End:   b.offset(n.End()),
	})
}

// binding returns the Binding for the variable named by id, or nil if id
// does not name a variable.
func (b *builder) binding(id *ast.Ident) tree.Binding {
	if id.Name == "_" {
		return nil
	}
	obj, ok := b.info.ObjectOf(id).(*types.Var)
	if !ok || obj == nil {
		return nil
	}
	if v, ok := b.vars[obj]; ok {
		return v
	}
	v := &Var{obj: obj, pos: -1, kind: tree.Local}
	if obj.Pos().IsValid() && b.fset.File(obj.Pos()) == b.file {
		v.pos = b.offset(obj.Pos())
	}
	switch {
	case obj.IsField():
		v.kind = tree.Field
	case obj.Pkg() != nil && obj.Parent() == obj.Pkg().Scope():
		v.kind = tree.Global
	case b.params[obj]:
		v.kind = tree.Parameter
	case v.pos < 0:
		v.kind = tree.Global
	}
	b.vars[obj] = v
	return v
}

func (b *builder) decl(parent tree.NodeID, decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		b.funcDecl(parent, d)
	case *ast.GenDecl:
		switch d.Tok {
		case token.TYPE:
			b.add(parent, d, tree.TypeDecl, tree.NoRole)
		case token.VAR:
			// function literals in package-level initializers are
			// scopes of their own
			ast.Inspect(d, func(n ast.Node) bool {
				if f, ok := n.(*ast.FuncLit); ok {
					b.funcLit(parent, f, tree.NoRole)
					return false
				}
				return true
			})
		}
	}
}

// signature records the parameters and results of a function.  It must be
// paired with a call to endSignature.
func (b *builder) signature(recv *ast.FieldList, typ *ast.FuncType) (void bool) {
	var named []*ast.Ident
	for _, list := range []*ast.FieldList{recv, typ.Params, typ.Results} {
		if list == nil {
			continue
		}
		for _, f := range list.List {
			for _, name := range f.Names {
				if v, ok := b.info.Defs[name].(*types.Var); ok {
					b.params[v] = true
				}
				if list == typ.Results {
					named = append(named, name)
				}
			}
		}
	}
	b.results = append(b.results, named)
	return typ.Results == nil || typ.Results.NumFields() == 0
}

func (b *builder) endSignature() {
	b.results = b.results[:len(b.results)-1]
}

func (b *builder) funcDecl(parent tree.NodeID, d *ast.FuncDecl) {
	void := b.signature(d.Recv, d.Type)
	defer b.endSignature()

	id := b.add(parent, d, tree.Method, tree.NoRole)
	m := b.tree.Node(id)
	m.Void = void
	m.Text = d.Name.Name
	if d.Body != nil {
		b.stmt(id, d.Body, tree.Body)
	}
}

func (b *builder) funcLit(parent tree.NodeID, f *ast.FuncLit, role tree.Role) {
	void := b.signature(nil, f.Type)
	defer b.endSignature()

	id := b.add(parent, f, tree.Lambda, role)
	b.tree.Node(id).Void = void
	b.stmt(id, f.Body, tree.Body)
}
