// Package loader wraps golang.org/x/tools/go/packages with utility types and methods
package loader

// Selections are analyzed one file at a time, but the file must be type
// checked as part of its package so that every identifier resolves to the
// variable it denotes.  This package loads the packages that contain the
// selected files and finds the syntax and type information for each file.

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"
)

// Mode is the set of packages.Load mode bits needed to analyze a file.
// Dependencies are loaded from export data, not from source.
const Mode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

// Program provides access to various elements of a type checked set of packages.
type Program struct {
	// Fset contains the entire program Fset
	Fset *token.FileSet

	// AllPackages is the list of all loaded packages for a program.
	AllPackages map[*types.Package]*packages.Package
}

// Load loads the packages named by args, calling packages.Load.  Errors in
// the loaded packages (syntax errors, type errors, missing imports) are
// passed to errorH; they do not prevent the remaining packages from being
// analyzed.  Only an error locating the packages is returned.
func Load(conf *packages.Config, errorH func(error), args ...string) (*Program, error) {
	conf.Mode = Mode
	conf.Tests = false

	if conf.Fset == nil {
		conf.Fset = token.NewFileSet()
	}
	roots, err := packages.Load(conf, args...)
	if err != nil {
		return nil, err
	}

	pkgs := make(map[*types.Package]*packages.Package, len(roots))
	packages.Visit(roots, nil, func(pkg *packages.Package) {
		if pkg.Types != nil {
			pkgs[pkg.Types] = pkg
		}
		for _, err := range pkg.Errors {
			if errorH != nil {
				errorH(err)
			}
		}
	})

	return &Program{
		Fset:        conf.Fset,
		AllPackages: pkgs,
	}, nil
}

// File returns the package and syntax tree of the loaded file tf, or nil
// if no loaded package contains that file.
func (prog *Program) File(tf *token.File) (*packages.Package, *ast.File) {
	for _, pkg := range prog.AllPackages {
		for _, f := range pkg.Syntax {
			if prog.Fset.File(f.Pos()) == tf {
				return pkg, f
			}
		}
	}
	return nil, nil
}

// PathEnclosingInterval returns the package and ast.Node that
// contain source interval [start, end), and all the node's ancestors
// up to the AST root.  It searches all ast.Files of all packages in prog.
// exact is defined as for astutil.PathEnclosingInterval.
//
// The zero value is returned if not found.
func (prog *Program) PathEnclosingInterval(start, end token.Pos) (pkg *packages.Package, path []ast.Node, exact bool) {
	for _, info := range prog.AllPackages {
		for _, f := range info.Syntax {
			if f.Pos() == token.NoPos {
				// This can happen if the parser saw
				// too many errors and bailed out.
				continue
			}
			if !tokenFileContainsPos(prog.Fset.File(f.Pos()), start) {
				continue
			}
			if path, exact := astutil.PathEnclosingInterval(f, start, end); path != nil {
				return info, path, exact
			}
		}
	}
	return nil, nil, false
}

// EnclosingFunc returns the name of the innermost function declaration
// containing the interval [start, end), or the empty string.  Function
// literals are skipped.
func (prog *Program) EnclosingFunc(start, end token.Pos) string {
	_, path, _ := prog.PathEnclosingInterval(start, end)
	for _, n := range path {
		if fd, ok := n.(*ast.FuncDecl); ok {
			return fd.Name.Name
		}
	}
	return ""
}

func tokenFileContainsPos(f *token.File, pos token.Pos) bool {
	if f == nil {
		return false
	}
	p := int(pos)
	base := f.Base()
	return base <= p && p <= base+f.Size()
}
