// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refactoring

import (
	"bytes"
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"strings"

	"github.com/godoctor/extractcheck/analysis/extract"
	"github.com/godoctor/extractcheck/analysis/goast"
	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/text"
)

// The ExtractFunc check determines whether each selected region of a Go
// source file can be extracted into a new function without changing the
// behavior of the program, and, if so, what the new function's parameters
// and results would be.  It does not change any files.
type ExtractFunc struct {
	refactoringBase
}

func (r *ExtractFunc) Description() *Description {
	return &Description{
		Name:      "Extract Function",
		Synopsis:  "Checks whether statements can be extracted to a new function",
		Usage:     "",
		Multifile: false,
		Hidden:    false,
	}
}

func (r *ExtractFunc) Run(ctx context.Context, config *Config) *Result {
	if r.refactoringBase.Run(ctx, config); r.file == nil {
		return &r.Result
	}

	pkg, file := r.program.File(r.file)
	if file == nil || pkg.TypesInfo == nil {
		r.Log.Errorf("The selected file, %s, was not type checked",
			r.filename())
		return &r.Result
	}

	src, err := r.contents(config)
	if err != nil {
		r.Log.Errorf("Unable to read %s: %v", r.filename(), err)
		return &r.Result
	}

	t := goast.Build(r.program.Fset, file, pkg.TypesInfo)
	verdicts, err := extract.Batch(ctx, t, r.extents,
		extract.WithClassifier(text.NewBoundary(src)),
		extract.WithWorkers(config.Workers))
	if err != nil {
		r.Log.Errorf("Analysis of %s was interrupted: %v",
			r.filename(), err)
		return &r.Result
	}

	for i, v := range verdicts {
		ext := r.extents[i]
		start := r.file.Pos(ext.Offset)
		end := r.file.Pos(ext.OffsetPastEnd())
		c := Check{
			Selection: config.Selections[i],
			Filename:  r.filename(),
			Extent:    ext,
			Func:      r.program.EnclosingFunc(start, end),
			Verdict:   v,
		}
		r.Checks = append(r.Checks, c)
		r.report(c, pkg.Types, r.resultType(v, pkg.TypesInfo, start, end),
			config.Verbose)
	}
	return &r.Result
}

// contents returns the text of the selected file.  The file was already
// read by the loader; it is read again only to find token boundaries.
func (r *ExtractFunc) contents(config *Config) ([]byte, error) {
	if src, ok := config.Overlay[r.filename()]; ok {
		return src, nil
	}
	return os.ReadFile(r.filename())
}

// resultType returns the type of the value the extracted function would
// return, or nil.
func (r *ExtractFunc) resultType(v *extract.Verdict, info *types.Info, start, end token.Pos) types.Type {
	switch v.ReturnKind {
	case extract.ReturnAccessToLocal:
		return goTypeOf(v.ReturnValue)
	case extract.ReturnExpression:
		_, path, _ := r.program.PathEnclosingInterval(start, end)
		for _, n := range path {
			if e, ok := n.(ast.Expr); ok {
				return info.TypeOf(e)
			}
		}
	case extract.ReturnStatementValue:
		_, path, _ := r.program.PathEnclosingInterval(start, end)
		for _, n := range path {
			var sig types.Type
			switch f := n.(type) {
			case *ast.FuncLit:
				sig = info.TypeOf(f)
			case *ast.FuncDecl:
				if obj := info.Defs[f.Name]; obj != nil {
					sig = obj.Type()
				}
			default:
				continue
			}
			if sig, ok := sig.(*types.Signature); ok {
				if sig.Results().Len() == 1 {
					return sig.Results().At(0).Type()
				}
				return sig.Results()
			}
			return nil
		}
	}
	return nil
}

func (r *ExtractFunc) report(c Check, pkg *types.Package, result types.Type, verbose bool) {
	for _, d := range c.Verdict.Diagnostics {
		r.Log.Diagnostic(c.Filename, d)
	}
	if !verbose || !c.Verdict.Legal {
		return
	}
	r.Log.Infof("Selection can be extracted as %s (%s)",
		Signature(c.Verdict, pkg, result), c.Verdict.ReturnKind)
	r.Log.AssociateExtent(c.Filename, c.Extent)
	if len(c.Verdict.CallerLocals) > 0 {
		r.Log.Infof("Declarations of %s must remain in %s",
			joinNames(c.Verdict.CallerLocals), funcName(c.Func))
		r.Log.AssociateExtent(c.Filename, c.Extent)
	}
}

func funcName(fn string) string {
	if fn == "" {
		return "the enclosing function"
	}
	return fn
}

func joinNames(vars []tree.Binding) string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name()
	}
	return strings.Join(names, ", ")
}

// Signature returns the signature of the function that an extractable
// selection would be extracted into, e.g., "func(a int, s []string) int".
// Types are qualified relative to pkg.  The result type, if any, is given
// by result.
func Signature(v *extract.Verdict, pkg *types.Package, result types.Type) string {
	qual := types.RelativeTo(pkg)
	var buf bytes.Buffer
	buf.WriteString("func(")
	for i, b := range v.Arguments {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(b.Name())
		if t := goTypeOf(b); t != nil {
			buf.WriteString(" ")
			buf.WriteString(types.TypeString(t, qual))
		}
	}
	buf.WriteString(")")
	if result != nil {
		buf.WriteString(" ")
		buf.WriteString(types.TypeString(result, qual))
	}
	return buf.String()
}

func goTypeOf(b tree.Binding) types.Type {
	if v, ok := b.(*goast.Var); ok {
		return v.Object().Type()
	}
	return nil
}
