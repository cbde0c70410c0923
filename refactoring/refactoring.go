// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines the Refactoring interface, the refactoringBase struct, and
// several methods common to checks based on refactoringBase, including
// a base implementation of the Run method.

// Package refactoring contains the refactoring checks supported by
// extractcheck, as well as types (such as refactoring.Log) used to interface
// with those checks.
package refactoring

import (
	"context"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/godoctor/extractcheck/analysis/extract"
	"github.com/godoctor/extractcheck/analysis/loader"
	"github.com/godoctor/extractcheck/text"
	"golang.org/x/tools/go/packages"
)

// The maximum number of errors from the loader that will be reported
const maxInitialErrors = 10

// Description provides information about a refactoring check suitable for
// display in a user interface.
type Description struct {
	// A human-readable name for this check, properly capitalized
	// (e.g., "Extract Function") as it would appear in a user
	// interface.  Every check should have a unique name.
	Name string
	// A brief, one-line description of the check
	Synopsis string
	// Additional input required, displayed in usage messages
	Usage string
	// Whether the check considers more than one file
	Multifile bool
	// Hidden checks are not listed in help messages
	Hidden bool
}

// An ErrorPolicy determines how errors present in the program before the
// analysis started (syntax errors, type errors) are reported.
type ErrorPolicy int

const (
	// ReportErrors logs initial errors as errors.
	ReportErrors ErrorPolicy = iota
	// DowngradeErrors logs initial errors as warnings.
	DowngradeErrors
	// IgnoreErrors removes initial errors from the log.
	IgnoreErrors
)

// ParseErrorPolicy converts "error", "warn", or "ignore" to an ErrorPolicy.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "", "error":
		return ReportErrors, nil
	case "warn", "warning":
		return DowngradeErrors, nil
	case "ignore":
		return IgnoreErrors, nil
	}
	return ReportErrors, fmt.Errorf("invalid error policy %q (valid: error, warn, ignore)", s)
}

// A Config provides the initial configuration for a check, including the
// program on which it will operate and the text selections to check.
//
// At a minimum, Selections must be set.
type Config struct {
	// A set of initial packages to load.  This slice will be passed as-is
	// to packages.Load.  If it is nil, the package containing the file of
	// the first selection is loaded.
	Scope []string
	// The ranges of text to check.  All selections must be in the same
	// file.
	Selections []text.Selection
	// Contents of files that differ from (or do not exist on) disk,
	// keyed by absolute filename, as for packages.Config.Overlay.
	Overlay map[string][]byte
	// The directory in which to run the build system.  If empty, the
	// current directory is used.
	Dir string
	// The maximum number of selections analyzed concurrently.  A value
	// less than one means GOMAXPROCS.
	Workers int
	// How errors present in the program before analysis are reported.
	InitialErrors ErrorPolicy
	// If true, the analysis results of extractable selections are
	// appended to the log.
	Verbose bool
}

// The Refactoring interface identifies methods common to all checks.
//
// The protocol for invoking a check is:
//
//  1. If necessary, invoke the Description() method to obtain the name of
//     the check.
//  2. Create a Config.  Checks are typically invoked from a text editor;
//     the Config provides the file that was open in the text editor and
//     the selected regions.
//  3. Invoke Run, which returns a Result.
//  4. If Result.Log is not empty, display the log to the user.
type Refactoring interface {
	Description() *Description
	Run(context.Context, *Config) *Result
}

// A Check is the outcome of analyzing one selection.
type Check struct {
	// The selection as given in the Config
	Selection text.Selection
	// Absolute name of the selected file
	Filename string
	// The selected region of the file
	Extent text.Extent
	// Name of the function declaration containing the selection, if any
	Func string
	// The analysis result
	Verdict *extract.Verdict
}

type Result struct {
	// A list of informational messages, errors, and warnings to display to
	// the user.  If Log.ContainsErrors() is true, at least one selection
	// cannot be extracted, or the program could not be analyzed.
	Log *Log
	// One Check per selection that could be analyzed, in the order of
	// Config.Selections
	Checks []Check
}

// Extractable returns true iff every selection was analyzed and every one
// can be extracted.
func (r *Result) Extractable(config *Config) bool {
	if len(r.Checks) != len(config.Selections) {
		return false
	}
	for _, c := range r.Checks {
		if !c.Verdict.Legal {
			return false
		}
	}
	return true
}

type refactoringBase struct {
	program *loader.Program
	// the selected file
	file *token.File
	// the selected regions of file, in order
	extents []text.Extent
	Result
}

// Base implementation of a Run method.  Most checks should invoke this
// method before performing check-specific work.  This method
// initializes the check, clears the log, loads the program, and converts
// the selections.
func (r *refactoringBase) Run(ctx context.Context, config *Config) *Result {
	r.Log = NewLog()
	r.Checks = nil
	r.file = nil
	r.extents = nil

	if len(config.Selections) == 0 {
		r.Log.Error("No selection was provided")
		return &r.Result
	}

	if config.Scope == nil {
		var msg string
		config.Scope, msg = r.guessScope(config)
		r.Log.Infof("%s", msg)
	} else {
		r.Log.Infof("Scope is %s", strings.Join(config.Scope, " "))
	}

	fset := token.NewFileSet()
	r.Log.Fset = fset
	initialErrors := 0
	var err error
	r.program, err = loader.Load(&packages.Config{
		Context: ctx,
		Dir:     config.Dir,
		Fset:    fset,
		Overlay: config.Overlay,
	}, func(err error) {
		if initialErrors < maxInitialErrors {
			r.Log.Error(err)
		}
		initialErrors++
	}, config.Scope...)

	if initialErrors > maxInitialErrors {
		r.Log.Errorf("%d more errors were not reported",
			initialErrors-maxInitialErrors)
	}
	r.Log.MarkInitial()
	switch config.InitialErrors {
	case DowngradeErrors:
		r.Log.ChangeInitialErrorsToWarnings()
	case IgnoreErrors:
		r.Log.RemoveInitialEntries()
	}

	if err != nil {
		r.Log.Errorf("Unable to load %s: %v",
			strings.Join(config.Scope, " "), err)
		return &r.Result
	} else if r.program == nil {
		r.Log.Error("INTERNAL ERROR: Loader failed")
		return &r.Result
	}

	for _, sel := range config.Selections {
		file, ext, err := sel.Convert(r.program.Fset)
		if err != nil {
			r.Log.Errorf("The selected file, %s, was not found "+
				"in the provided scope (%s): %v",
				sel.GetFilename(),
				strings.Join(config.Scope, " "), err)
			r.Log.Associate(sel.GetFilename())
			r.file = nil
			return &r.Result
		}
		if r.file != nil && r.file != file {
			r.Log.Errorf("All selections must be in the same file "+
				"(%s, %s)", r.file.Name(), file.Name())
			r.file = nil
			return &r.Result
		}
		r.file = file
		r.extents = append(r.extents, ext)
	}
	return &r.Result
}

// filename returns the absolute name of the selected file.
func (r *refactoringBase) filename() string {
	return r.file.Name()
}

// guessScope makes a reasonable guess at the scope if the user does not
// provide an explicit scope: the package containing the selected file.
func (r *refactoringBase) guessScope(config *Config) ([]string, string) {
	fname := config.Selections[0].GetFilename()
	absFilename, err := filepath.Abs(fname)
	if err != nil {
		r.Log.Error(err)
		absFilename = fname
	}
	return []string{"file=" + absFilename},
		fmt.Sprintf("Defaulting to the package containing %s "+
			"(provide an explicit scope to change this)",
			filepath.Base(fname))
}
