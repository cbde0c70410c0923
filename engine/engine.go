// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine is the programmatic entrypoint to the extract function
// checker.
package engine

import (
	"fmt"
	"sort"

	"github.com/godoctor/extractcheck/refactoring"
)

// Version is the version of the checker, displayed by Name.
const Version = "0.4"

// Name returns the name and version of the checker.
func Name() string {
	return "extractcheck " + Version
}

// All available checks, keyed by a unique, one-word, all-lowercase name
var refactorings map[string]func() refactoring.Refactoring

func init() {
	refactorings = map[string]func() refactoring.Refactoring{
		"extract": func() refactoring.Refactoring {
			return new(refactoring.ExtractFunc)
		},
	}
}

// AllRefactoringNames returns the short names of all checks, sorted.
func AllRefactoringNames() []string {
	names := make([]string, 0, len(refactorings))
	for name := range refactorings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetRefactoring returns a new instance of the check with the given short
// name, or nil if there is no such check.
func GetRefactoring(shortName string) refactoring.Refactoring {
	if newRefac, ok := refactorings[shortName]; ok {
		return newRefac()
	}
	return nil
}

// AddRefactoring allows custom checks to be added to the engine.  Invoke
// this method before starting the command line driver.
func AddRefactoring(shortName string, newRefac func() refactoring.Refactoring) error {
	if _, ok := refactorings[shortName]; ok {
		return fmt.Errorf("The short name \"%s\" is already "+
			"associated with a check (%s)",
			shortName,
			GetRefactoring(shortName).Description().Name)
	}
	refactorings[shortName] = newRefac
	return nil
}
