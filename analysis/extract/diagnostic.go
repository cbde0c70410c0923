// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"fmt"

	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/text"
)

// A DiagnosticKind identifies a reason a selection cannot be extracted.
type DiagnosticKind int

const (
	InvalidBoundary DiagnosticKind = iota + 1
	EndsMidStatement
	NoEnclosingMethod
	MixedParents
	SingleReturnNotExtractable
	UnresolvedBranch
	PartialReturn
	AmbiguousReturnValue
	MultipleReturnCandidates
)

var diagnosticNames = map[DiagnosticKind]string{
	InvalidBoundary:            "InvalidBoundary",
	EndsMidStatement:           "EndsMidStatement",
	NoEnclosingMethod:          "NoEnclosingMethod",
	MixedParents:               "MixedParents",
	SingleReturnNotExtractable: "SingleReturnNotExtractable",
	UnresolvedBranch:           "UnresolvedBranch",
	PartialReturn:              "PartialReturn",
	AmbiguousReturnValue:       "AmbiguousReturnValue",
	MultipleReturnCandidates:   "MultipleReturnCandidates",
}

func (k DiagnosticKind) String() string {
	if s, ok := diagnosticNames[k]; ok {
		return s
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// A Diagnostic explains why a selection cannot be extracted.  Every
// diagnostic is fatal to the analysis that produced it.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	// Node is the offending node, or tree.NoNode.
	Node tree.NodeID
	// Extent is the offending region of text.
	Extent text.Extent
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

type diagnostics []Diagnostic

func (ds *diagnostics) add(kind DiagnosticKind, node tree.NodeID, ext text.Extent, format string, args ...interface{}) {
	*ds = append(*ds, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Node:    node,
		Extent:  ext,
	})
}

func (ds diagnostics) has(kind DiagnosticKind) bool {
	for _, d := range ds {
		if d.Kind == kind {
			return true
		}
	}
	return false
}
