// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines the text boundary classifier, which determines whether
// an offset lands between tokens (not in the middle of a token or comment).

package text

import (
	"go/scanner"
	"go/token"
	"sort"
)

// A Classifier reports whether offsets in a source file are legal places
// for a selection to start or end.
type Classifier interface {
	// IsBoundary returns false iff offset lies strictly inside a token
	// or a comment.
	IsBoundary(offset int) bool
	// OnlyTrivia returns true iff the region [start, end) contains
	// nothing but whitespace, separators, and complete comments.
	OnlyTrivia(start, end int) bool
}

// AnyBoundary is a Classifier that accepts every offset.  It is used for
// syntax trees that were not parsed from source text.
type AnyBoundary struct{}

func (AnyBoundary) IsBoundary(int) bool      { return true }
func (AnyBoundary) OnlyTrivia(int, int) bool { return true }

type span struct{ start, end int }

// A Boundary classifies offsets in Go source text.
type Boundary struct {
	tokens   []span // sorted by start
	comments []span // sorted by start
}

// NewBoundary scans the given Go source text.  Scanning errors are ignored;
// a malformed token still occupies the bytes the scanner consumed.
func NewBoundary(src []byte) *Boundary {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var s scanner.Scanner
	s.Init(file, src, nil, scanner.ScanComments)

	b := &Boundary{}
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		offset := file.Offset(pos)
		switch {
		case tok == token.COMMENT:
			b.comments = append(b.comments, span{offset, offset + len(lit)})
		case tok == token.SEMICOLON:
			// statement separators may be selected or not
		case lit != "":
			b.tokens = append(b.tokens, span{offset, offset + len(lit)})
		default:
			b.tokens = append(b.tokens, span{offset, offset + len(tok.String())})
		}
	}
	return b
}

func (b *Boundary) IsBoundary(offset int) bool {
	return !strictlyInside(b.tokens, offset) && !strictlyInside(b.comments, offset)
}

func (b *Boundary) OnlyTrivia(start, end int) bool {
	if start >= end {
		return true
	}
	if overlaps(b.tokens, start, end) {
		return false
	}
	// comments must be complete
	return !strictlyInside(b.comments, start) && !strictlyInside(b.comments, end)
}

// strictlyInside returns true iff offset lies after the first byte and
// before the end of some span.
func strictlyInside(spans []span, offset int) bool {
	i := sort.Search(len(spans), func(i int) bool {
		return spans[i].start >= offset
	})
	// spans[i-1] is the last span starting before offset
	return i > 0 && offset < spans[i-1].end
}

// overlaps returns true iff some span shares a byte with [start, end).
func overlaps(spans []span, start, end int) bool {
	i := sort.Search(len(spans), func(i int) bool {
		return spans[i].end > start
	})
	return i < len(spans) && spans[i].start < end
}
