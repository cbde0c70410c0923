// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines Extents, which describe a region of a string or text
// file, and the interval predicates used to classify syntax nodes relative
// to a text selection.

package text

import "fmt"

// An Extent consists of two integers: a 0-based byte offset and a
// nonnegative length.  An Extent is used to specify a region of a string
// or file.  For example, given the string "ABCDEFG", the substring CDE could
// be specified by Extent{offset: 2, length: 3}.
//
// When an Extent describes a text selection, its predicates compare it
// against the half-open range [start, end) of a syntax node.
type Extent struct {
	// Byte offset of the first character (0-based)
	Offset int `json:"offset"`
	// Length in bytes (nonnegative)
	Length int `json:"length"`
}

// NewExtent returns the Extent spanning [start, end).  It panics if end
// precedes start.
func NewExtent(start, end int) Extent {
	if end < start {
		panic(fmt.Sprintf("text: invalid extent [%d,%d)", start, end))
	}
	return Extent{Offset: start, Length: end - start}
}

// OffsetPastEnd returns the offset of the first byte immediately beyond the
// end of this region.  For example, a region at offset 2 with length 3
// occupies bytes 2 through 4, so this method would return 5.
func (o Extent) OffsetPastEnd() int {
	return o.Offset + o.Length
}

// Covers returns true iff the node range [start, end) lies entirely within
// this extent.
func (o Extent) Covers(start, end int) bool {
	return o.Offset <= start && end <= o.OffsetPastEnd()
}

// CoveredBy returns true iff this extent lies entirely within [start, end).
func (o Extent) CoveredBy(start, end int) bool {
	return start <= o.Offset && o.OffsetPastEnd() <= end
}

// Encloses returns true iff [start, end) strictly encloses this extent, i.e.,
// the extent starts after start and ends before end.
func (o Extent) Encloses(start, end int) bool {
	return start < o.Offset && o.OffsetPastEnd() < end
}

// EndsIn returns true iff the end of this extent falls strictly inside
// [start, end).
func (o Extent) EndsIn(start, end int) bool {
	past := o.OffsetPastEnd()
	return start < past && past < end
}

func (o Extent) String() string {
	return fmt.Sprintf("offset %d, length %d", o.Offset, o.Length)
}
