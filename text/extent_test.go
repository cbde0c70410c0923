// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package text

import (
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExtent(t *testing.T) {
	ol := Extent{Offset: 5, Length: 20}
	assertEquals("offset 5, length 20", ol.String(), t)
	assertEquals("offset 3, length 4", NewExtent(3, 7).String(), t)
}

func TestExtentPredicates(t *testing.T) {
	sel := NewExtent(10, 20)

	assertTrue(sel.Covers(10, 20), t)
	assertTrue(sel.Covers(12, 15), t)
	assertFalse(sel.Covers(9, 15), t)
	assertFalse(sel.Covers(15, 21), t)

	assertTrue(sel.CoveredBy(10, 20), t)
	assertTrue(sel.CoveredBy(0, 30), t)
	assertFalse(sel.CoveredBy(11, 30), t)

	assertTrue(sel.Encloses(9, 21), t)
	assertFalse(sel.Encloses(10, 21), t)
	assertFalse(sel.Encloses(9, 20), t)

	assertTrue(sel.EndsIn(15, 25), t)
	assertFalse(sel.EndsIn(15, 20), t)
	assertFalse(sel.EndsIn(20, 25), t)
}

// -=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-=-

// These are utility methods used by the other tests in this package.

func fatalf(t *testing.T, format string, args ...interface{}) {
	_, file, line, ok := runtime.Caller(2)
	if ok {
		var msg string
		if len(args) == 0 {
			msg = format
		} else {
			msg = fmt.Sprintf(format, args...)
		}
		t.Fatalf("from %s:%d: %s", filepath.Base(file), line, msg)
	}
}

// assertEquals is a utility method for unit tests that marks a function as
// having failed if expected != actual
func assertEquals(expected string, actual string, t *testing.T) {
	if expected != actual {
		fatalf(t, "Expected: %s Actual: %s", expected, actual)
	}
}

// assertTrue is a utility method for unit tests that marks a function as
// having succeeded iff the supplied value is true
func assertTrue(value bool, t *testing.T) {
	if !value {
		fatalf(t, "assertTrue failed")
	}
}

// assertFalse is a utility method for unit tests that marks a function as
// having succeeded iff the supplied value is false
func assertFalse(value bool, t *testing.T) {
	if value {
		fatalf(t, "assertFalse failed")
	}
}
