// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines types representing a selection in a text editor, i.e.,
// a range of text within a file.

package text

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// A Selection represents a range of text within a particular file.  It is
// used to represent a selection in a text editor.
type Selection interface {
	// Convert returns the Extent (byte offsets within the file)
	// corresponding to this selection.  It returns an error if this
	// selection corresponds to a file that is not in the given FileSet,
	// or if the selected region is not in range.
	Convert(*token.FileSet) (*token.File, Extent, error)
	// GetFilename returns the file containing this selection.  The
	// returned filename may be an absolute or relative path and is not
	// guaranteed to correspond to a valid file.
	GetFilename() string
	// String returns a human-readable representation of this Selection.
	String() string
}

// A LineColSelection is a Selection consisting of a filename, the line/column
// where the selected text begins, and the line/column where the text selection
// ends.  The end line and column must be greater than or equal to the start
// line and column, respectively.  Line and column numbers are 1-based, and
// the end column is exclusive.
type LineColSelection struct {
	Filename  string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (lc *LineColSelection) Convert(fset *token.FileSet) (*token.File, Extent, error) {
	file := FindFile(fset, lc.Filename)
	if file == nil {
		return nil, Extent{}, fmt.Errorf("couldn't find file containing position")
	}

	start, err := lineColToOffset(file, lc.StartLine, lc.StartCol)
	if err != nil {
		return nil, Extent{}, err
	}

	end, err := lineColToOffset(file, lc.EndLine, lc.EndCol)
	if err != nil {
		return nil, Extent{}, err
	}
	if end < start {
		return nil, Extent{}, fmt.Errorf("selection ends before it starts: %s", lc)
	}
	return file, NewExtent(start, end), nil
}

func (lc *LineColSelection) GetFilename() string {
	return lc.Filename
}

func (lc *LineColSelection) String() string {
	return fmt.Sprintf("%s: %d,%d:%d,%d", lc.Filename,
		lc.StartLine, lc.StartCol, lc.EndLine, lc.EndCol)
}

// An OffsetLengthSelection is a selection that consists of a filename, an
// offset where the text selection begins, and the length of the selection
// in bytes.
type OffsetLengthSelection struct {
	Filename string
	Offset   int
	Length   int
}

func (ol *OffsetLengthSelection) Convert(fset *token.FileSet) (*token.File, Extent, error) {
	file := FindFile(fset, ol.Filename)
	if file == nil {
		return nil, Extent{}, fmt.Errorf("couldn't find file containing position")
	}
	if ol.Offset+ol.Length > file.Size() {
		return nil, Extent{}, fmt.Errorf("selection %s extends past the end of the file", ol)
	}
	return file, Extent{Offset: ol.Offset, Length: ol.Length}, nil
}

func (ol *OffsetLengthSelection) GetFilename() string {
	return ol.Filename
}

func (ol *OffsetLengthSelection) String() string {
	return fmt.Sprintf("%s: %d,%d", ol.Filename,
		ol.Offset, ol.Length)
}

// FindFile returns the file corresponding to the given filename, or nil if no
// file can be found with that filename.  The absolute path of the returned
// file can be found via f.Name().
func FindFile(fset *token.FileSet, filename string) *token.File {
	var file *token.File
	fset.Iterate(func(f *token.File) bool {
		if sameFile(filename, f.Name()) {
			file = f
			return false // done
		}
		return true // continue
	})
	return file
}

// sameFile returns true if x and y have the same basename and denote
// the same file.  Files that do not exist on disk (e.g., overlays) are
// compared by name.
func sameFile(x, y string) bool {
	if x == y {
		return true
	}
	if filepath.Base(x) == filepath.Base(y) { // (optimisation)
		if xi, err := os.Stat(x); err == nil {
			if yi, err := os.Stat(y); err == nil {
				return os.SameFile(xi, yi)
			}
		}
	}
	return false
}

// lineColToOffset converts a line/column position to a byte offset.  The
// first character in a file is considered to be at line 1, column 1.  A
// column one past the last character of a line is accepted.
func lineColToOffset(file *token.File, line int, column int) (int, error) {
	if line < 1 || line > file.LineCount() || column < 1 {
		return 0, fmt.Errorf("invalid position: line %d, column %d",
			line, column)
	}
	lineStart := file.Offset(file.LineStart(line))
	offset := lineStart + column - 1
	limit := file.Size()
	if line < file.LineCount() {
		limit = file.Offset(file.LineStart(line + 1))
	}
	if offset > limit {
		return 0, fmt.Errorf("invalid position: line %d, column %d",
			line, column)
	}
	return offset, nil
}

// NewSelection returns a new Selection that will either be a
// LineColSelection ("5,11:5,20") or an OffsetLengthSelection ("112,9").
func NewSelection(filename string, pos string) (Selection, error) {
	absFilename, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("invalid filename")
	}

	if strings.Contains(pos, ":") {
		args := strings.Split(pos, ":")

		if len(args) != 2 {
			return nil, fmt.Errorf("invalid -pos")
		}

		sl, sc := parseLineCol(args[0])
		el, ec := parseLineCol(args[1])

		if sl < 0 || sc < 0 || el < 0 || ec < 0 {
			return nil, fmt.Errorf("invalid -pos line, col")
		}

		return &LineColSelection{Filename: absFilename, StartLine: sl, StartCol: sc,
			EndLine: el, EndCol: ec}, nil
	}

	offset, length := parseLineCol(pos)
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("invalid -pos offset, length")
	}

	return &OffsetLengthSelection{Filename: absFilename, Offset: offset, Length: length}, nil
}

// e.g. 302,6
func parseLineCol(linecol string) (int, int) {
	lc := strings.Split(linecol, ",")
	if len(lc) != 2 {
		return -1, -1
	}
	if l, err := strconv.ParseInt(lc[0], 10, 32); err == nil {
		if c, err := strconv.ParseInt(lc[1], 10, 32); err == nil {
			return int(l), int(c)
		}
	}

	return -1, -1
}
