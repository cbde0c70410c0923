// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// This file defines the Log struct and associated methods.  Every check
// returns a Log, which contains informational messages, warnings, and errors
// generated while loading the program and analyzing the selections.  A
// selection that cannot be extracted is reported as one error per
// diagnostic.
//
// TERMINOLOGY: "Initial entries" are those that are added when the program is
// first loaded, before the analysis begins.  They are used to record
// semantic errors that are present in the file before analysis starts.  Since
// the analysis can proceed in the presence of errors, there are two methods
// to modify initial entries: one that converts initial errors to warnings,
// and another that removes initial entries altogether.

package refactoring

import (
	"bytes"
	"fmt"
	"go/token"
	"io"
	"path/filepath"

	"github.com/godoctor/extractcheck/analysis/extract"
	"github.com/godoctor/extractcheck/text"
)

// A Severity indicates whether a log entry describes an informational message,
// a warning, or an error.
type Severity int

const (
	Info    Severity = iota // informational message
	Warning                 // warning, something to be cautious of
	Error                   // the selection cannot be extracted, or the program could not be analyzed
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// MarshalText encodes a Severity as its name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// An Entry constitutes a single entry in a Log.  Every Entry has a
// severity and a message.  If the filename is a nonempty string, the Entry
// is associated with a particular position in the given file.  Some log
// entries are marked as "initial."  These indicate semantic errors that were
// present in the input file (e.g., unresolved identifiers, unnecessary
// imports, etc.) before the analysis was started.
type Entry struct {
	isInitial bool
	Severity  Severity     `json:"severity"`
	Message   string       `json:"message"`
	Filename  string       `json:"filename,omitempty"`
	Position  *text.Extent `json:"position,omitempty"`
	// Kind names the diagnostic this entry reports, if any.
	Kind string `json:"kind,omitempty"`
}

// A Log is used to store informational messages, warnings, and errors that
// will be presented to the user.
type Log struct {
	// Fset is used to convert offsets to line/column positions.  It may
	// be nil, in which case positions are displayed as offsets.
	Fset    *token.FileSet `json:"-"`
	Entries []*Entry       `json:"entries"`
	// display names for files, keyed by absolute filename
	aliases map[string]string
}

func (entry *Entry) String() string {
	var buffer bytes.Buffer
	switch entry.Severity {
	case Info:
		// No prefix
	case Warning:
		buffer.WriteString("Warning: ")
	case Error:
		buffer.WriteString("Error: ")
	}
	if entry.Filename != "" {
		buffer.WriteString(entry.Filename)
		if entry.Position != nil {
			buffer.WriteString(", ")
			buffer.WriteString(entry.Position.String())
		}
		buffer.WriteString(": ")
	}
	buffer.WriteString(entry.Message)
	return buffer.String()
}

// NewLog returns a new Log with no entries.
func NewLog() *Log {
	return &Log{Entries: []*Entry{}}
}

// Clear removes all Entries from the error log.
func (log *Log) Clear() {
	log.Entries = []*Entry{}
}

// Infof adds an informational message (an entry with Info severity) to a log.
func (log *Log) Infof(format string, v ...interface{}) {
	log.log(Info, format, v...)
}

// Info adds an informational message (an entry with Info severity) to a log.
func (log *Log) Info(entry interface{}) {
	log.log(Info, "%v", entry)
}

// Warnf adds an entry with Warning severity to a log.
func (log *Log) Warnf(format string, v ...interface{}) {
	log.log(Warning, format, v...)
}

// Warn adds an entry with Warning severity to a log.
func (log *Log) Warn(entry interface{}) {
	log.log(Warning, "%v", entry)
}

// Errorf adds an entry with Error severity to a log.
func (log *Log) Errorf(format string, v ...interface{}) {
	log.log(Error, format, v...)
}

// Error adds an entry with Error severity to a log.
func (log *Log) Error(entry interface{}) {
	log.log(Error, "%v", entry)
}

func (log *Log) log(severity Severity, format string, v ...interface{}) {
	log.Entries = append(log.Entries, &Entry{
		Severity: severity,
		Message:  fmt.Sprintf(format, v...),
	})
}

// Diagnostic adds an error describing why a selection in the given file
// cannot be extracted, associated with the offending region of the file.
func (log *Log) Diagnostic(filename string, d extract.Diagnostic) {
	log.Errorf("%s", d.Message)
	log.AssociateExtent(filename, d.Extent)
	log.Entries[len(log.Entries)-1].Kind = d.Kind.String()
}

// Associate associates the most recently-logged entry with the given filename.
func (log *Log) Associate(filename string) {
	if len(log.Entries) == 0 {
		return
	}
	entry := log.Entries[len(log.Entries)-1]
	entry.Filename = absPath(filename)
}

// AssociateExtent associates the most recently-logged entry with a region
// of the given file.
func (log *Log) AssociateExtent(filename string, ext text.Extent) {
	if len(log.Entries) == 0 {
		return
	}
	entry := log.Entries[len(log.Entries)-1]
	entry.Filename = absPath(filename)
	entry.Position = &text.Extent{Offset: ext.Offset, Length: ext.Length}
}

func absPath(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		return abs
	}
	return file
}

// Alias causes Write to display filename as name, e.g., "<stdin>" for a
// temporary file holding standard input.
func (log *Log) Alias(filename, name string) {
	if log.aliases == nil {
		log.aliases = map[string]string{}
	}
	log.aliases[absPath(filename)] = name
}

// DisplayName returns the name Write displays for the given file: its alias,
// its path relative to cwd if possible, or the original filename otherwise.
func (log *Log) DisplayName(file, cwd string) string {
	if name, ok := log.aliases[file]; ok {
		return name
	}
	return displayablePath(file, cwd)
}

// displayablePath returns a path for the given file relative to the given
// directory, if possible, and the original filename otherwise.  It is
// intended for use in error messages.
func displayablePath(file, cwd string) string {
	if cwd == "" {
		return file
	}
	relativePath, err := filepath.Rel(cwd, file)
	if err != nil || relativePath == "" {
		return file
	}
	return relativePath
}

// MarkInitial marks all entries that have been logged so far as initial
// entries.  Subsequent entries will not be marked as initial unless this
// method is called again at a later point in time.
func (log *Log) MarkInitial() {
	for _, entry := range log.Entries {
		entry.isInitial = true
	}
}

func (log *Log) String() string {
	var buffer bytes.Buffer
	for _, entry := range log.Entries {
		buffer.WriteString(entry.String())
		buffer.WriteString("\n")
	}
	return buffer.String()
}

// Write writes the log to out in the GNU-style format
//
//	file:line.col-line.col: message
//
// with filenames relative to cwd when possible.  Entries without a file
// are written with the program name "extractcheck" in place of the file.
func (log *Log) Write(out io.Writer, cwd string) {
	for _, entry := range log.Entries {
		fmt.Fprintf(out, "%s: ", log.Location(entry, cwd))
		switch entry.Severity {
		case Warning:
			fmt.Fprint(out, "warning: ")
		case Error:
			fmt.Fprint(out, "error: ")
		}
		fmt.Fprintln(out, entry.Message)
	}
}

// Location returns the position of an entry as displayed by Write.
func (log *Log) Location(entry *Entry, cwd string) string {
	if entry.Filename == "" {
		return "extractcheck"
	}
	name := log.DisplayName(entry.Filename, cwd)
	if entry.Position == nil {
		return name
	}
	var file *token.File
	if log.Fset != nil {
		file = text.FindFile(log.Fset, entry.Filename)
	}
	if file == nil || entry.Position.OffsetPastEnd() > file.Size() {
		return fmt.Sprintf("%s:#%d,%d", name,
			entry.Position.Offset, entry.Position.Length)
	}
	start := file.Position(file.Pos(entry.Position.Offset))
	end := file.Position(file.Pos(entry.Position.OffsetPastEnd()))
	return fmt.Sprintf("%s:%d.%d-%d.%d", name,
		start.Line, start.Column, end.Line, end.Column)
}

// ContainsErrors returns true if the log contains at least one error.  The
// error may be an initial entry, or it may not.
func (log *Log) ContainsErrors() bool {
	return log.contains(func(entry *Entry) bool {
		return entry.Severity >= Error
	})
}

// ContainsInitialErrors returns true if the log contains at least one error
// that was logged when the program was loaded.
func (log *Log) ContainsInitialErrors() bool {
	return log.contains(func(entry *Entry) bool {
		return entry.isInitial && entry.Severity >= Error
	})
}

func (log *Log) contains(predicate func(*Entry) bool) bool {
	for _, entry := range log.Entries {
		if predicate(entry) {
			return true
		}
	}
	return false
}

// RemoveInitialEntries removes all initial entries from the log.  Entries that
// are not marked as initial are retained.
func (log *Log) RemoveInitialEntries() {
	newEntries := []*Entry{}
	for _, entry := range log.Entries {
		if !entry.isInitial {
			newEntries = append(newEntries, entry)
		}
	}
	log.Entries = newEntries
}

// ChangeInitialErrorsToWarnings changes the severity of any initial errors to
// Warning severity.
func (log *Log) ChangeInitialErrorsToWarnings() {
	for _, entry := range log.Entries {
		if entry.isInitial && entry.Severity == Error {
			entry.Severity = Warning
		}
	}
}
