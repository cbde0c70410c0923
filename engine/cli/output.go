// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/godoctor/extractcheck/analysis/tree"
	"github.com/godoctor/extractcheck/refactoring"
	"github.com/olekukonko/tablewriter"
)

// A palette colors plain output.
type palette struct {
	location *color.Color
	info     *color.Color
	warning  *color.Color
	err      *color.Color
	legal    *color.Color
	illegal  *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		location: color.New(color.Bold),
		info:     color.New(color.FgCyan),
		warning:  color.New(color.FgYellow),
		err:      color.New(color.FgRed, color.Bold),
		legal:    color.New(color.FgGreen),
		illegal:  color.New(color.FgRed),
	}
	if !enabled {
		for _, c := range []*color.Color{p.location, p.info, p.warning, p.err, p.legal, p.illegal} {
			c.DisableColor()
		}
	}
	return p
}

// writeLog displays the log in GNU-style 'file:line.col-line.col: message'
// format.
func writeLog(out io.Writer, log *refactoring.Log, cwd string, p *palette) {
	for _, entry := range log.Entries {
		p.location.Fprintf(out, "%s:", log.Location(entry, cwd))
		switch entry.Severity {
		case refactoring.Info:
			p.info.Fprintf(out, " %s\n", entry.Message)
		case refactoring.Warning:
			p.warning.Fprint(out, " warning:")
			fmt.Fprintf(out, " %s\n", entry.Message)
		default:
			p.err.Fprint(out, " error:")
			fmt.Fprintf(out, " %s\n", entry.Message)
		}
	}
}

// writeChecks displays one line per analyzed selection.
func writeChecks(out io.Writer, result *refactoring.Result, cwd string, p *palette) {
	for _, c := range result.Checks {
		loc := result.Log.Location(&refactoring.Entry{
			Filename: c.Filename,
			Position: &c.Extent,
		}, cwd)
		p.location.Fprintf(out, "%s:", loc)
		if c.Verdict.Legal {
			p.legal.Fprintf(out, " %s\n", c.Verdict)
		} else {
			p.illegal.Fprintf(out, " %s\n", c.Verdict)
		}
	}
}

// writeTable displays one row per analyzed selection, followed by a count
// of the extractable selections.
func writeTable(out io.Writer, result *refactoring.Result, cwd string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Selection", "Function", "Extractable", "Return", "Arguments", "Result"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	legal := 0
	for _, c := range result.Checks {
		loc := result.Log.Location(&refactoring.Entry{
			Filename: c.Filename,
			Position: &c.Extent,
		}, cwd)
		v := c.Verdict
		extractable := "no"
		if v.Legal {
			extractable = "yes"
			legal++
		}
		returns := ""
		if v.ReturnValue != nil {
			returns = v.ReturnValue.Name()
		}
		table.Append([]string{
			loc,
			c.Func,
			extractable,
			v.ReturnKind.String(),
			strings.Join(names(v.Arguments), ", "),
			returns,
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d selections", len(result.Checks)),
		"",
		fmt.Sprintf("%d", legal),
		"", "", "",
	})
	table.Render()
}

type jsonReport struct {
	Checks []jsonCheck          `json:"checks"`
	Log    []*refactoring.Entry `json:"log"`
}

type jsonCheck struct {
	File            string           `json:"file"`
	Pos             string           `json:"pos"`
	Offset          int              `json:"offset"`
	Length          int              `json:"length"`
	Func            string           `json:"func,omitempty"`
	Extractable     bool             `json:"extractable"`
	ReturnKind      string           `json:"return_kind"`
	Arguments       []string         `json:"arguments"`
	ExtractedLocals []string         `json:"extracted_locals"`
	CallerLocals    []string         `json:"caller_locals"`
	ReturnValue     string           `json:"return_value,omitempty"`
	Throws          []string         `json:"throws,omitempty"`
	Diagnostics     []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonDiagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
}

// writeJSON writes the checks and the log as a single JSON document.
// Filenames are displayed as in plain output.
func writeJSON(out io.Writer, result *refactoring.Result, pos []string, cwd string) error {
	report := jsonReport{
		Checks: []jsonCheck{},
		Log:    []*refactoring.Entry{},
	}
	for i, c := range result.Checks {
		v := c.Verdict
		jc := jsonCheck{
			File:            result.Log.DisplayName(c.Filename, cwd),
			Offset:          c.Extent.Offset,
			Length:          c.Extent.Length,
			Func:            c.Func,
			Extractable:     v.Legal,
			ReturnKind:      v.ReturnKind.String(),
			Arguments:       names(v.Arguments),
			ExtractedLocals: names(v.ExtractedLocals),
			CallerLocals:    names(v.CallerLocals),
		}
		if i < len(pos) {
			jc.Pos = pos[i]
		}
		if v.ReturnValue != nil {
			jc.ReturnValue = v.ReturnValue.Name()
		}
		for _, t := range v.Throws {
			jc.Throws = append(jc.Throws, t.Name())
		}
		for _, d := range v.Diagnostics {
			jc.Diagnostics = append(jc.Diagnostics, jsonDiagnostic{
				Kind:    d.Kind.String(),
				Message: d.Message,
				Offset:  d.Extent.Offset,
				Length:  d.Extent.Length,
			})
		}
		report.Checks = append(report.Checks, jc)
	}
	for _, entry := range result.Log.Entries {
		e := *entry
		if e.Filename != "" {
			e.Filename = result.Log.DisplayName(e.Filename, cwd)
		}
		report.Log = append(report.Log, &e)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func names(vars []tree.Binding) []string {
	result := []string{}
	for _, v := range vars {
		result = append(result, v.Name())
	}
	return result
}
