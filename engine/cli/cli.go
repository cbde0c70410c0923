// Copyright 2015 Auburn University. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The cli package provides a command-line interface for extractcheck.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/godoctor/extractcheck/config"
	"github.com/godoctor/extractcheck/engine"
	"github.com/godoctor/extractcheck/refactoring"
	"github.com/godoctor/extractcheck/text"
	"github.com/spf13/cobra"
)

const useHelp = "Run 'extractcheck --help' for more information.\n"

// Exit codes
const (
	exitOK             = 0 // every selection can be extracted
	exitUsage          = 1 // one or more command line arguments were invalid
	exitHelp           = 2 // help/usage information was displayed
	exitNotExtractable = 3 // output contains a detailed error log
)

// stdinName is displayed in place of the temporary file holding standard
// input.
const stdinName = "<stdin>"

type options struct {
	file          string
	pos           []string
	scope         []string
	format        string
	configPath    string
	noColor       bool
	verbose       bool
	workers       int
	initialErrors string
	list          bool
}

// usageError is reported with exit code 1.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...interface{}) error {
	return &usageError{fmt.Sprintf(format, args...)}
}

// Run runs the extractcheck command-line interface.  Typical usage is
//
//	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
//
// All arguments must be non-nil, and args[0] is required.
func Run(stdin io.Reader, stdout io.Writer, stderr io.Writer, args []string) int {
	return RunContext(context.Background(), stdin, stdout, stderr, args)
}

// RunContext is like Run, but stops analyzing selections when ctx is
// cancelled.
func RunContext(ctx context.Context, stdin io.Reader, stdout io.Writer, stderr io.Writer, args []string) int {
	exit := exitOK
	helped := false
	var opts options

	cmd := &cobra.Command{
		Use:   "extractcheck [flags] [check]",
		Short: "Determine whether a selection of Go code can be extracted into a new function",
		Long: `extractcheck analyzes one or more text selections in a Go source file and
reports, for each, whether the selected statements or expression can be
extracted into a new function without changing the behavior of the program.
For an extractable selection, it reports the new function's parameters,
locals, and result; otherwise, it reports every reason the selection cannot
be extracted.

The optional check argument names the check to run (default: extract).

Examples:
  extractcheck --file=main.go --pos=12,2:15,3
  extractcheck --file=main.go --pos=12,2:15,3 --pos=20,5:20,17
  extractcheck --pos=112,9 --format=json < main.go
  extractcheck --file=main.go --pos=12,2:15,3 --pos=20,5:20,17 --format=table

Exit status is 0 if every selection can be extracted, 1 if the command line
was invalid, 2 if help was displayed, and 3 otherwise.`,
		Version:       engine.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == "help" ||
				len(args) == 0 && cmd.Flags().NFlag() == 0 {
				// Invoked as "extractcheck" or "extractcheck help"
				helped = true
				return cmd.Help()
			}
			code, err := run(cmd, &opts, args, stdin, stdout, stderr)
			exit = code
			return err
		},
	}
	cmd.SetContext(ctx)
	cmd.SetArgs(args[1:])
	cmd.SetIn(stdin)
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)

	defaultHelp := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, a []string) {
		helped = true
		defaultHelp(c, a)
	})

	flags := cmd.Flags()
	flags.StringVar(&opts.file, "file", "",
		"Filename containing the selections (default: stdin)")
	flags.StringArrayVar(&opts.pos, "pos", nil,
		"Selection to check, line,col:line,col or offset,length (repeatable)")
	flags.StringSliceVar(&opts.scope, "scope", nil,
		"Package pattern(s) to load (default: the package of the file)")
	flags.StringVarP(&opts.format, "format", "f", "",
		"Output format (plain, table, json)")
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"Path to configuration file (default: .extractcheck.yml, if present)")
	flags.BoolVar(&opts.noColor, "no-color", false,
		"Disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false,
		"Describe the function each extractable selection would become")
	flags.IntVar(&opts.workers, "workers", 0,
		"Maximum number of selections analyzed at once (default: GOMAXPROCS)")
	flags.StringVar(&opts.initialErrors, "initial-errors", "",
		"Reporting of errors in the program before analysis (error, warn, ignore)")
	flags.BoolVar(&opts.list, "list", false,
		"List all checks and exit")

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		var usage *usageError
		if errors.As(err, &usage) || exit == exitOK {
			// (flag parsing errors are not usageErrors)
			fmt.Fprint(stderr, useHelp)
		}
		return exitUsage
	}
	if helped {
		return exitHelp
	}
	return exit
}

func run(cmd *cobra.Command, opts *options, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	if opts.list {
		if len(args) > 0 || cmd.Flags().NFlag() != 1 {
			return exitUsage, usagef("The --list flag cannot be used " +
				"with any other flags or arguments")
		}
		// Invoked as "extractcheck --list"
		fmt.Fprintf(stdout, "%-15s\t%s\n", "Check", "Description")
		fmt.Fprintf(stdout, "--------------------------------------------------------------------------------\n")
		for _, key := range engine.AllRefactoringNames() {
			d := engine.GetRefactoring(key).Description()
			if !d.Hidden {
				fmt.Fprintf(stdout, "%-15s\t%s\n", key, d.Synopsis)
			}
		}
		return exitOK, nil
	}

	name := "extract"
	if len(args) > 0 {
		name = args[0]
	}
	refac := engine.GetRefactoring(name)
	if refac == nil {
		return exitUsage, usagef("There is no check named \"%s\"", name)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	cfg, err := loadConfig(cmd, opts, cwd)
	if err != nil {
		return exitUsage, &usageError{err.Error()}
	}

	if len(opts.pos) == 0 {
		return exitUsage, usagef("At least one --pos is required")
	}

	conf := &refactoring.Config{
		Scope:         cfg.Scope,
		Workers:       cfg.Workers,
		InitialErrors: cfg.ErrorPolicy(),
		Verbose:       cfg.Verbose,
	}

	fileName := opts.file
	stdinPath := ""
	if fileName == "" || fileName == "-" {
		// Read from standard input into an overlay for a file in an
		// empty directory, so the file is its own package
		src, err := io.ReadAll(stdin)
		if err != nil {
			return exitUsage, err
		}
		dir, err := os.MkdirTemp("", "extractcheck")
		if err != nil {
			return exitUsage, err
		}
		defer os.RemoveAll(dir)
		stdinPath = filepath.Join(dir, "stdin.go")
		fileName = stdinPath
		conf.Dir = dir
		conf.Overlay = map[string][]byte{stdinPath: src}
		if conf.Scope == nil {
			conf.Scope = []string{stdinPath}
		}
	} else if conf.Scope == nil {
		// Run the build system in the module containing the file
		if abs, err := filepath.Abs(fileName); err == nil {
			conf.Dir = filepath.Dir(abs)
		}
	}

	for _, pos := range opts.pos {
		sel, err := text.NewSelection(fileName, pos)
		if err != nil {
			return exitUsage, usagef("%s: %s", pos, err)
		}
		conf.Selections = append(conf.Selections, sel)
	}

	result := refac.Run(cmd.Context(), conf)
	if stdinPath != "" {
		result.Log.Alias(stdinPath, stdinName)
	}

	switch cfg.Format {
	case "json":
		err = writeJSON(stdout, result, opts.pos, cwd)
	case "table":
		writeLog(stderr, result.Log, cwd, newPalette(cfg.Color))
		writeTable(stdout, result, cwd)
	default:
		p := newPalette(cfg.Color)
		writeLog(stderr, result.Log, cwd, p)
		writeChecks(stdout, result, cwd, p)
	}
	if err != nil {
		return exitUsage, err
	}

	if result.Log.ContainsErrors() || !result.Extractable(conf) {
		return exitNotExtractable, nil
	}
	return exitOK, nil
}

// loadConfig reads the configuration file and applies the flags that were
// set on the command line.
func loadConfig(cmd *cobra.Command, opts *options, cwd string) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, cwd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("no-color") {
		cfg.Color = !opts.noColor
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("initial-errors") {
		cfg.InitialErrors = opts.initialErrors
	}
	if flags.Changed("scope") {
		cfg.Scope = opts.scope
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
