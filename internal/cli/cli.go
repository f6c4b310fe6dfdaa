// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/z80disasm/internal/options"
)

type parameter struct {
	long     string
	short    string
	argument bool // expects a value
	optional bool // value can be omitted
	usage    string
}

var parameters = []parameter{
	{long: "project", short: "p", argument: true, usage: "project file to process (default: " + options.DefaultProjectFile + " if it exists)"},
	{long: "init", short: "i", argument: true, optional: true, usage: "write a documented project file (default: " + options.DefaultProjectFile + ")"},
	{long: "batch", argument: true, usage: "process all binary files matching a pattern with default settings, for example *.rom"},
	{long: "verify", usage: "verify that the generated listing reproduces the binary image"},
	{long: "verbose", short: "v", usage: "enable debug logging"},
	{long: "quiet", short: "q", usage: "only log warnings and errors"},
	{long: "help", short: "h", usage: "show this help"},
}

// ParseFlags parses the command line arguments without the program name.
func ParseFlags(args []string) (options.Program, error) {
	var opts options.Program

	normalized, err := normalizeArgs(args)
	if err != nil {
		return opts, err
	}

	flags := flag.NewFlagSet("z80disasm", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var help bool
	flags.StringVar(&opts.Project, "project", "", "")
	flags.StringVar(&opts.Init, "init", "", "")
	flags.StringVar(&opts.Batch, "batch", "", "")
	flags.BoolVar(&opts.Verify, "verify", false, "")
	flags.BoolVar(&opts.Verbose, "verbose", false, "")
	flags.BoolVar(&opts.Quiet, "quiet", false, "")
	flags.BoolVar(&help, "help", false, "")

	if err := flags.Parse(normalized); err != nil {
		return opts, &UsageError{msg: err.Error()}
	}
	if help {
		return opts, &UsageError{}
	}
	opts.Files = flags.Args()

	if opts.Project == "" && opts.Init == "" && opts.Batch == "" && len(opts.Files) == 0 {
		if _, err := os.Stat(options.DefaultProjectFile); err != nil {
			return opts, &UsageError{msg: "no project or binary file given"}
		}
		opts.Project = options.DefaultProjectFile
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: z80disasm [options] [binary files...]\n\n")
	for _, p := range parameters {
		name := "--" + p.long
		if p.short != "" {
			name = "-" + p.short + ", " + name
		}
		switch {
		case p.optional:
			name += " [file]"
		case p.argument:
			name += " value"
		}
		fmt.Printf("  %-24s %s\n", name, p.usage)
	}
	fmt.Println()
}

// normalizeArgs expands short and abbreviated long parameters to their full
// name, adds the default value of optional arguments and rejects unknown or
// duplicated parameters.
func normalizeArgs(args []string) ([]string, error) {
	tree := prefixtree.New[*parameter]()
	shorts := make(map[string]*parameter, len(parameters))
	for i := range parameters {
		p := &parameters[i]
		tree.Add(p.long, p)
		if p.short != "" {
			shorts[p.short] = p
		}
	}

	seen := set.New[string]()
	var normalized []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") || arg == "-" {
			normalized = append(normalized, args[i:]...)
			break
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		p, err := lookupParameter(tree, shorts, arg, name)
		if err != nil {
			return nil, err
		}

		if seen.Contains(p.long) {
			return nil, &UsageError{msg: fmt.Sprintf("parameter %s is given more than once", arg)}
		}
		seen.Add(p.long)

		switch {
		case hasValue:
			normalized = append(normalized, "--"+p.long+"="+value)
		case p.optional && (i+1 >= len(args) || strings.HasPrefix(args[i+1], "-")):
			normalized = append(normalized, "--"+p.long+"="+options.DefaultProjectFile)
		case p.argument:
			if i+1 >= len(args) {
				return nil, &UsageError{msg: fmt.Sprintf("parameter %s expects a value", arg)}
			}
			i++
			normalized = append(normalized, "--"+p.long+"="+args[i])
		default:
			normalized = append(normalized, "--"+p.long)
		}
	}
	return normalized, nil
}

func lookupParameter(tree *prefixtree.Tree[*parameter], shorts map[string]*parameter,
	arg, name string) (*parameter, error) {

	if !strings.HasPrefix(arg, "--") {
		if p, ok := shorts[name]; ok {
			return p, nil
		}
	}

	p, err := tree.FindValue(name)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, prefixtree.ErrPrefixAmbiguous):
		return nil, &UsageError{msg: fmt.Sprintf("parameter %s is ambiguous", arg)}
	default:
		return nil, &UsageError{msg: fmt.Sprintf("unknown parameter %s", arg)}
	}
}
