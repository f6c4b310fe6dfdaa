package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/z80disasm/internal/options"
)

//nolint:funlen // test functions can be long
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Program
	}{
		{
			name: "project file",
			args: []string{"-p", "game.cfg"},
			want: options.Program{Project: "game.cfg"},
		},
		{
			name: "long names and abbreviations",
			args: []string{"--proj=game.cfg", "--verif", "--verb"},
			want: options.Program{Project: "game.cfg", Verify: true, Verbose: true},
		},
		{
			name: "positional files",
			args: []string{"-q", "a.rom", "b.rom"},
			want: options.Program{Quiet: true, Files: []string{"a.rom", "b.rom"}},
		},
		{
			name: "batch",
			args: []string{"--batch", "*.rom", "--verify"},
			want: options.Program{Batch: "*.rom", Verify: true},
		},
		{
			name: "init without file",
			args: []string{"-i"},
			want: options.Program{Init: options.DefaultProjectFile},
		},
		{
			name: "init without file followed by parameter",
			args: []string{"--init", "-v"},
			want: options.Program{Init: options.DefaultProjectFile, Verbose: true},
		},
		{
			name: "init with file",
			args: []string{"-i", "new.cfg"},
			want: options.Program{Init: "new.cfg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags(tt.args)
			assert.NoError(t, err)
			assert.Equal(t, tt.want.Project, got.Project)
			assert.Equal(t, tt.want.Init, got.Init)
			assert.Equal(t, tt.want.Batch, got.Batch)
			assert.Equal(t, len(tt.want.Files), len(got.Files))
			for i := range tt.want.Files {
				assert.Equal(t, tt.want.Files[i], got.Files[i])
			}
			assert.Equal(t, tt.want.Verify, got.Verify)
			assert.Equal(t, tt.want.Verbose, got.Verbose)
			assert.Equal(t, tt.want.Quiet, got.Quiet)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "unknown parameter", args: []string{"--output", "a"}, message: "unknown parameter"},
		{name: "ambiguous parameter", args: []string{"--ver", "a.rom"}, message: "ambiguous"},
		{name: "duplicated parameter", args: []string{"-v", "--verbose", "a.rom"}, message: "more than once"},
		{name: "duplicated short and long", args: []string{"-p", "a", "--project=b"}, message: "more than once"},
		{name: "missing value", args: []string{"-p"}, message: "expects a value"},
		{name: "help", args: []string{"-h"}, message: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlags(tt.args)
			assert.Error(t, err)

			var usageErr *UsageError
			assert.True(t, errors.As(err, &usageErr))
			assert.Equal(t, tt.message == "", usageErr.Error() == "")
			if tt.message != "" {
				assert.ErrorContains(t, err, tt.message)
			}
		})
	}
}

func TestParseFlagsDefaultProject(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := ParseFlags(nil)
	var usageErr *UsageError
	assert.True(t, errors.As(err, &usageErr))

	assert.NoError(t, os.WriteFile(filepath.Join(".", options.DefaultProjectFile), []byte("BINARY_FILE: a"), 0o600))
	opts, err := ParseFlags(nil)
	assert.NoError(t, err)
	assert.Equal(t, options.DefaultProjectFile, opts.Project)
}
