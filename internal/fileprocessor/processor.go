// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80disasm/internal/config"
	"github.com/retroenv/z80disasm/internal/options"
	"github.com/retroenv/z80disasm/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

// GetProjectsToProcess returns the projects to process based on options. A
// project file is processed as configured, binary files given as parameters
// or matched by the batch pattern are processed with default settings.
func GetProjectsToProcess(opts options.Program) ([]options.Project, error) {
	if opts.Project != "" {
		project, err := config.LoadProjectFile(opts.Project)
		if err != nil {
			return nil, err
		}
		return []options.Project{project}, nil
	}

	files := opts.Files
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		files = append(files, matches...)
	}

	projects := make([]options.Project, 0, len(files))
	for _, file := range files {
		project := options.NewProject(file)
		project.ApplyDefaultFileNames()
		projects = append(projects, project)
	}
	return projects, nil
}

// ProcessProjects disassembles the projects in parallel. A failing project does
// not stop the others, all failures are returned joined. Cancelling the context
// skips the projects that have not been started yet.
func ProcessProjects(ctx context.Context, logger *log.Logger, projects []options.Project,
	verify bool) ([]pipeline.Result, error) {

	results := make([]pipeline.Result, len(projects))
	errs := make([]error, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, project := range projects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := pipeline.New(logger).Execute(ctx, project, verify)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				errs[i] = fmt.Errorf("processing %s: %w", project.BinaryFile, err)
				logger.Error("Processing failed", log.String("file", project.BinaryFile), log.Err(err))
				return nil
			}

			results[i] = result
			logResult(logger, project, result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, errors.Join(errs...)
}

func logResult(logger *log.Logger, project options.Project, result pipeline.Result) {
	logger.Info("Disassembled",
		log.String("file", result.File),
		log.String("output", project.OutputFile),
		log.Int("instructions", result.Instructions),
		log.Int("data_bytes", result.DataBytes),
		log.Int("labels", result.Labels),
		log.Int("warnings", len(result.Warnings)))

	if len(result.Warnings) > 0 {
		logger.Warn("Disassembly produced warnings",
			log.String("file", result.File),
			log.Int("warnings", len(result.Warnings)),
			log.String("log", project.LogFile))
	}
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("z80disasm", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
