// Package main implements the main entry point for a Z80 static disassembler
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80disasm/internal/cli"
	"github.com/retroenv/z80disasm/internal/config"
	"github.com/retroenv/z80disasm/internal/fileprocessor"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		logger := config.CreateLogger(opts.Verbose, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			if usageErr.Error() != "" {
				logger.Error("Invalid parameters", log.Err(err))
			}
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Verbose, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	if opts.Init != "" {
		if err := config.WriteDefaultProject(opts.Init); err != nil {
			logger.Fatal("Creating project file failed", log.Err(err))
		}
		logger.Info("Created project file", log.String("file", opts.Init))
		return
	}

	projects, err := fileprocessor.GetProjectsToProcess(opts)
	if err != nil {
		logger.Fatal("Reading project failed", log.Err(err))
	}
	if len(projects) == 0 {
		logger.Fatal("No files to process")
	}

	if _, err := fileprocessor.ProcessProjects(ctx, logger, projects, opts.Verify); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Disassembling failed", log.Err(err))
		os.Exit(1)
	}
}
