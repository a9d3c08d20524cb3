// Package combine serializes a project tree into a single text document: the
// directory structure first, then one section per file.
package combine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"textify/pkg/dbsummary"
	"textify/pkg/source"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run writes the document for src to args.Output, replacing any existing file.
//
// Per-file read and decode problems and database errors end up as notes in
// the document. Failures to reach the source or to write the output abort
// the run.
func Run(ctx context.Context, src source.Source, args Arguments, logger *zap.Logger) (report Report, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := args.Validate(); err != nil {
		return report, err
	}

	logger = logger.With(zap.String("runID", uuid.NewString()), zap.String("policy", args.Policy.Name()))
	startTime := time.Now()
	logger.Info("Starting serialization", zap.String("output", args.Output), zap.Bool("includeDB", args.IncludeDB))

	report.Output = args.Output
	report.Overwritten = warnIfExists(args.Output, logger)

	if err := ensureDirectory(filepath.Dir(args.Output), logger); err != nil {
		return report, fmt.Errorf("failed to create output directory: %w", err)
	}

	outFile, err := os.Create(args.Output)
	if err != nil {
		logger.Error("Failed to create output file", zap.String("file", args.Output), zap.Error(err))
		return report, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			logger.Error("Failed to close output file", zap.String("file", args.Output), zap.Error(cerr))
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	writer := bufio.NewWriter(outFile)
	s := &serializer{src: src, args: args, filter: newFilter(args.Policy, args.SkipPaths), w: writer, logger: logger, report: &report}
	if err := s.run(ctx); err != nil {
		logger.Error("Serialization failed", zap.Error(err))
		return report, err
	}
	if err := writer.Flush(); err != nil {
		logger.Error("Failed to flush output file", zap.String("file", args.Output), zap.Error(err))
		return report, fmt.Errorf("failed to flush output: %w", err)
	}

	logger.Info("Serialization completed",
		zap.String("output", args.Output),
		zap.Int("files", report.Files),
		zap.Int("databases", report.Databases),
		zap.Int("readErrors", report.ReadErrors),
		zap.Duration("elapsed", time.Since(startTime)))
	return report, nil
}

type serializer struct {
	src    source.Source
	args   Arguments
	filter *filter
	w      io.Writer
	logger *zap.Logger
	report *Report
}

func (s *serializer) run(ctx context.Context) error {
	lines, err := RenderTree(ctx, s.src, s.args.Policy, s.args.SkipPaths...)
	if err != nil {
		return fmt.Errorf("failed to generate tree structure: %w", err)
	}
	s.report.TreeEntries = len(lines)

	if _, err := fmt.Fprintf(s.w, "Project Structure:\n%s\n\nFile Contents:\n", formatTree(lines)); err != nil {
		return fmt.Errorf("failed to write tree content: %w", err)
	}

	visit := func(entry source.Entry) error { return s.writeEntry(ctx, entry) }
	if err := walkFiles(ctx, s.src, s.filter, "", visit); err != nil {
		return fmt.Errorf("failed to process files: %w", err)
	}
	return nil
}

// writeEntry renders a single file according to its classification.
func (s *serializer) writeEntry(ctx context.Context, entry source.Entry) error {
	kind := s.args.Policy.Classify(entry.Name)
	label := s.src.Label(entry.Path)
	s.logger.Debug("Processing file", zap.String("path", entry.Path), zap.Stringer("kind", kind))

	switch kind {
	case Excluded:
		s.report.Excluded++
		return nil
	case DatabaseFile:
		if !s.args.IncludeDB {
			s.report.DatabasesSkipped++
			_, err := fmt.Fprintf(s.w, "\n\n--- DB File (content not included): %s ---\n\n", label)
			return err
		}
		return s.writeDatabase(ctx, entry, label)
	default:
		return s.writePlainText(ctx, entry, label)
	}
}

func (s *serializer) writePlainText(ctx context.Context, entry source.Entry, label string) error {
	data, readErr := s.src.ReadFile(ctx, entry.Path)
	if readErr != nil {
		if isAccessError(readErr) {
			return readErr
		}
		s.report.ReadErrors++
		s.logger.Warn("Failed to read file", zap.String("path", entry.Path), zap.Error(readErr))
	} else {
		s.report.Files++
	}
	return WriteFileSection(s.w, label, data, readErr)
}

func (s *serializer) writeDatabase(ctx context.Context, entry source.Entry, label string) error {
	path, cleanup, err := localCopy(ctx, s.src, entry.Path)
	if err != nil {
		if isAccessError(err) {
			return err
		}
		s.report.ReadErrors++
		s.logger.Warn("Failed to read database file", zap.String("path", entry.Path), zap.Error(err))
		return WriteFileSection(s.w, label, nil, err)
	}
	defer cleanup()

	s.report.Databases++
	return dbsummary.Summarize(ctx, s.w, label, path)
}
