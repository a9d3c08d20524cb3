// File: pkg/combine/helpers.go
package combine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"textify/pkg/source"

	"go.uber.org/zap"
)

// ensureDirectory ensures a directory exists, creating it if necessary.
func ensureDirectory(path string, logger *zap.Logger) error {
	if err := os.MkdirAll(path, os.ModePerm); err != nil {
		logger.Error("Failed to create directory", zap.String("path", path), zap.Error(err))
		return err
	}
	logger.Debug("Ensured directory exists", zap.String("path", path))
	return nil
}

// warnIfExists logs a warning when path is about to be overwritten.
func warnIfExists(path string, logger *zap.Logger) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	logger.Warn("The output file already exists and will be overwritten", zap.String("file", path))
	return true
}

// isAccessError reports whether err means the source itself is unreachable.
func isAccessError(err error) bool {
	var accessErr *source.AccessError
	return errors.As(err, &accessErr)
}

// localCopy returns a path on disk holding the file's bytes. Local sources
// hand out the original path; others are spilled to a temporary file which
// the returned cleanup removes.
func localCopy(ctx context.Context, src source.Source, path string) (string, func(), error) {
	if lp, ok := src.(source.LocalPather); ok {
		return lp.LocalPath(path), func() {}, nil
	}

	data, err := src.ReadFile(ctx, path)
	if err != nil {
		return "", nil, err
	}

	tmp, err := os.CreateTemp("", "textify-*"+filepath.Ext(path))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temporary file: %w", err)
	}
	return tmp.Name(), cleanup, nil
}
