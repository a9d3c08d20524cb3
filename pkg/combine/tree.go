// File: pkg/combine/tree.go
package combine

import (
	"context"
	"fmt"
	"strings"

	"textify/pkg/source"
)

const treeIndent = "    "

// RenderTree lists the source depth-first, children sorted by name, one line
// per entry. Directories end in "/" and each level is indented by four spaces.
// Ignored entries are left out together with everything below them.
func RenderTree(ctx context.Context, src source.Source, policy Policy, skipPaths ...string) ([]string, error) {
	f := newFilter(policy, skipPaths)
	var lines []string
	if err := generateTreeRecursively(ctx, src, f, "", "", &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// generateTreeRecursively appends the lines for dir and its descendants.
func generateTreeRecursively(ctx context.Context, src source.Source, f *filter, dir, prefix string, lines *[]string) error {
	entries, err := src.ListChildren(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to read directory '%s': %w", dir, err)
	}

	for _, entry := range entries {
		if !f.keep(entry) {
			continue
		}
		if entry.IsDir {
			*lines = append(*lines, prefix+entry.Name+"/")
			if err := generateTreeRecursively(ctx, src, f, entry.Path, prefix+treeIndent, lines); err != nil {
				return err
			}
			continue
		}
		*lines = append(*lines, prefix+entry.Name)
	}
	return nil
}

// formatTree joins rendered lines the way they appear in the document.
func formatTree(lines []string) string {
	return strings.Join(lines, "\n")
}
