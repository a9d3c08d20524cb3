// File: pkg/combine/traversal.go
package combine

import (
	"context"
	"fmt"

	"textify/pkg/source"
)

// filter combines a policy with paths that are always left out.
type filter struct {
	policy Policy
	skip   map[string]struct{}
}

func newFilter(policy Policy, skipPaths []string) *filter {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return &filter{policy: policy, skip: skip}
}

func (f *filter) keep(e source.Entry) bool {
	if _, ok := f.skip[e.Path]; ok {
		return false
	}
	return !f.policy.Ignored(e.Path, e.IsDir)
}

// walkFiles calls visit for every kept file under dir, depth-first in the
// same order the tree is rendered.
func walkFiles(ctx context.Context, src source.Source, f *filter, dir string, visit func(source.Entry) error) error {
	entries, err := src.ListChildren(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to read directory '%s': %w", dir, err)
	}

	for _, entry := range entries {
		if !f.keep(entry) {
			continue
		}
		if entry.IsDir {
			if err := walkFiles(ctx, src, f, entry.Path, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(entry); err != nil {
			return err
		}
	}
	return nil
}
