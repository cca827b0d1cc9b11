package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/simplegit/pkg/diff"
	"github.com/odvcencio/simplegit/pkg/object"
)

// Diff returns line diffs for tracked files, sorted by path.
//
// With staged set, each index entry is compared with the snapshot of the
// commit HEAD resolves to. Otherwise every tracked path (staged or
// committed) is compared with the file on disk, using the staged content as
// the baseline when there is one. A tracked file missing from disk diffs
// against nothing.
func (r *Repo) Diff(staged bool) ([]*diff.FileDiff, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	committed, err := r.headSnapshot()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	var results []*diff.FileDiff
	if staged {
		for _, path := range sortedKeys(idx.Entries) {
			before, err := r.blobOrNil(committed[path])
			if err != nil {
				return nil, fmt.Errorf("diff: %s: %w", path, err)
			}
			after, err := r.Store.Get(idx.Entries[path])
			if err != nil {
				return nil, fmt.Errorf("diff: %s: %w", path, err)
			}
			fd, err := diff.Unified(path, before, after)
			if err != nil {
				return nil, err
			}
			if fd != nil {
				results = append(results, fd)
			}
		}
		return results, nil
	}

	baseline := committed.Overlay(idx.Entries)
	for _, path := range sortedKeys(baseline) {
		before, err := r.Store.Get(baseline[path])
		if err != nil {
			return nil, fmt.Errorf("diff: %s: %w", path, err)
		}
		after, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(path)))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("diff: read %s: %w", path, err)
			}
			after = nil
		}
		if after != nil && object.HashBlob(after) == baseline[path] {
			continue
		}
		fd, err := diff.Unified(path, before, after)
		if err != nil {
			return nil, err
		}
		if fd != nil {
			results = append(results, fd)
		}
	}
	return results, nil
}

func (r *Repo) blobOrNil(h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	return r.Store.Get(h)
}

func sortedKeys(m map[string]object.Hash) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
