package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/simplegit/pkg/object"
)

// MergeResult describes a merge commit.
type MergeResult struct {
	Commit   object.Hash
	Parents  [2]object.Hash // current branch head, target branch head
	Snapshot object.Snapshot
	// Replaced lists paths present on both sides with different content,
	// where the target branch's version was taken.
	Replaced []string
}

// Merge combines the snapshot of the target branch into the current branch
// and records the result as a two-parent commit. target is always a branch
// name under refs/heads; a missing ref is ErrUnknownBranch.
//
// There is no common-ancestor computation: the merged snapshot is the
// current snapshot overlaid with the target snapshot, so every path present
// on both sides takes the target's version. The author is copied from the
// current branch's head commit and the message is "Merge branch '<target>'".
// Refs are only touched after both commits have been read and the merge
// commit has been stored.
func (r *Repo) Merge(target string) (*MergeResult, error) {
	headRef, err := r.headBranchRef()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	targetHash, err := r.resolveBranch(target)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	currentHash, err := r.ResolveRef(headRef)
	if err != nil {
		return nil, fmt.Errorf("merge: resolve %s: %w", headRef, err)
	}
	if currentHash == "" {
		return nil, fmt.Errorf("merge: current branch %q: %w", r.CurrentBranch(), ErrUnbornBranch)
	}
	if targetHash == "" {
		return nil, fmt.Errorf("merge: branch %q: %w", target, ErrUnbornBranch)
	}

	current, err := r.ReadCommit(currentHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	theirs, err := r.ReadCommit(targetHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	var replaced []string
	for path, h := range theirs.Snapshot {
		if ours, ok := current.Snapshot[path]; ok && ours != h {
			replaced = append(replaced, path)
		}
	}
	sort.Strings(replaced)

	merged := current.Snapshot.Overlay(theirs.Snapshot)
	mergeObj := &object.CommitObj{
		Message:   fmt.Sprintf("Merge branch '%s'", target),
		Timestamp: commitTimestamp(),
		Parents:   []object.Hash{currentHash, targetHash},
		Author:    current.Author,
		Snapshot:  merged,
	}

	mergeHash, err := r.Store.WriteCommit(mergeObj)
	if err != nil {
		return nil, fmt.Errorf("merge: write commit: %w", err)
	}
	if err := r.updateRef(headRef, mergeHash, "merge "+target, currentHash); err != nil {
		return nil, fmt.Errorf("merge: update ref %q: %w", headRef, err)
	}

	return &MergeResult{
		Commit:   mergeHash,
		Parents:  [2]object.Hash{currentHash, targetHash},
		Snapshot: merged,
		Replaced: replaced,
	}, nil
}
