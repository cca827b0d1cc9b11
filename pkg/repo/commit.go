package repo

import (
	"fmt"

	"github.com/odvcencio/simplegit/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// LogEntry pairs a commit with its hash.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Commit records the staged changes on the current branch.
//
//  1. Refuse a detached HEAD, a missing author and an empty index, in that order
//  2. Load the branch's current commit snapshot (empty for an unborn branch)
//  3. Overlay the staged entries on it; staged entries win
//  4. Write the commit record, then advance the branch ref
//  5. Clear the index and return the new commit hash
func (r *Repo) Commit(message string) (object.Hash, error) {
	return r.CommitWithSigner(message, nil)
}

// CommitWithSigner creates a new commit and signs it when signer is provided.
func (r *Repo) CommitWithSigner(message string, signer CommitSigner) (object.Hash, error) {
	headRef, err := r.headBranchRef()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	author, err := r.Author()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if author == "" {
		return "", fmt.Errorf("commit: %w", ErrNoAuthorConfigured)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if len(idx.Entries) == 0 {
		return "", fmt.Errorf("commit: %w", ErrEmptyIndex)
	}

	parentHash, err := r.ResolveRef(headRef)
	if err != nil {
		return "", fmt.Errorf("commit: resolve %s: %w", headRef, err)
	}
	parentSnapshot := object.Snapshot{}
	var parents []object.Hash
	if parentHash != "" {
		parent, err := r.Store.ReadCommit(parentHash)
		if err != nil {
			return "", fmt.Errorf("commit: read parent %s: %w", parentHash, err)
		}
		parentSnapshot = parent.Snapshot
		parents = []object.Hash{parentHash}
	}

	commitObj := &object.CommitObj{
		Message:   message,
		Timestamp: commitTimestamp(),
		Parents:   parents,
		Author:    author,
		Snapshot:  parentSnapshot.Overlay(idx.Entries),
	}
	if signer != nil {
		payload, err := object.CommitSigningPayload(commitObj)
		if err != nil {
			return "", fmt.Errorf("commit: %w", err)
		}
		signature, err := signer(payload)
		if err != nil {
			return "", fmt.Errorf("commit: sign commit: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := r.Store.WriteCommit(commitObj)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	reason := "commit: " + firstLine(message)
	if parentHash == "" {
		reason = "commit (initial): " + firstLine(message)
	}
	if err := r.updateRef(headRef, commitHash, reason, parentHash); err != nil {
		return "", fmt.Errorf("commit: update ref %q: %w", headRef, err)
	}

	if err := r.WriteIndex(NewIndex()); err != nil {
		return "", fmt.Errorf("commit: clear index: %w", err)
	}
	return commitHash, nil
}

// ReadCommit loads the commit stored under h.
func (r *Repo) ReadCommit(h object.Hash) (*object.CommitObj, error) {
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", h, err)
	}
	return c, nil
}

// Snapshot returns the full path to blob hash mapping recorded by commit h.
func (r *Repo) Snapshot(h object.Hash) (object.Snapshot, error) {
	c, err := r.ReadCommit(h)
	if err != nil {
		return nil, err
	}
	return c.Snapshot.Clone(), nil
}

// headSnapshot returns the snapshot of the commit HEAD resolves to, or an
// empty snapshot when there is no commit yet.
func (r *Repo) headSnapshot() (object.Snapshot, error) {
	h, err := r.ResolveRef("HEAD")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return object.Snapshot{}, nil
	}
	c, err := r.ReadCommit(h)
	if err != nil {
		return nil, err
	}
	return c.Snapshot, nil
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits (all when limit <= 0)
// newest first.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start

	for current != "" && (limit <= 0 || len(entries) < limit) {
		c, err := r.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return entries, nil
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
