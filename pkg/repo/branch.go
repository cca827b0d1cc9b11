package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ValidateBranchName rejects names that cannot be stored as a ref file or
// that would be ambiguous in HEAD.
func ValidateBranchName(name string) error {
	switch {
	case name == "", name == "HEAD":
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"):
	case strings.HasSuffix(name, ".lock"), strings.HasSuffix(name, "."):
	case strings.Contains(name, ".."), strings.Contains(name, "//"):
	case strings.ContainsAny(name, " \t\r\n~^:?*[\\\x7f"):
	default:
		for _, seg := range strings.Split(name, "/") {
			if strings.HasPrefix(seg, ".") {
				return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
}

// CreateBranch creates a branch named name pointing at the current branch's
// commit (or nothing, if the current branch is unborn). HEAD is not moved.
func (r *Repo) CreateBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}

	refPath := r.branchRefPath(name)
	if _, err := os.Stat(refPath); err == nil {
		return fmt.Errorf("create branch %q: %w", name, ErrBranchExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("create branch %q: %w", name, err)
	}

	target, err := r.ResolveRef("HEAD")
	if err != nil {
		return fmt.Errorf("create branch %q: resolve HEAD: %w", name, err)
	}

	reason := "branch: created"
	if current := r.CurrentBranch(); current != "" {
		reason = "branch: created from " + current
	}
	if err := r.updateRef(branchRefName(name), target, reason, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return fmt.Errorf("create branch %q: %w", name, ErrBranchExists)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	return nil
}

// Checkout points HEAD at the named branch. The working tree and the index
// are left as they are.
func (r *Repo) Checkout(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	exists, err := r.branchExists(name)
	if err != nil {
		return fmt.Errorf("checkout %q: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("checkout %q: %w", name, ErrUnknownBranch)
	}

	headPath := filepath.Join(r.MetaDir, "HEAD")
	if err := writeFileAtomic(headPath, []byte("ref: "+branchRefName(name)+"\n")); err != nil {
		return fmt.Errorf("checkout: update HEAD: %w", err)
	}
	return nil
}

// CurrentBranch returns the branch HEAD points to, or "" when HEAD is
// detached or cannot be read.
func (r *Repo) CurrentBranch() string {
	ref, err := r.headBranchRef()
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(ref, "refs/heads/")
}

// ListBranches returns every branch name under refs/heads, sorted.
func (r *Repo) ListBranches() ([]string, error) {
	refs, err := r.ListRefs("heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, strings.TrimPrefix(name, "heads/"))
	}
	sort.Strings(names)
	return names, nil
}
