package repo

import (
	"fmt"
	"io"

	"github.com/odvcencio/simplegit/pkg/bundle"
)

// UnbundleResult reports what an import changed.
type UnbundleResult struct {
	Objects int
	Created []string // branches created from the bundle
	Skipped []string // branches that already existed locally and were left alone
}

// CreateBundle writes the named branches (all branches with commits when
// none are given) and their history to w.
func (r *Repo) CreateBundle(w io.Writer, branches []string) (*bundle.Contents, error) {
	if len(branches) == 0 {
		all, err := r.ListBranches()
		if err != nil {
			return nil, fmt.Errorf("bundle: %w", err)
		}
		branches = all
	}

	var refs []bundle.Ref
	for _, name := range branches {
		h, err := r.ResolveRef(name)
		if err != nil {
			return nil, fmt.Errorf("bundle: %w", err)
		}
		if h == "" {
			continue
		}
		refs = append(refs, bundle.Ref{Name: name, Hash: h})
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("bundle: %w", ErrUnbornBranch)
	}

	return bundle.Write(w, r.Store, refs)
}

// Unbundle imports objects from rd and creates every bundled branch that
// does not exist locally, or exists but is still unborn. Existing branches
// with commits are never moved.
func (r *Repo) Unbundle(rd io.Reader) (*UnbundleResult, error) {
	contents, err := bundle.Read(rd, r.Store)
	if err != nil {
		return nil, fmt.Errorf("unbundle: %w", err)
	}

	result := &UnbundleResult{Objects: contents.Objects}
	for _, ref := range contents.Refs {
		if err := ValidateBranchName(ref.Name); err != nil {
			return nil, fmt.Errorf("unbundle: %w", err)
		}
		current, err := readRefHash(r.branchRefPath(ref.Name))
		if err != nil {
			return nil, fmt.Errorf("unbundle: %w", err)
		}
		if current != "" {
			result.Skipped = append(result.Skipped, ref.Name)
			continue
		}
		if err := r.updateRef(branchRefName(ref.Name), ref.Hash, "unbundle", ""); err != nil {
			return nil, fmt.Errorf("unbundle: %w", err)
		}
		result.Created = append(result.Created, ref.Name)
	}
	return result, nil
}
