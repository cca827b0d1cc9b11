package repo

import (
	"errors"

	"github.com/odvcencio/simplegit/pkg/object"
)

var (
	ErrNotARepository     = errors.New("not a simplegit repository (or any parent up to /)")
	ErrAlreadyInitialized = errors.New("repository already exists")
	ErrEmptyIndex         = errors.New("nothing to commit, index is empty")
	ErrNoAuthorConfigured = errors.New("no author configured (run: simplegit config --author \"Name <email>\")")
	ErrDetachedHead       = errors.New("HEAD is detached; a named branch is required")
	ErrUnknownBranch      = errors.New("unknown branch")
	ErrBranchExists       = errors.New("branch already exists")
	ErrInvalidBranchName  = errors.New("invalid branch name")
	ErrUnbornBranch       = errors.New("branch has no commits yet")
	ErrPathNotFound       = errors.New("path not found")
	ErrIndexCorrupt       = errors.New("index corrupt")
	ErrRefCASMismatch     = errors.New("ref compare-and-swap mismatch")
	ErrSignatureInvalid   = errors.New("commit signature invalid")

	// Re-exported so callers only need this package for the full taxonomy.
	ErrObjectNotFound = object.ErrObjectNotFound
	ErrObjectCorrupt  = object.ErrObjectCorrupt
)
