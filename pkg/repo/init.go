package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/simplegit/pkg/object"
)

// DefaultBranch is the branch HEAD names in a fresh repository.
const DefaultBranch = "main"

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// Init creates a new repository at path. It creates the .simplegit/
// directory structure: HEAD, an empty (unborn) main branch, an empty index,
// objects/ and config. Returns ErrAlreadyInitialized if .simplegit/ exists.
func Init(path string, cfg *Config) (*Repo, error) {
	metaDir := filepath.Join(path, MetaDirName)

	if _, err := os.Stat(metaDir); err == nil {
		return nil, fmt.Errorf("init: %s: %w", metaDir, ErrAlreadyInitialized)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	dirs := []string{
		filepath.Join(metaDir, "objects"),
		filepath.Join(metaDir, "refs", "heads"),
		filepath.Join(metaDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(metaDir, "HEAD"), "ref: refs/heads/" + DefaultBranch + "\n"},
		{filepath.Join(metaDir, "refs", "heads", DefaultBranch), ""},
		{filepath.Join(metaDir, "index"), ""},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return nil, fmt.Errorf("init: write %s: %w", filepath.Base(f.path), err)
		}
	}

	if err := writeConfigFile(metaDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return openAt(path, metaDir)
}

// Open searches upward from path for a .simplegit/ directory and opens the
// repository. Returns ErrNotARepository if none is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		metaDir := filepath.Join(cur, MetaDirName)
		info, err := os.Stat(metaDir)
		if err == nil && info.IsDir() {
			return openAt(cur, metaDir)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %w", ErrNotARepository)
		}
		cur = parent
	}
}

func openAt(root, metaDir string) (*Repo, error) {
	cfg, err := readConfigFile(metaDir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	var store *object.Store
	switch cfg.Core.ObjectStore {
	case ObjectStoreBolt:
		backend, err := object.OpenBoltBackend(filepath.Join(metaDir, "objects.db"))
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		store = object.NewStore(backend)
	default:
		store = object.NewFileStore(metaDir)
	}

	return &Repo{
		RootDir: root,
		MetaDir: metaDir,
		Store:   store,
	}, nil
}

// Head reads .simplegit/HEAD. If the content starts with "ref: ", it returns
// the ref path (e.g., "refs/heads/main"). Otherwise it returns the raw
// content as a detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.MetaDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimSpace(string(data))

	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimSpace(strings.TrimPrefix(content, "ref: ")), nil
	}
	return content, nil
}

// headBranchRef returns HEAD's symbolic target ("refs/heads/<name>"), or
// ErrDetachedHead when HEAD holds a raw hash.
func (r *Repo) headBranchRef() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(head, "refs/heads/") {
		return "", ErrDetachedHead
	}
	return head, nil
}

// ResolveRef resolves a ref name to a commit hash. An unborn branch (empty
// ref file, or HEAD naming a branch that has no file yet) resolves to "".
//
// Resolution order:
//  1. If name is "HEAD", read HEAD. If HEAD is symbolic, resolve the target ref.
//  2. If name starts with "refs/", read .simplegit/<name>.
//  3. Otherwise, try "refs/heads/<name>"; a missing file is ErrUnknownBranch.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(head, "refs/") {
			return readRefHash(filepath.Join(r.MetaDir, filepath.FromSlash(head)))
		}
		return object.Hash(head), nil
	}

	if strings.HasPrefix(name, "refs/") {
		return readRefHash(filepath.Join(r.MetaDir, filepath.FromSlash(name)))
	}

	return r.resolveBranch(name)
}

// resolveBranch reads refs/heads/<name>. The name is never interpreted as a
// full ref path, and a ref that is not a regular file is ErrUnknownBranch.
func (r *Repo) resolveBranch(name string) (object.Hash, error) {
	if err := ValidateBranchName(name); err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	exists, err := r.branchExists(name)
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	if !exists {
		return "", fmt.Errorf("resolve ref %q: %w", name, ErrUnknownBranch)
	}
	return readRefHash(r.branchRefPath(name))
}

// UpdateRefCAS writes a hash to the named ref file under .simplegit/ using
// lockfile + rename atomic semantics. If expectedOld is provided, the
// update only succeeds when the current ref hash matches it.
func (r *Repo) UpdateRefCAS(name string, h object.Hash, expectedOld ...object.Hash) error {
	return r.updateRef(name, h, "update", expectedOld...)
}

func (r *Repo) updateRef(name string, h object.Hash, reason string, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	hasExpectedOld := len(expectedOld) == 1
	wantOldHash := object.Hash("")
	if hasExpectedOld {
		wantOldHash = expectedOld[0]
	}

	refPath := filepath.Join(r.MetaDir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if hasExpectedOld && oldHash != wantOldHash {
		return fmt.Errorf(
			"update ref %q: %w (expected %s, found %s)",
			name,
			ErrRefCASMismatch,
			wantOldHash,
			oldHash,
		)
	}

	if _, err := lockFile.WriteString(string(h) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false

	// The ref is already committed; a reflog failure only loses history.
	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		return fmt.Errorf("update ref %q: ref updated but reflog append failed: %w", name, err)
	}
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	h := object.Hash(strings.TrimSpace(string(data)))
	if h != "" && !object.ValidHash(h) {
		return "", fmt.Errorf("ref %s holds malformed hash %q: %w", filepath.Base(refPath), h, ErrObjectCorrupt)
	}
	return h, nil
}
