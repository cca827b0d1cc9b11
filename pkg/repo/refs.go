package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/odvcencio/simplegit/pkg/object"
)

// ListRefs lists references under .simplegit/refs.
// Names are returned relative to refs root, e.g. "heads/main". Unborn
// branches map to "".
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.MetaDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		h, err := readRefHash(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = h
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

func (r *Repo) branchRefPath(name string) string {
	return filepath.Join(r.MetaDir, "refs", "heads", filepath.FromSlash(name))
}

// branchExists reports whether refs/heads/<name> is a ref file. Namespace
// directories such as refs/heads/team for team/x are not branches.
func (r *Repo) branchExists(name string) (bool, error) {
	info, err := os.Lstat(r.branchRefPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func branchRefName(name string) string {
	return "refs/heads/" + name
}
