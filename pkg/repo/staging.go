package repo

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/simplegit/pkg/object"
)

// Index is the staging area: a flat map from repo-relative path to the blob
// hash staged for it.
type Index struct {
	Entries map[string]object.Hash
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{Entries: make(map[string]object.Hash)}
}

// StageResult reports what a Stage call did.
type StageResult struct {
	Added        []string // paths whose blob was written and staged, sorted
	Dropped      []string // stale entries removed because the file matches the last commit again
	NothingToAdd bool     // no file in the batch caused a write
}

// indexPath returns the filesystem path to the staging index file.
func (r *Repo) indexPath() string {
	return filepath.Join(r.MetaDir, "index")
}

// ReadIndex loads .simplegit/index. A missing file is an empty index.
//
// Each line is "<hash> <path>". The hash never contains a space, so the path
// is everything after the first one and may itself contain spaces.
func (r *Repo) ReadIndex() (*Index, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewIndex(), nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}

	idx := NewIndex()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		hash, path, ok := strings.Cut(line, " ")
		if !ok || path == "" || !object.ValidHash(object.Hash(hash)) {
			return nil, fmt.Errorf("read index: line %d: malformed record %q: %w", lineNo, line, ErrIndexCorrupt)
		}
		idx.Entries[path] = object.Hash(hash)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}

// WriteIndex atomically replaces .simplegit/index. Records are sorted by
// path so the file is stable across writes.
func (r *Repo) WriteIndex(idx *Index) error {
	paths := make([]string, 0, len(idx.Entries))
	for p := range idx.Entries {
		if strings.ContainsAny(p, "\r\n") {
			return fmt.Errorf("write index: path %q contains a line break", p)
		}
		if !utf8.ValidString(p) {
			return fmt.Errorf("write index: path %q is not valid UTF-8", p)
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	for _, p := range paths {
		fmt.Fprintf(&buf, "%s %s\n", idx.Entries[p], p)
	}

	if err := writeFileAtomic(r.indexPath(), buf.Bytes()); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Stage adds files to the index. target selects the files:
//
//   - "." or "./": every file under the working root, recursively
//   - "*": files directly inside the working root, not recursing
//   - anything else: a file or directory path, resolved against cwd;
//     directories are walked recursively
//
// Files for which ignored returns true are skipped, as is the metadata
// directory. For each remaining file the content hash is compared with the
// last commit and then with the index; only files that differ from both are
// written to the object store and staged. Paths must be valid UTF-8 without
// line breaks, since snapshots store them as JSON keys.
func (r *Repo) Stage(target, cwd string, ignored IgnoreFunc) (*StageResult, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("stage: no path specified")
	}
	if ignored == nil {
		ignored = func(string) bool { return false }
	}

	files, err := r.resolveStageTarget(target, cwd, ignored)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}

	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	committed, err := r.headSnapshot()
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}

	result := &StageResult{}
	changed := false
	for _, rel := range files {
		if strings.ContainsAny(rel, "\r\n") {
			return nil, fmt.Errorf("stage: path %q contains a line break", rel)
		}
		if !utf8.ValidString(rel) {
			return nil, fmt.Errorf("stage: path %q is not valid UTF-8", rel)
		}

		content, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("stage: read %q: %w", rel, err)
		}
		h := object.HashBlob(content)

		if committedHash, ok := committed[rel]; ok && committedHash == h {
			if _, staged := idx.Entries[rel]; staged {
				delete(idx.Entries, rel)
				result.Dropped = append(result.Dropped, rel)
				changed = true
			}
			continue
		}
		if idx.Entries[rel] == h {
			continue
		}

		written, err := r.Store.Put(content)
		if err != nil {
			return nil, fmt.Errorf("stage: write blob %q: %w", rel, err)
		}
		idx.Entries[rel] = written
		result.Added = append(result.Added, rel)
		changed = true
	}

	if changed {
		if err := r.WriteIndex(idx); err != nil {
			return nil, fmt.Errorf("stage: %w", err)
		}
	}
	result.NothingToAdd = len(result.Added) == 0
	return result, nil
}

// resolveStageTarget expands target into a sorted list of repo-relative,
// slash-separated file paths.
func (r *Repo) resolveStageTarget(target, cwd string, ignored IgnoreFunc) ([]string, error) {
	switch target {
	case ".", "./":
		return r.walkFiles(r.RootDir, ignored)
	case "*":
		return r.topLevelFiles(ignored)
	}

	abs := target
	if !filepath.IsAbs(abs) {
		if cwd == "" {
			cwd = r.RootDir
		}
		abs = filepath.Join(cwd, target)
	}
	rel, err := r.repoRelPath(abs)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", target, err)
	}
	if rel != "." && (isMetaPath(rel) || ignored(rel)) {
		return nil, nil
	}

	info, err := os.Lstat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", target, ErrPathNotFound)
		}
		return nil, fmt.Errorf("stat %q: %w", target, err)
	}
	switch {
	case info.IsDir():
		return r.walkFiles(abs, ignored)
	case info.Mode().IsRegular():
		return []string{rel}, nil
	default:
		return nil, fmt.Errorf("%q: unsupported file type %s", target, info.Mode().Type())
	}
}

// walkFiles returns every regular file under dir, skipping the metadata
// directory and anything ignored.
func (r *Repo) walkFiles(dir string, ignored IgnoreFunc) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := r.repoRelPath(path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if isMetaPath(rel) || ignored(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// topLevelFiles returns the regular files directly inside the working root.
func (r *Repo) topLevelFiles(ignored IgnoreFunc) ([]string, error) {
	entries, err := os.ReadDir(r.RootDir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || isMetaPath(name) || ignored(name) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// repoRelPath converts an absolute path into a slash-separated path
// relative to the repository root. Paths outside the root are
// ErrPathNotFound.
func (r *Repo) repoRelPath(abs string) (string, error) {
	rel, err := filepath.Rel(r.RootDir, filepath.Clean(abs))
	if err != nil {
		return "", fmt.Errorf("cannot make %q relative to %q: %v: %w", abs, r.RootDir, err, ErrPathNotFound)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%q is outside repository at %q: %w", abs, r.RootDir, ErrPathNotFound)
	}
	return rel, nil
}

// RepoRelPath resolves p (absolute, or relative to cwd) to a repo-relative
// slash path.
func (r *Repo) RepoRelPath(p, cwd string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(cwd, p)
	}
	return r.repoRelPath(p)
}

// Unstage removes entries from the index. An empty target (or ".") clears
// the whole index; otherwise the entry for target and every entry below
// target/ are removed. The removed paths are returned sorted. Commit history
// is never read or changed.
func (r *Repo) Unstage(target string) ([]string, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("unstage: %w", err)
	}

	target = strings.TrimSpace(target)
	if target != "" {
		target = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(target)), "./")
	}

	var removed []string
	for p := range idx.Entries {
		if target == "" || target == "." || p == target || strings.HasPrefix(p, target+"/") {
			removed = append(removed, p)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	for _, p := range removed {
		delete(idx.Entries, p)
	}
	sort.Strings(removed)

	if err := r.WriteIndex(idx); err != nil {
		return nil, fmt.Errorf("unstage: %w", err)
	}
	return removed, nil
}
