package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/simplegit/pkg/object"
)

const testAuthor = "Test Author <test@example.com>"

// initTestRepo creates a repository with an author configured and a pinned
// clock that advances one second per commit.
func initTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), &Config{User: UserConfig{Author: testAuthor}})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	pinClock(t)
	return r
}

func pinClock(t *testing.T) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ticks := 0
	orig := nowFunc
	nowFunc = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	t.Cleanup(func() { nowFunc = orig })
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	p := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func stage(t *testing.T, r *Repo, target string) *StageResult {
	t.Helper()
	res, err := r.Stage(target, r.RootDir, NewIgnoreChecker(r.RootDir).IsIgnored)
	if err != nil {
		t.Fatalf("Stage(%q): %v", target, err)
	}
	return res
}

func commitFile(t *testing.T, r *Repo, rel, content, message string) object.Hash {
	t.Helper()
	writeFile(t, r, rel, content)
	stage(t, r, rel)
	h, err := r.Commit(message)
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return h
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected directory %q: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %q to be a directory", path)
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected file %q: %v", path, err)
	}
	if info.IsDir() {
		t.Fatalf("expected %q to be a file, got directory", path)
	}
}

func countObjectFiles(t *testing.T, r *Repo) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(filepath.Join(r.MetaDir, "objects"), func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk objects: %v", err)
	}
	return n
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
