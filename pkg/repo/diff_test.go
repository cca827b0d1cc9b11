package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiff_WorkingTreeAgainstCommit(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "one\ntwo\n", "base")
	writeFile(t, r, "a.txt", "one\nTWO\n")

	diffs, err := r.Diff(false)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(diffs) != 1 || diffs[0].Path != "a.txt" {
		t.Fatalf("diffs = %+v, want one for a.txt", diffs)
	}
	if !strings.Contains(diffs[0].Text, "-two") || !strings.Contains(diffs[0].Text, "+TWO") {
		t.Fatalf("unexpected diff text:\n%s", diffs[0].Text)
	}

	staged, err := r.Diff(true)
	if err != nil {
		t.Fatalf("Diff(staged): %v", err)
	}
	if len(staged) != 0 {
		t.Fatalf("staged diffs = %+v, want none", staged)
	}
}

func TestDiff_StagedAgainstCommit(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "old\n", "base")
	writeFile(t, r, "a.txt", "new\n")
	writeFile(t, r, "b.txt", "added\n")
	stage(t, r, "*")

	diffs, err := r.Diff(true)
	if err != nil {
		t.Fatalf("Diff(staged): %v", err)
	}
	if len(diffs) != 2 || diffs[0].Path != "a.txt" || diffs[1].Path != "b.txt" {
		t.Fatalf("staged diffs = %+v", diffs)
	}
	if !strings.Contains(diffs[1].Text, "--- /dev/null") {
		t.Fatalf("new file diff should come from /dev/null:\n%s", diffs[1].Text)
	}

	// Working tree matches the index, so the unstaged diff is empty.
	unstaged, err := r.Diff(false)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(unstaged) != 0 {
		t.Fatalf("unstaged diffs = %+v, want none", unstaged)
	}
}

func TestDiff_DeletedFile(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "gone.txt", "bye\n", "base")
	if err := os.Remove(filepath.Join(r.RootDir, "gone.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	diffs, err := r.Diff(false)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(diffs) != 1 || !strings.Contains(diffs[0].Text, "+++ /dev/null") {
		t.Fatalf("diffs = %+v, want deletion", diffs)
	}
}
