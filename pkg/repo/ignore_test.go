package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIgnore_MetaDirAlwaysIgnored(t *testing.T) {
	ic := NewIgnoreChecker(t.TempDir())

	for _, p := range []string{MetaDirName, MetaDirName + "/HEAD", MetaDirName + "/objects/ab/cdef"} {
		if !ic.IsIgnored(p) {
			t.Errorf("expected %s to be ignored", p)
		}
	}
	if ic.IsIgnored(".simplegitignore") {
		t.Error("the ignore file itself should not be ignored")
	}
}

func TestIgnore_NilChecker(t *testing.T) {
	var ic *IgnoreChecker
	if ic.IsIgnored("main.go") {
		t.Error("nil checker ignored a regular file")
	}
	if !ic.IsIgnored(MetaDirName + "/index") {
		t.Error("nil checker must still ignore the metadata directory")
	}
}

func TestIgnore_SimpleGlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "*.log\n")

	ic := NewIgnoreChecker(dir)
	if !ic.IsIgnored("debug.log") {
		t.Error("expected debug.log to be ignored")
	}
	if ic.IsIgnored("debug.txt") {
		t.Error("expected debug.txt to NOT be ignored")
	}
}

func TestIgnore_DirectoryPattern(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "build/\n")

	ic := NewIgnoreChecker(dir)
	if !ic.IsIgnored("build/output.o") {
		t.Error("expected build/output.o to be ignored")
	}
	if !ic.IsIgnored("build/sub/file.txt") {
		t.Error("expected build/sub/file.txt to be ignored")
	}
	if ic.IsIgnored("build") {
		t.Error("a file named build should not match a directory-only pattern")
	}
}

func TestIgnore_NegationPattern(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "*.log\n!important.log\n")

	ic := NewIgnoreChecker(dir)
	if !ic.IsIgnored("debug.log") {
		t.Error("expected debug.log to be ignored")
	}
	if ic.IsIgnored("important.log") {
		t.Error("expected important.log to NOT be ignored (negation)")
	}
}

func TestIgnore_CommentAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "# this is a comment\n\n*.log\n   \n")

	ic := NewIgnoreChecker(dir)
	if !ic.IsIgnored("debug.log") {
		t.Error("expected debug.log to be ignored")
	}
	if ic.IsIgnored("# this is a comment") {
		t.Error("expected comment text to NOT match as a pattern")
	}
}

func TestIgnore_NoIgnoreFile(t *testing.T) {
	ic := NewIgnoreChecker(t.TempDir())
	if ic.IsIgnored("main.go") || ic.IsIgnored("src/util.go") {
		t.Error("regular files ignored without an ignore file")
	}
}

func TestIgnore_SubdirectoryFileMatch(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "*.o\n")

	ic := NewIgnoreChecker(dir)
	if !ic.IsIgnored("src/foo.o") || !ic.IsIgnored("foo.o") {
		t.Error("expected *.o to match at any depth")
	}
	if ic.IsIgnored("src/foo.go") {
		t.Error("expected src/foo.go to NOT be ignored")
	}
}

func TestIgnore_AnchoredAndGlobstar(t *testing.T) {
	dir := t.TempDir()
	writeIgnoreFile(t, dir, "/vendor\ndocs/**/*.md\n")

	ic := NewIgnoreChecker(dir)
	if !ic.IsIgnored("vendor/lib.go") {
		t.Error("expected vendor/lib.go to be ignored")
	}
	if ic.IsIgnored("lib/vendor/x.go") {
		t.Error("anchored /vendor should not match below the root")
	}
	if !ic.IsIgnored("docs/guide.md") || !ic.IsIgnored("docs/a/b/c.md") {
		t.Error("expected docs/**/*.md to match at any depth under docs")
	}
	if ic.IsIgnored("notes.md") {
		t.Error("expected notes.md outside docs to NOT be ignored")
	}
}

func writeIgnoreFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", IgnoreFileName, err)
	}
}
