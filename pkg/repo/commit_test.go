package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/simplegit/pkg/object"
)

func TestCommit_FirstCommitHasNoParent(t *testing.T) {
	r := initTestRepo(t)
	h := commitFile(t, r, "a.txt", "a\n", "initial")

	c, err := r.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Parents) != 0 {
		t.Errorf("parents = %v, want none", c.Parents)
	}
	if c.Author != testAuthor {
		t.Errorf("author = %q", c.Author)
	}
	if c.Message != "initial" {
		t.Errorf("message = %q", c.Message)
	}
	if c.Timestamp != "2026-03-01T12:00:01.000Z" {
		t.Errorf("timestamp = %q", c.Timestamp)
	}

	head, err := r.ResolveRef("main")
	if err != nil || head != h {
		t.Fatalf("main = %q, %v; want %s", head, err, h)
	}
}

func TestCommit_ErrorsInOrder(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	// Detached HEAD wins over the missing author and the empty index.
	headPath := filepath.Join(r.MetaDir, "HEAD")
	detached := fmt.Sprintf("%064x", 1)
	if err := os.WriteFile(headPath, []byte(detached+"\n"), 0o644); err != nil {
		t.Fatalf("detach HEAD: %v", err)
	}
	if _, err := r.Commit("m"); !errors.Is(err, ErrDetachedHead) {
		t.Fatalf("detached: error = %v, want ErrDetachedHead", err)
	}
	if got := r.CurrentBranch(); got != "" {
		t.Fatalf("CurrentBranch while detached = %q, want empty", got)
	}

	if err := r.Checkout("main"); err != nil {
		t.Fatalf("Checkout(main): %v", err)
	}
	if _, err := r.Commit("m"); !errors.Is(err, ErrNoAuthorConfigured) {
		t.Fatalf("no author: error = %v, want ErrNoAuthorConfigured", err)
	}

	if err := r.SetAuthor(testAuthor); err != nil {
		t.Fatalf("SetAuthor: %v", err)
	}
	if _, err := r.Commit("m"); !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("empty index: error = %v, want ErrEmptyIndex", err)
	}

	head, err := r.ResolveRef("main")
	if err != nil || head != "" {
		t.Fatalf("main = %q, %v; failed commits must leave it unborn", head, err)
	}
}

func TestCommit_SnapshotCompleteness(t *testing.T) {
	r := initTestRepo(t)

	const n = 5
	want := object.Snapshot{}
	var last object.Hash
	for k := 1; k <= n; k++ {
		name := fmt.Sprintf("file%d.txt", k)
		content := fmt.Sprintf("content %d\n", k)
		last = commitFile(t, r, name, content, "commit "+name)
		want[name] = object.HashBlob([]byte(content))
	}

	c, err := r.ReadCommit(last)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(c.Snapshot) != n {
		t.Fatalf("snapshot has %d entries, want %d: %v", len(c.Snapshot), n, c.Snapshot)
	}
	for path, h := range want {
		if c.Snapshot[path] != h {
			t.Errorf("snapshot[%s] = %s, want %s", path, c.Snapshot[path], h)
		}
	}
}

func TestCommit_StagedOverridesParent(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "a1")
	writeFile(t, r, "b.txt", "b1")
	stage(t, r, "*")
	if _, err := r.Commit("base"); err != nil {
		t.Fatalf("Commit(base): %v", err)
	}

	second := commitFile(t, r, "a.txt", "a2", "update a")
	c, err := r.ReadCommit(second)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.Snapshot["a.txt"] != object.HashBlob([]byte("a2")) {
		t.Errorf("a.txt not updated in snapshot")
	}
	if c.Snapshot["b.txt"] != object.HashBlob([]byte("b1")) {
		t.Errorf("b.txt not carried over from parent")
	}
}

func TestCommit_ClearsIndexAndRestageIsNoop(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "stable\n", "first")

	if got := indexPaths(t, r); len(got) != 0 {
		t.Fatalf("index after commit = %v, want empty", got)
	}
	raw, err := os.ReadFile(r.indexPath())
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if len(raw) != 0 {
		t.Fatalf("index file = %q, want empty", raw)
	}

	if res := stage(t, r, "a.txt"); !res.NothingToAdd {
		t.Fatalf("restage after commit = %+v, want nothing to add", res)
	}
}

func TestCommit_ParentChainAndLog(t *testing.T) {
	r := initTestRepo(t)
	h1 := commitFile(t, r, "a.txt", "1", "one")
	h2 := commitFile(t, r, "a.txt", "2", "two")
	h3 := commitFile(t, r, "a.txt", "3", "three")

	entries, err := r.Log(h3, 0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	var got []object.Hash
	for _, e := range entries {
		got = append(got, e.Hash)
	}
	want := []object.Hash{h3, h2, h1}
	if len(got) != len(want) {
		t.Fatalf("log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("log[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	limited, err := r.Log(h3, 2)
	if err != nil {
		t.Fatalf("Log(limit 2): %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited log length = %d, want 2", len(limited))
	}
}

func TestCommitWithSigner_StoresSignature(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	stage(t, r, "a.txt")

	var signed []byte
	h, err := r.CommitWithSigner("signed", func(payload []byte) (string, error) {
		signed = append([]byte(nil), payload...)
		return "sig-bytes", nil
	})
	if err != nil {
		t.Fatalf("CommitWithSigner: %v", err)
	}

	c, err := r.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if c.Signature != "sig-bytes" {
		t.Fatalf("signature = %q", c.Signature)
	}
	payload, err := object.CommitSigningPayload(c)
	if err != nil {
		t.Fatalf("CommitSigningPayload: %v", err)
	}
	if string(payload) != string(signed) {
		t.Fatalf("stored commit payload differs from signed payload")
	}
}

func TestCommitWithSigner_SignerErrorLeavesStateUnchanged(t *testing.T) {
	r := initTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	stage(t, r, "a.txt")

	_, err := r.CommitWithSigner("m", func([]byte) (string, error) {
		return "", errors.New("agent unavailable")
	})
	if err == nil || !strings.Contains(err.Error(), "agent unavailable") {
		t.Fatalf("error = %v, want signer failure", err)
	}
	if got := indexPaths(t, r); !sameStrings(got, []string{"a.txt"}) {
		t.Fatalf("index = %v, want a.txt still staged", got)
	}
	head, _ := r.ResolveRef("main")
	if head != "" {
		t.Fatalf("main moved to %s after failed commit", head)
	}
}

func TestCommit_CorruptParentIsObjectCorrupt(t *testing.T) {
	r := initTestRepo(t)
	h := commitFile(t, r, "a.txt", "a", "first")

	objPath := filepath.Join(r.MetaDir, "objects", string(h[:2]), string(h[2:]))
	if err := os.WriteFile(objPath, []byte("commit 2\x00{}"), 0o644); err != nil {
		t.Fatalf("corrupt object: %v", err)
	}

	writeFile(t, r, "b.txt", "b")
	if _, err := r.Stage("b.txt", r.RootDir, nil); !errors.Is(err, ErrObjectCorrupt) {
		t.Fatalf("Stage over corrupt head error = %v, want ErrObjectCorrupt", err)
	}
}

func TestSnapshot_ReturnsIndependentCopy(t *testing.T) {
	r := initTestRepo(t)
	h := commitFile(t, r, "a.txt", "a", "first")

	snap, err := r.Snapshot(h)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap["a.txt"] != object.HashBlob([]byte("a")) {
		t.Fatalf("snapshot = %v", snap)
	}
	snap["b.txt"] = snap["a.txt"]

	again, err := r.Snapshot(h)
	if err != nil {
		t.Fatalf("Snapshot again: %v", err)
	}
	if _, ok := again["b.txt"]; ok {
		t.Fatal("mutating a returned snapshot leaked into the next read")
	}

	if _, err := r.Snapshot(object.HashBytes([]byte("nope"))); !errors.Is(err, object.ErrObjectNotFound) {
		t.Fatalf("Snapshot(missing) error = %v, want ErrObjectNotFound", err)
	}
}
