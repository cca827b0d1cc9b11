package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateBranch_CopiesCurrentHead(t *testing.T) {
	r := initTestRepo(t)
	h := commitFile(t, r, "a.txt", "a", "base")

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	got, err := r.ResolveRef("feature")
	if err != nil || got != h {
		t.Fatalf("feature = %q, %v; want %s", got, err, h)
	}
	if cur := r.CurrentBranch(); cur != "main" {
		t.Fatalf("CurrentBranch = %q, CreateBranch must not move HEAD", cur)
	}
}

func TestCreateBranch_FromUnbornIsUnborn(t *testing.T) {
	r := initTestRepo(t)
	if err := r.CreateBranch("early"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	got, err := r.ResolveRef("early")
	if err != nil || got != "" {
		t.Fatalf("early = %q, %v; want unborn", got, err)
	}
}

func TestCreateBranch_Duplicate(t *testing.T) {
	r := initTestRepo(t)
	if err := r.CreateBranch("main"); !errors.Is(err, ErrBranchExists) {
		t.Fatalf("CreateBranch(main) error = %v, want ErrBranchExists", err)
	}
}

func TestCreateBranch_InvalidNames(t *testing.T) {
	r := initTestRepo(t)
	for _, name := range []string{"", "HEAD", "-x", "a..b", "a b", "x.lock", "dir/", ".hidden", "a/.b"} {
		if err := r.CreateBranch(name); !errors.Is(err, ErrInvalidBranchName) {
			t.Errorf("CreateBranch(%q) error = %v, want ErrInvalidBranchName", name, err)
		}
	}
	if err := r.CreateBranch("feature/login"); err != nil {
		t.Errorf("CreateBranch(feature/login): %v", err)
	}
}

func TestCheckout_SwitchesHeadOnly(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "a", "base")
	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if cur := r.CurrentBranch(); cur != "feature" {
		t.Fatalf("CurrentBranch = %q, want feature", cur)
	}
	head, err := os.ReadFile(filepath.Join(r.MetaDir, "HEAD"))
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	if string(head) != "ref: refs/heads/feature\n" {
		t.Fatalf("HEAD = %q", head)
	}

	data, err := os.ReadFile(filepath.Join(r.RootDir, "a.txt"))
	if err != nil || string(data) != "a" {
		t.Fatalf("working file changed by checkout: %q, %v", data, err)
	}
}

func TestCheckout_UnknownBranch(t *testing.T) {
	r := initTestRepo(t)
	if err := r.Checkout("ghost"); !errors.Is(err, ErrUnknownBranch) {
		t.Fatalf("Checkout(ghost) error = %v, want ErrUnknownBranch", err)
	}
	if cur := r.CurrentBranch(); cur != "main" {
		t.Fatalf("CurrentBranch = %q after failed checkout", cur)
	}
}

func TestCommitOnBranchLeavesOthersAlone(t *testing.T) {
	r := initTestRepo(t)
	base := commitFile(t, r, "a.txt", "a", "base")
	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.Checkout("feature"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	tip := commitFile(t, r, "b.txt", "b", "feature work")

	mainHash, _ := r.ResolveRef("main")
	featureHash, _ := r.ResolveRef("feature")
	if mainHash != base {
		t.Fatalf("main = %s, want %s", mainHash, base)
	}
	if featureHash != tip {
		t.Fatalf("feature = %s, want %s", featureHash, tip)
	}
}

func TestListBranches(t *testing.T) {
	r := initTestRepo(t)
	for _, name := range []string{"zeta", "alpha", "team/beta"} {
		if err := r.CreateBranch(name); err != nil {
			t.Fatalf("CreateBranch(%s): %v", name, err)
		}
	}
	got, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	want := []string{"alpha", "main", "team/beta", "zeta"}
	if !sameStrings(got, want) {
		t.Fatalf("ListBranches = %v, want %v", got, want)
	}
}

func TestResolveRef_UnknownBranch(t *testing.T) {
	r := initTestRepo(t)
	if _, err := r.ResolveRef("nope"); !errors.Is(err, ErrUnknownBranch) {
		t.Fatalf("ResolveRef(nope) error = %v, want ErrUnknownBranch", err)
	}
}

func TestCheckout_NamespaceDirectoryIsNotABranch(t *testing.T) {
	r := initTestRepo(t)
	commitFile(t, r, "a.txt", "a", "base")
	if err := r.CreateBranch("feat/x"); err != nil {
		t.Fatalf("CreateBranch(feat/x): %v", err)
	}

	if err := r.Checkout("feat"); !errors.Is(err, ErrUnknownBranch) {
		t.Fatalf("Checkout(feat) error = %v, want ErrUnknownBranch", err)
	}
	if cur := r.CurrentBranch(); cur != "main" {
		t.Fatalf("CurrentBranch = %q after failed checkout", cur)
	}
	if _, err := r.ResolveRef("feat"); !errors.Is(err, ErrUnknownBranch) {
		t.Fatalf("ResolveRef(feat) error = %v, want ErrUnknownBranch", err)
	}

	writeFile(t, r, "b.txt", "b")
	stage(t, r, "b.txt")
	if _, err := r.Status(StatusOptions{}); err != nil {
		t.Fatalf("Status after rejected checkout: %v", err)
	}
	if err := r.Checkout("feat/x"); err != nil {
		t.Fatalf("Checkout(feat/x): %v", err)
	}
}

func TestResolveRef_BranchUnderExistingRefFile(t *testing.T) {
	r := initTestRepo(t)
	if _, err := r.ResolveRef("main/x"); !errors.Is(err, ErrUnknownBranch) {
		t.Fatalf("ResolveRef(main/x) error = %v, want ErrUnknownBranch", err)
	}
}
