package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/odvcencio/simplegit/pkg/object"
)

func TestUpdateRefCAS_ConcurrentSingleWinner(t *testing.T) {
	r := initTestRepo(t)

	base := object.Hash(strings.Repeat("a", 64))
	if err := r.UpdateRefCAS("refs/heads/main", base); err != nil {
		t.Fatalf("UpdateRefCAS(base): %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)

	successCh := make(chan object.Hash, workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			next := object.Hash(fmt.Sprintf("%064x", i+1))
			if err := r.UpdateRefCAS("refs/heads/main", next, base); err != nil {
				errCh <- err
				return
			}
			successCh <- next
		}()
	}

	wg.Wait()
	close(successCh)
	close(errCh)

	var winner object.Hash
	successes := 0
	for h := range successCh {
		successes++
		winner = h
	}
	if successes != 1 {
		t.Fatalf("successful CAS updates = %d, want 1", successes)
	}

	casMismatches := 0
	for err := range errCh {
		if errors.Is(err, ErrRefCASMismatch) {
			casMismatches++
			continue
		}
		t.Fatalf("unexpected error type: %v", err)
	}
	if casMismatches != workers-1 {
		t.Fatalf("CAS mismatches = %d, want %d", casMismatches, workers-1)
	}

	got, err := r.ResolveRef("refs/heads/main")
	if err != nil {
		t.Fatalf("ResolveRef(main): %v", err)
	}
	if got != winner {
		t.Fatalf("refs/heads/main = %s, want winner %s", got, winner)
	}
}

func TestUpdateRefCAS_CleansLockOnMismatch(t *testing.T) {
	r := initTestRepo(t)

	current := object.Hash(strings.Repeat("b", 64))
	if err := r.UpdateRefCAS("refs/heads/main", current); err != nil {
		t.Fatalf("UpdateRefCAS(current): %v", err)
	}

	err := r.UpdateRefCAS(
		"refs/heads/main",
		object.Hash(strings.Repeat("c", 64)),
		object.Hash(strings.Repeat("d", 64)),
	)
	if !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("expected CAS mismatch, got: %v", err)
	}

	lockPath := filepath.Join(r.MetaDir, "refs", "heads", "main.lock")
	if _, statErr := os.Stat(lockPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no lingering lockfile at %q, stat err=%v", lockPath, statErr)
	}
}

func TestCommitWithSigner_CASDetectsMovedBranchRef(t *testing.T) {
	r := initTestRepo(t)
	first := commitFile(t, r, "main.txt", "v1\n", "first commit")

	writeFile(t, r, "main.txt", "v2\n")
	stage(t, r, "main.txt")

	movedHash := object.Hash(strings.Repeat("e", 64))
	_, err := r.CommitWithSigner("second commit", func(_ []byte) (string, error) {
		if err := r.UpdateRefCAS("refs/heads/main", movedHash, first); err != nil {
			return "", err
		}
		return "signature", nil
	})
	if !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("expected commit CAS mismatch, got: %v", err)
	}

	head, err := r.ResolveRef("refs/heads/main")
	if err != nil {
		t.Fatalf("ResolveRef(main): %v", err)
	}
	if head != movedHash {
		t.Fatalf("main ref = %s, want moved hash %s", head, movedHash)
	}
	if got := indexPaths(t, r); !sameStrings(got, []string{"main.txt"}) {
		t.Fatalf("index = %v, a failed commit must keep it", got)
	}
}

func TestCreateBranch_ConcurrentSingleWinner(t *testing.T) {
	r := initTestRepo(t)
	headHash := commitFile(t, r, "main.txt", "v1\n", "initial commit")

	const workers = 12
	var wg sync.WaitGroup
	wg.Add(workers)

	successCh := make(chan struct{}, workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := r.CreateBranch("feature"); err != nil {
				errCh <- err
				return
			}
			successCh <- struct{}{}
		}()
	}

	wg.Wait()
	close(successCh)
	close(errCh)

	if successes := len(successCh); successes != 1 {
		t.Fatalf("CreateBranch successes = %d, want 1", successes)
	}

	duplicates := 0
	for err := range errCh {
		if errors.Is(err, ErrBranchExists) {
			duplicates++
			continue
		}
		t.Fatalf("unexpected CreateBranch error: %v", err)
	}
	if duplicates != workers-1 {
		t.Fatalf("duplicate errors = %d, want %d", duplicates, workers-1)
	}

	got, err := r.ResolveRef("refs/heads/feature")
	if err != nil {
		t.Fatalf("ResolveRef(feature): %v", err)
	}
	if got != headHash {
		t.Fatalf("feature ref = %s, want %s", got, headHash)
	}
}
