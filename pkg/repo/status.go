package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/simplegit/pkg/object"
)

// StatusOptions controls which working files Status inspects.
type StatusOptions struct {
	// Recursive walks the whole working tree instead of only the files
	// directly inside the root.
	Recursive bool
	// Ignored filters working files; nil ignores nothing but the metadata
	// directory.
	Ignored IgnoreFunc
}

// StatusReport is the three-way classification of staged, committed and
// on-disk content.
type StatusReport struct {
	Branch   string // "" when HEAD is detached
	Detached bool

	ToBeCommitted []string // staged hash differs from the committed hash
	NotStaged     []string // committed file changed on disk and not staged
	Untracked     []string // neither staged nor committed
}

// Clean reports whether all three lists are empty.
func (s *StatusReport) Clean() bool {
	return len(s.ToBeCommitted) == 0 && len(s.NotStaged) == 0 && len(s.Untracked) == 0
}

// Status compares the index, the snapshot of the commit HEAD resolves to and
// the working files. It never writes anything.
//
// Every staged entry whose hash differs from the committed one is listed as
// to be committed, regardless of scope. Working files in scope that are not
// staged with a differing hash are then either not staged (committed, but the
// content on disk changed) or untracked (neither committed nor staged).
func (r *Repo) Status(opts StatusOptions) (*StatusReport, error) {
	ignored := opts.Ignored
	if ignored == nil {
		ignored = func(string) bool { return false }
	}

	report := &StatusReport{Branch: r.CurrentBranch()}
	report.Detached = report.Branch == ""

	idx, err := r.ReadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	committed, err := r.headSnapshot()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	pendingStage := make(map[string]bool, len(idx.Entries))
	for path, staged := range idx.Entries {
		if committedHash, ok := committed[path]; !ok || committedHash != staged {
			report.ToBeCommitted = append(report.ToBeCommitted, path)
			pendingStage[path] = true
		}
	}

	var files []string
	if opts.Recursive {
		files, err = r.walkFiles(r.RootDir, ignored)
	} else {
		files, err = r.topLevelFiles(ignored)
	}
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	for _, rel := range files {
		if pendingStage[rel] {
			continue
		}
		committedHash, isCommitted := committed[rel]
		_, isStaged := idx.Entries[rel]

		switch {
		case isCommitted:
			data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
			if err != nil {
				return nil, fmt.Errorf("status: read %q: %w", rel, err)
			}
			if object.HashBlob(data) != committedHash {
				report.NotStaged = append(report.NotStaged, rel)
			}
		case !isStaged:
			report.Untracked = append(report.Untracked, rel)
		}
	}

	sort.Strings(report.ToBeCommitted)
	sort.Strings(report.NotStaged)
	sort.Strings(report.Untracked)
	return report, nil
}
