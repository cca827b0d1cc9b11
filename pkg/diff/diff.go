package diff

import (
	"bytes"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/odvcencio/simplegit/pkg/object"
)

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// FileDiff holds the line diff for a single file.
type FileDiff struct {
	Path   string
	Text   string // unified diff body; empty when Binary or unchanged
	Binary bool   // either side is binary; no line diff is produced
}

// Unified computes a unified diff between before and after revisions of the
// file at path. A nil before means the file is new; a nil after means it was
// removed. Returns nil when both sides are identical.
func Unified(path string, before, after []byte) (*FileDiff, error) {
	if before != nil && after != nil && bytes.Equal(before, after) {
		return nil, nil
	}

	fd := &FileDiff{Path: path}
	if object.IsBinary(before) || object.IsBinary(after) {
		fd.Binary = true
		return fd, nil
	}

	fromFile, toFile := "a/"+path, "b/"+path
	if before == nil {
		fromFile = "/dev/null"
	}
	if after == nil {
		toFile = "/dev/null"
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(object.NormalizeLineEndings(before))),
		B:        difflib.SplitLines(string(object.NormalizeLineEndings(after))),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  contextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", path, err)
	}
	if text == "" {
		return nil, nil
	}
	fd.Text = text
	return fd, nil
}
