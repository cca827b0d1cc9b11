package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeCommit ObjectType = "commit"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// Snapshot maps repo-relative paths to blob hashes. A commit's snapshot is
// the full set of tracked paths at that point in history.
type Snapshot map[string]Hash

// Clone returns an independent copy of s. A nil snapshot clones to an empty
// one.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for p, h := range s {
		out[p] = h
	}
	return out
}

// Overlay returns a copy of s with every entry of top applied on top of it.
// Entries in top win on path conflicts.
func (s Snapshot) Overlay(top map[string]Hash) Snapshot {
	out := s.Clone()
	for p, h := range top {
		out[p] = h
	}
	return out
}

// CommitObj is an immutable commit record. Parents has zero entries for a
// root commit, one for a regular commit and two for a merge commit.
type CommitObj struct {
	Message   string
	Timestamp string // ISO-8601, UTC
	Parents   []Hash
	Author    string
	Snapshot  Snapshot
	Signature string
}

// IsMerge reports whether c has two parents.
func (c *CommitObj) IsMerge() bool {
	return len(c.Parents) == 2
}
