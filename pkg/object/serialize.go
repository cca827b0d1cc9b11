package object

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CommitRecordVersion is the only commit record layout this package reads
// and writes.
const CommitRecordVersion = 1

// commitRecord is the on-disk JSON layout of a commit. Parent holds null, a
// single hash string, or a two-element array of hashes.
type commitRecord struct {
	Version   int             `json:"version"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	Parent    any             `json:"parent"`
	Author    string          `json:"author"`
	Snapshot  map[string]Hash `json:"snapshot"`
	Signature string          `json:"signature,omitempty"`
}

var requiredCommitFields = []string{"version", "message", "timestamp", "parent", "author", "snapshot"}

// MarshalCommit serializes a CommitObj to its canonical JSON record. Map
// keys are emitted in sorted order so equal commits serialize identically.
func MarshalCommit(c *CommitObj) ([]byte, error) {
	if len(c.Parents) > 2 {
		return nil, fmt.Errorf("marshal commit: %d parents, at most 2 supported", len(c.Parents))
	}

	rec := commitRecord{
		Version:   CommitRecordVersion,
		Message:   c.Message,
		Timestamp: c.Timestamp,
		Author:    c.Author,
		Snapshot:  c.Snapshot,
		Signature: c.Signature,
	}
	if rec.Snapshot == nil {
		rec.Snapshot = map[string]Hash{}
	}
	switch len(c.Parents) {
	case 1:
		rec.Parent = c.Parents[0]
	case 2:
		rec.Parent = []Hash{c.Parents[0], c.Parents[1]}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&rec); err != nil {
		return nil, fmt.Errorf("marshal commit: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalCommit parses a commit record. Unknown versions, missing or
// unknown fields, malformed hashes and wrong parent arity are all reported
// as ErrObjectCorrupt.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal commit: %v: %w", err, ErrObjectCorrupt)
	}
	for _, name := range requiredCommitFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("unmarshal commit: missing field %q: %w", name, ErrObjectCorrupt)
		}
	}
	for name := range fields {
		if !isCommitField(name) {
			return nil, fmt.Errorf("unmarshal commit: unknown field %q: %w", name, ErrObjectCorrupt)
		}
	}

	var version int
	if err := json.Unmarshal(fields["version"], &version); err != nil {
		return nil, fmt.Errorf("unmarshal commit: version: %v: %w", err, ErrObjectCorrupt)
	}
	if version != CommitRecordVersion {
		return nil, fmt.Errorf("unmarshal commit: unsupported version %d: %w", version, ErrObjectCorrupt)
	}

	c := &CommitObj{}
	strFields := []struct {
		name string
		dst  *string
	}{
		{"message", &c.Message},
		{"timestamp", &c.Timestamp},
		{"author", &c.Author},
	}
	for _, f := range strFields {
		if err := json.Unmarshal(fields[f.name], f.dst); err != nil {
			return nil, fmt.Errorf("unmarshal commit: %s: %v: %w", f.name, err, ErrObjectCorrupt)
		}
	}
	if c.Timestamp == "" {
		return nil, fmt.Errorf("unmarshal commit: empty timestamp: %w", ErrObjectCorrupt)
	}
	if c.Author == "" {
		return nil, fmt.Errorf("unmarshal commit: empty author: %w", ErrObjectCorrupt)
	}
	if raw, ok := fields["signature"]; ok {
		if err := json.Unmarshal(raw, &c.Signature); err != nil {
			return nil, fmt.Errorf("unmarshal commit: signature: %v: %w", err, ErrObjectCorrupt)
		}
	}

	parents, err := unmarshalParents(fields["parent"])
	if err != nil {
		return nil, err
	}
	c.Parents = parents

	var snap map[string]Hash
	if err := json.Unmarshal(fields["snapshot"], &snap); err != nil || snap == nil {
		return nil, fmt.Errorf("unmarshal commit: snapshot is not an object: %w", ErrObjectCorrupt)
	}
	for p, h := range snap {
		if p == "" || !ValidHash(h) {
			return nil, fmt.Errorf("unmarshal commit: bad snapshot entry %q -> %q: %w", p, h, ErrObjectCorrupt)
		}
	}
	c.Snapshot = Snapshot(snap)
	return c, nil
}

func unmarshalParents(raw json.RawMessage) ([]Hash, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var parents []Hash
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var single Hash
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("unmarshal commit: parent: %v: %w", err, ErrObjectCorrupt)
		}
		parents = []Hash{single}
	} else {
		if err := json.Unmarshal(trimmed, &parents); err != nil {
			return nil, fmt.Errorf("unmarshal commit: parent: %v: %w", err, ErrObjectCorrupt)
		}
		if len(parents) != 2 {
			return nil, fmt.Errorf("unmarshal commit: parent array has %d entries, want 2: %w", len(parents), ErrObjectCorrupt)
		}
	}
	for _, p := range parents {
		if !ValidHash(p) {
			return nil, fmt.Errorf("unmarshal commit: malformed parent hash %q: %w", p, ErrObjectCorrupt)
		}
	}
	return parents, nil
}

func isCommitField(name string) bool {
	if name == "signature" {
		return true
	}
	for _, f := range requiredCommitFields {
		if f == name {
			return true
		}
	}
	return false
}
