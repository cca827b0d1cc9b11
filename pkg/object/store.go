package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Store is a content-addressed object store. Objects are kept as
// "type len\0content" envelopes in a pluggable Backend and are never
// mutated or deleted.
type Store struct {
	backend Backend
}

// NewStore creates a Store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// NewFileStore creates a Store using the fan-out directory layout under
// root.
func NewFileStore(root string) *Store {
	return NewStore(NewFileBackend(root))
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	ok, err := s.backend.Has(h)
	return err == nil && ok
}

// Write stores an object and returns its content hash. Writing content that
// is already present is a no-op.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := make([]byte, 0, len(envelope)+len(data))
	raw = append(raw, envelope...)
	raw = append(raw, data...)

	if err := s.backend.Put(h, raw); err != nil {
		return "", err
	}
	return h, nil
}

// WriteRaw stores a complete envelope after checking that it decodes and
// hashes to h. It is used when importing objects from elsewhere.
func (s *Store) WriteRaw(h Hash, raw []byte) error {
	objType, content, err := parseEnvelope(h, raw)
	if err != nil {
		return err
	}
	if got := HashObject(objType, content); got != h {
		return fmt.Errorf("object %s: content hashes to %s: %w", h, got, ErrObjectCorrupt)
	}
	if s.Has(h) {
		return nil
	}
	return s.backend.Put(h, raw)
}

// ReadRaw returns the stored envelope for h without decoding it.
func (s *Store) ReadRaw(h Hash) ([]byte, error) {
	return s.backend.Get(h)
}

// Read retrieves an object by hash, returning its type and raw content. The
// content is re-hashed; a mismatch is reported as ErrObjectCorrupt.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	raw, err := s.backend.Get(h)
	if err != nil {
		return "", nil, err
	}
	objType, content, err := parseEnvelope(h, raw)
	if err != nil {
		return "", nil, err
	}
	if got := HashObject(objType, content); got != h {
		return "", nil, fmt.Errorf("object read %s: content hashes to %s: %w", h, got, ErrObjectCorrupt)
	}
	return objType, content, nil
}

// Verify reads h back and reports whether it is intact.
func (s *Store) Verify(h Hash) (ObjectType, error) {
	objType, _, err := s.Read(h)
	return objType, err
}

func parseEnvelope(h Hash, raw []byte) (ObjectType, []byte, error) {
	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: invalid format (no NUL): %w", h, ErrObjectCorrupt)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: invalid header %q: %w", h, header, ErrObjectCorrupt)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: invalid length %q: %w", h, parts[1], ErrObjectCorrupt)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d): %w", h, length, len(content), ErrObjectCorrupt)
	}
	return objType, content, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// Put normalizes line endings in data, stores it as a blob and returns its
// hash.
func (s *Store) Put(data []byte) (Hash, error) {
	return s.WriteBlob(&Blob{Data: NormalizeLineEndings(data)})
}

// Get returns the content of the blob stored under h.
func (s *Store) Get(h Hash) ([]byte, error) {
	b, err := s.ReadBlob(h)
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}

// WriteBlob stores a Blob as-is.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, b.Data)
}

// ReadBlob reads a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q: %w", h, objType, TypeBlob, ErrObjectCorrupt)
	}
	return &Blob{Data: data}, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	data, err := MarshalCommit(c)
	if err != nil {
		return "", err
	}
	return s.Write(TypeCommit, data)
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q: %w", h, objType, TypeCommit, ErrObjectCorrupt)
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}
