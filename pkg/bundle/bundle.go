// Package bundle moves history between repositories as a single
// zstd-compressed file.
//
// The decompressed stream is line oriented up to the object section:
//
//	simplegit-bundle v1
//	ref <branch> <hash>
//	...
//	<blank line>
//	<hash> <length>
//	<length bytes of object envelope>
//	...
//
// Every object reachable from the listed refs is included. Objects are
// re-verified against their hash on import.
package bundle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/odvcencio/simplegit/pkg/object"
)

const header = "simplegit-bundle v1"

// maxObjectSize bounds a single object record so a damaged length cannot
// trigger an enormous allocation.
const maxObjectSize = 1 << 30

// ErrInvalidBundle reports a stream that is not a well-formed bundle.
var ErrInvalidBundle = errors.New("invalid bundle")

// Ref is a branch tip carried by a bundle.
type Ref struct {
	Name string
	Hash object.Hash
}

// Contents describes what a bundle held.
type Contents struct {
	Refs    []Ref
	Objects int
}

// Write streams a bundle holding refs and every object reachable from them
// into w. Refs are written sorted by name.
func Write(w io.Writer, store *object.Store, refs []Ref) (*Contents, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("bundle write: no refs to bundle")
	}
	refs = append([]Ref(nil), refs...)
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	roots := make([]object.Hash, 0, len(refs))
	for _, ref := range refs {
		if strings.ContainsAny(ref.Name, " \t\r\n") || ref.Name == "" {
			return nil, fmt.Errorf("bundle write: invalid ref name %q", ref.Name)
		}
		if !object.ValidHash(ref.Hash) {
			return nil, fmt.Errorf("bundle write: ref %s has no commit", ref.Name)
		}
		roots = append(roots, ref.Hash)
	}
	hashes, err := store.Reachable(roots)
	if err != nil {
		return nil, fmt.Errorf("bundle write: %w", err)
	}

	enc, err := newZstdWriter(w)
	if err != nil {
		return nil, fmt.Errorf("bundle write: zstd: %w", err)
	}
	bw := bufio.NewWriter(enc)

	fmt.Fprintln(bw, header)
	for _, ref := range refs {
		fmt.Fprintf(bw, "ref %s %s\n", ref.Name, ref.Hash)
	}
	fmt.Fprintln(bw)

	for _, h := range hashes {
		raw, err := store.ReadRaw(h)
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("bundle write: %w", err)
		}
		fmt.Fprintf(bw, "%s %d\n", h, len(raw))
		if _, err := bw.Write(raw); err != nil {
			enc.Close()
			return nil, fmt.Errorf("bundle write: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return nil, fmt.Errorf("bundle write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("bundle write: zstd close: %w", err)
	}
	return &Contents{Refs: refs, Objects: len(hashes)}, nil
}

// Read decodes a bundle from r and stores its objects in store. Objects
// already present are left alone. It fails if any object reachable from a
// ref is neither in the bundle nor already in the store.
func Read(r io.Reader, store *object.Store) (*Contents, error) {
	zr, err := newZstdReader(r)
	if err != nil {
		return nil, fmt.Errorf("bundle read: zstd: %w", err)
	}
	defer zr.Close()
	br := bufio.NewReader(zr)

	line, err := readLine(br)
	if err != nil {
		return nil, fmt.Errorf("bundle read: header: %w", err)
	}
	if line != header {
		return nil, fmt.Errorf("bundle read: unexpected header %q: %w", line, ErrInvalidBundle)
	}

	contents := &Contents{}
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("bundle read: refs: %w", err)
		}
		if line == "" {
			break
		}
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "ref" || !object.ValidHash(object.Hash(fields[2])) {
			return nil, fmt.Errorf("bundle read: malformed ref line %q: %w", line, ErrInvalidBundle)
		}
		contents.Refs = append(contents.Refs, Ref{Name: fields[1], Hash: object.Hash(fields[2])})
	}

	for {
		line, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bundle read: objects: %w", err)
		}
		hashText, sizeText, ok := strings.Cut(line, " ")
		h := object.Hash(hashText)
		size, convErr := strconv.Atoi(sizeText)
		if !ok || !object.ValidHash(h) || convErr != nil || size < 0 || size > maxObjectSize {
			return nil, fmt.Errorf("bundle read: malformed object record %q: %w", line, ErrInvalidBundle)
		}
		raw := make([]byte, size)
		if _, err := io.ReadFull(br, raw); err != nil {
			return nil, fmt.Errorf("bundle read: object %s: truncated: %w", h, ErrInvalidBundle)
		}
		if err := store.WriteRaw(h, raw); err != nil {
			return nil, fmt.Errorf("bundle read: %w", err)
		}
		contents.Objects++
	}

	roots := make([]object.Hash, 0, len(contents.Refs))
	for _, ref := range contents.Refs {
		if !store.Has(ref.Hash) {
			return nil, fmt.Errorf("bundle read: ref %s points at missing object %s: %w", ref.Name, ref.Hash, ErrInvalidBundle)
		}
		roots = append(roots, ref.Hash)
	}
	if _, err := store.Reachable(roots); err != nil {
		return nil, fmt.Errorf("bundle read: incomplete history: %v: %w", err, ErrInvalidBundle)
	}
	return contents, nil
}

// readLine returns the next line without its newline. A final line with
// no newline is returned as-is; io.EOF is only returned when nothing was
// read.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}
