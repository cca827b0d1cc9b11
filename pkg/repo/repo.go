package repo

import (
	"time"

	"github.com/odvcencio/simplegit/pkg/object"
)

// MetaDirName is the name of the metadata directory at the working root.
const MetaDirName = ".simplegit"

// isoTimestampLayout is the ISO-8601 form commit timestamps are recorded in.
const isoTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// nowFunc supplies commit timestamps; tests may pin it.
var nowFunc = time.Now

// Repo represents an opened repository. Every operation goes through a Repo
// value, so several repositories can be open in one process.
type Repo struct {
	RootDir string        // working directory root
	MetaDir string        // .simplegit/ directory
	Store   *object.Store // content-addressed object store
}

// Close releases the object store backend.
func (r *Repo) Close() error {
	if r == nil || r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

func commitTimestamp() string {
	return nowFunc().UTC().Format(isoTimestampLayout)
}
