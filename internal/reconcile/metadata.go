package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/djherbis/times"

	"github.com/joseph-ayodele/receipt-reconciler/constants"
)

// FileMetadata is the filesystem-derived half of a Record.
type FileMetadata struct {
	RelativePath string
	Directory    string
	Filename     string
	ContentType  string
	FileSize     int64
	ModifiedAt   time.Time
	CreatedAt    time.Time // birth time; zero where the platform has none
	ChangedAt    time.Time // inode change time; zero where the platform has none
}

// ReadFileMetadata stats the receipt at sourceDir/rel. Content type comes
// from the extension alone, so it is valid even when extraction failed.
func ReadFileMetadata(sourceDir, rel string) (FileMetadata, error) {
	full := filepath.Join(sourceDir, rel)
	info, err := os.Stat(full)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("stat %s: %w", full, err)
	}
	m := metadataFromPath(rel)
	m.FileSize = info.Size()
	m.ModifiedAt = info.ModTime().UTC()

	ts := times.Get(info)
	if ts.HasChangeTime() {
		m.ChangedAt = ts.ChangeTime().UTC()
	}
	if ts.HasBirthTime() {
		m.CreatedAt = ts.BirthTime().UTC()
	}
	return m, nil
}

// metadataFromPath fills the fields derivable from the relative path alone,
// for records whose file could not be read.
func metadataFromPath(rel string) FileMetadata {
	return FileMetadata{
		RelativePath: rel,
		Directory:    filepath.Dir(rel),
		Filename:     filepath.Base(rel),
		ContentType:  constants.ContentTypeForPath(rel),
	}
}
