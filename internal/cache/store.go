package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/receipt-reconciler/internal/common"
)

// CachedExtraction is one persisted cache unit: the raw extraction payload
// plus the fingerprint it was stored under. Entries are immutable once
// written; later runs only read them.
type CachedExtraction struct {
	Fingerprint Fingerprint
	Payload     []byte
}

// Store is a content-addressed extraction cache: a flat directory holding
// one <fingerprint>.json unit per distinct file content. It is the
// at-most-one guard for the paid extraction service: a fingerprint with an
// entry here is never sent out again.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore opens (creating if necessary) the cache directory at dir.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, common.NewAppError("CACHE_INIT", fmt.Sprintf("create cache dir %s", dir), err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) entryPath(fp Fingerprint) string {
	return filepath.Join(s.dir, fp.String()+".json")
}

// Lookup returns the cached payload for fp if present. Never touches the
// network; a miss is (nil, false, nil).
func (s *Store) Lookup(fp Fingerprint) (*CachedExtraction, bool, error) {
	b, err := os.ReadFile(s.entryPath(fp))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, common.NewAppError("CACHE_READ", fp.String(), err)
	}
	return &CachedExtraction{Fingerprint: fp, Payload: b}, true, nil
}

// Put durably persists payload under fp. The payload is written to a temp
// sibling and renamed into place so an interrupted write is never observed
// as a hit. Overwriting an existing entry is safe: payload for a given
// fingerprint is content-stable.
func (s *Store) Put(fp Fingerprint, payload []byte) error {
	final := s.entryPath(fp)

	tmp, err := os.CreateTemp(s.dir, fp.String()+".tmp-*")
	if err != nil {
		return common.NewAppError("CACHE_WRITE", fp.String(), err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return common.NewAppError("CACHE_WRITE", fp.String(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return common.NewAppError("CACHE_WRITE", fp.String(), err)
	}
	if err := tmp.Close(); err != nil {
		return common.NewAppError("CACHE_WRITE", fp.String(), err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		return common.NewAppError("CACHE_WRITE", fp.String(), err)
	}

	s.logger.Debug("cache.put", "fingerprint", fp.String(), "bytes", len(payload))
	return nil
}

// Len reports the number of persisted entries. Diagnostic only.
func (s *Store) Len() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}
