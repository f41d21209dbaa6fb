package memory

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/scrypster/docgraph/internal/storage"
)

// Save writes the graph as JSON to path. The file is written to a temporary
// sibling and renamed into place, so an interrupted save leaves the previous
// snapshot intact. A sibling .lock file serialises concurrent savers.
func (s *GraphStore) Save(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save graph: create directory: %w", err)
	}

	lock := flock.New(abs + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("save graph: acquire lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	snap := s.Snapshot()

	tmp, err := os.CreateTemp(dir, filepath.Base(abs)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := storage.EncodeSnapshot(w, snap); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("save graph: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("save graph: rename: %w", err)
	}
	committed = true
	return nil
}

// Load replaces the graph with the snapshot stored at path. A missing file
// returns (false, nil); an unreadable or malformed file returns (false, err).
// The graph is only modified after the whole file decoded cleanly.
//
// Load shares the .lock file only when a Save has already created it, so
// reading a foreign file leaves nothing behind next to it.
func (s *GraphStore) Load(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load graph: %w", err)
	}
	defer f.Close()

	lockPath := path + ".lock"
	if _, err := os.Stat(lockPath); err == nil {
		lock := flock.New(lockPath)
		if err := lock.RLock(); err != nil {
			return false, fmt.Errorf("load graph: acquire lock: %w", err)
		}
		defer func() { _ = lock.Unlock() }()
	}

	snap, err := storage.DecodeSnapshot(bufio.NewReader(f))
	if err != nil {
		return false, fmt.Errorf("load graph %s: %w", path, err)
	}

	s.Replace(snap)
	return true, nil
}
