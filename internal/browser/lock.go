package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var ErrLocked = errors.New("another browser run holds the lock")

// Lock keeps two browser-driven commands from running against the site at
// the same time. A lock older than its stale age is taken over.
type Lock struct {
	path string
}

type lockFile struct {
	Timestamp int64 `json:"timestamp"`
}

func AcquireLock(path string, staleAfter time.Duration) (*Lock, error) {
	return acquireLock(path, staleAfter, time.Now())
}

func acquireLock(path string, staleAfter time.Duration, now time.Time) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	data, err := json.Marshal(lockFile{Timestamp: now.UnixMilli()})
	if err != nil {
		return nil, err
	}

	// One takeover attempt: a stale lock is removed and the exclusive
	// create runs again. Losing that second create means another run won.
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := f.Write(data)
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("write lock: %w", werr)
			}
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create lock: %w", err)
		}

		held, err := lockAge(path, now)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read lock: %w", err)
		}
		if held < staleAfter {
			return nil, fmt.Errorf("%w: %s (held for %s)", ErrLocked, path, held.Round(time.Second))
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLocked, path)
}

// lockAge reads the lock's timestamp. A file that does not parse, such as
// one another run has created but not yet written, is aged by its mtime.
func lockAge(path string, now time.Time) (time.Duration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var lf lockFile
	if json.Unmarshal(data, &lf) == nil && lf.Timestamp > 0 {
		return now.Sub(time.UnixMilli(lf.Timestamp)), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return now.Sub(info.ModTime()), nil
}

func (l *Lock) Release() error {
	err := os.Remove(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
