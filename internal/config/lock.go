package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// acquire takes the exclusive lock guarding the config file at path.
func acquire(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	lock := flock.New(path + ".lock")

	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring lock on %s: %w", lock.Path(), err)
	}

	return lock, nil
}

// lockAndWrite replaces the file at path with data while holding its lock.
func lockAndWrite(path string, data []byte) error {
	lock, err := acquire(path)
	if err != nil {
		return err
	}
	defer lock.Unlock() //nolint:errcheck // Releasing is best effort once the write is done

	return atomicWrite(path, data)
}

// atomicWrite writes data to a temp file next to path and renames it into place,
// so readers see either the old or the new content.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	tmp = nil

	return nil
}
