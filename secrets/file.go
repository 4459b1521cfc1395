package secrets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gofrs/flock"
)

// File stores secrets in a JSON file. It is the fallback when no system
// keychain is available; the file is mode 0600 and writes go through an
// advisory lock so concurrent processes don't clobber each other.
type File struct {
	dir string
}

// NewFile creates a file-backed store rooted at dir.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (f *File) path() string {
	return filepath.Join(f.dir, "secrets.json")
}

func (f *File) lockPath() string {
	return filepath.Join(f.dir, "secrets.lock")
}

// withLock runs fn while holding the advisory file lock.
func (f *File) withLock(fn func() error) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	fl := flock.New(f.lockPath())
	if err := fl.Lock(); err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()
	return fn()
}

func (f *File) load() (map[string]map[string]string, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]map[string]string), nil
		}
		return nil, err
	}

	var all map[string]map[string]string
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (f *File) save(all map[string]map[string]string) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write with randomized temp file name
	tmpFile, err := os.CreateTemp(f.dir, "secrets-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Chmod(0o600); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	// Unix: rename atomically replaces the destination.
	// Windows: rename fails when destination exists, so remove and retry.
	destPath := f.path()
	if err := os.Rename(tmpPath, destPath); err != nil {
		if runtime.GOOS == "windows" {
			_ = os.Remove(destPath)
			return os.Rename(tmpPath, destPath)
		}
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Put stores value under namespace/key.
func (f *File) Put(namespace, key, value string) error {
	return f.withLock(func() error {
		all, err := f.load()
		if err != nil {
			return err
		}
		ns, ok := all[namespace]
		if !ok {
			ns = make(map[string]string)
			all[namespace] = ns
		}
		ns[key] = value
		return f.save(all)
	})
}

// Get retrieves the value for namespace/key.
func (f *File) Get(namespace, key string) (value string, found bool, err error) {
	err = f.withLock(func() error {
		all, err := f.load()
		if err != nil {
			return err
		}
		if ns, ok := all[namespace]; ok {
			value, found = ns[key]
		}
		return nil
	})
	return value, found, err
}

// Del removes namespace/key.
func (f *File) Del(namespace, key string) error {
	return f.withLock(func() error {
		all, err := f.load()
		if err != nil {
			return err
		}
		ns, ok := all[namespace]
		if !ok {
			return nil
		}
		if _, ok := ns[key]; !ok {
			return nil
		}
		delete(ns, key)
		return f.save(all)
	})
}
