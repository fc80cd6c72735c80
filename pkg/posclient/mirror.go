package posclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// MirrorFileName is the file the cart mirror is written to
const MirrorFileName = "posCart.json"

// Mirror is a crash-recovery copy of the cart lines
type Mirror interface {
	Load() ([]CartLine, error)
	Save(lines []CartLine) error
}

// FileMirror keeps the cart lines as JSON in a single file
type FileMirror struct {
	path string
	mu   sync.Mutex
}

// NewFileMirror stores the mirror as posCart.json inside dir
func NewFileMirror(dir string) *FileMirror {
	return &FileMirror{path: filepath.Join(dir, MirrorFileName)}
}

// Path returns the mirror file location
func (m *FileMirror) Path() string {
	return m.path
}

// Load reads the mirrored lines. A missing file is an empty cart.
func (m *FileMirror) Load() ([]CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart mirror: %w", err)
	}
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode cart mirror: %w", err)
	}
	return lines, nil
}

// Save replaces the file through a rename so a crash never leaves half a file
func (m *FileMirror) Save(lines []CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lines == nil {
		lines = []CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart mirror: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create cart mirror dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(m.path), MirrorFileName+".*")
	if err != nil {
		return fmt.Errorf("write cart mirror: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cart mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cart mirror: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cart mirror: %w", err)
	}
	return nil
}

type nopMirror struct{}

func (nopMirror) Load() ([]CartLine, error) { return nil, nil }
func (nopMirror) Save([]CartLine) error     { return nil }
