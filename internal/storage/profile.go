package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
)

// FileProfile serves a JSON profile document read from disk.
//
// The document is compacted on load. Reload swaps it atomically, so
// readers never see a partial document.
type FileProfile struct {
	path string
	doc  atomic.Pointer[[]byte]
}

// NewFileProfile reads path and returns a FileProfile.
func NewFileProfile(path string) (*FileProfile, error) {
	p := &FileProfile{path: path}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Path returns the file path.
func (p *FileProfile) Path() string {
	return p.path
}

// Profile implements service.ProfileSource.
func (p *FileProfile) Profile() []byte {
	return *p.doc.Load()
}

// Reload re-reads the file. On error the previous document is kept.
func (p *FileProfile) Reload() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("profile: read %s: %w", p.path, err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return fmt.Errorf("profile: %s is not valid JSON: %w", p.path, err)
	}
	doc := buf.Bytes()
	p.doc.Store(&doc)
	return nil
}
