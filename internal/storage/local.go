package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps objects in a directory served by the HTTP server under BaseURL.
type Local struct {
	Dir     string
	BaseURL string // e.g. "/uploads" or "https://lovary.example/uploads"
}

// NewLocal creates dir if needed.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes the object to Dir/key.
func (l *Local) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	p := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, body, 0o644); err != nil {
		return "", err
	}
	return l.BaseURL + "/" + key, nil
}

// Resolve returns ref as is: local URLs do not expire.
func (l *Local) Resolve(_ context.Context, ref string) (string, error) { return ref, nil }

// Delete removes Dir/key.
func (l *Local) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(l.Dir, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
