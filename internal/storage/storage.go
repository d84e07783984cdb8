// Package storage saves uploaded photos and hands back the URL they are served from.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

// ErrBadKey is returned for object keys that would escape the store root.
var ErrBadKey = errors.New("invalid object key")

// Store persists binary objects under a key.
type Store interface {
	// Put writes body under key and returns the reference to persist for it.
	// The reference is either a plain URL or a store-private one that only
	// Resolve can turn into a fetchable URL.
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	// Resolve maps a persisted reference to a URL a client can fetch now.
	// References the store does not own are returned unchanged.
	Resolve(ctx context.Context, ref string) (string, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh object key "<prefix>/<xid><ext>", keeping the
// lowercased extension of filename.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 {
		ext = ""
	}
	return path.Join(prefix, xid.New().String()+ext)
}

func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, `\`) {
		return ErrBadKey
	}
	return nil
}

// Fallback writes to Primary and falls back to Secondary when Primary fails.
type Fallback struct {
	Primary   Store
	Secondary Store
	Log       *zap.Logger
}

// Put stores body in the first store that accepts it.
func (f *Fallback) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	url, err := f.Primary.Put(ctx, key, contentType, body)
	if err == nil {
		return url, nil
	}
	f.Log.Warn("primary storage failed, using fallback", zap.String("key", key), zap.Error(err))
	return f.Secondary.Put(ctx, key, contentType, body)
}

// Resolve lets each store map the references it owns.
func (f *Fallback) Resolve(ctx context.Context, ref string) (string, error) {
	u, err := f.Primary.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	return f.Secondary.Resolve(ctx, u)
}

// Delete removes key from both stores; it fails only if both do.
func (f *Fallback) Delete(ctx context.Context, key string) error {
	perr := f.Primary.Delete(ctx, key)
	serr := f.Secondary.Delete(ctx, key)
	if perr != nil && serr != nil {
		return errors.Join(perr, serr)
	}
	return nil
}
