// Package fsutil is the filesystem collaborator used while resolving build
// options. Reads that may legitimately miss are best-effort: an absent file
// yields empty content rather than an error.
package fsutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// FS exposes the filesystem operations the resolver depends on.
type FS interface {
	Exists(ctx context.Context, path string) bool
	ReadText(ctx context.Context, path string) (string, error)
	ListDir(ctx context.Context, path string) ([]string, error)
}

// Storage implements FS on top of afs, so locations may be plain paths or any
// URL scheme afs understands.
type Storage struct {
	service afs.Service
}

// New returns an afs backed FS.
func New() *Storage {
	return &Storage{service: afs.New()}
}

// Exists reports whether path is present. Lookup failures count as absent.
func (s *Storage) Exists(ctx context.Context, path string) bool {
	ok, err := s.service.Exists(ctx, location(path))
	return err == nil && ok
}

// ReadText reads path as UTF-8 text.
func (s *Storage) ReadText(ctx context.Context, path string) (string, error) {
	data, err := s.service.DownloadWithURL(ctx, location(path))
	if err != nil {
		return "", fmt.Errorf("fsutil: read %s: %w", path, err)
	}
	return string(data), nil
}

// ListDir returns the sorted names of the entries directly under path.
func (s *Storage) ListDir(ctx context.Context, path string) ([]string, error) {
	base := location(path)
	objects, err := s.service.List(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("fsutil: list %s: %w", path, err)
	}
	root := strings.TrimRight(url.Path(base), "/")
	names := make([]string, 0, len(objects))
	for _, object := range objects {
		if strings.TrimRight(url.Path(object.URL()), "/") == root {
			continue
		}
		names = append(names, object.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile returns the content of path, or "" when it does not exist.
func ReadFile(ctx context.Context, fs FS, path string) string {
	if fs == nil || !fs.Exists(ctx, path) {
		return ""
	}
	content, err := fs.ReadText(ctx, path)
	if err != nil {
		return ""
	}
	return content
}

func location(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
