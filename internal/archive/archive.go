// Package archive loads a packaged extension bundle from disk.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/cwspublish/internal/ctxlog"
)

// ErrUnreadable is returned for every failure to load an archive: missing
// file, permission denied, invalid path or a directory.
var ErrUnreadable = errors.New("archive is not readable")

// Blob holds the raw bytes of an archive. It is not cached anywhere.
type Blob struct {
	Path string
	Data []byte
}

// Size returns the archive length in bytes.
func (b *Blob) Size() int {
	return len(b.Data)
}

// Read loads the file at path. The contents are not inspected.
func Read(ctx context.Context, path string) (*Blob, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)

	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnreadable)
	}

	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("Archive stat failed.", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadable, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("Archive read failed.", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	logger.Debug("Archive loaded.", "size", len(data))
	return &Blob{Path: path, Data: data}, nil
}
