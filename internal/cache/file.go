package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/atomicfile"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

// FileCache keeps the draft in <dir>/<key>.json, replaced atomically on
// every save.
type FileCache struct {
	path string
	log  *logger.Entry
}

func NewFileCache(dir, key string) (*FileCache, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, key+".json")
	return &FileCache{path: path, log: logger.With("cmp", "cache.file", "path", path)}, nil
}

func (f *FileCache) Load(_ context.Context) (*intake.Document, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord(f.log, b), nil
}

func (f *FileCache) Save(_ context.Context, doc intake.Document) error {
	b, err := intake.Encode(doc)
	if err != nil {
		return err
	}
	return atomicfile.Write(f.path, b, 0o644)
}

func (f *FileCache) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
