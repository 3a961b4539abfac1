package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/atomicfile"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

// LocalPicker resolves handles to files in a single directory.
type LocalPicker struct {
	dir    string
	prompt Prompter
	log    *logger.Entry
}

func NewLocalPicker(dir string, prompt Prompter) (*LocalPicker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalPicker{dir: dir, prompt: prompt, log: logger.With("cmp", "files.local", "dir", dir)}, nil
}

func (p *LocalPicker) Supported() bool { return true }

func (p *LocalPicker) PickAndOpen(ctx context.Context) (Handle, *intake.Document, error) {
	name, err := p.choose(ctx, "")
	if err != nil {
		return Handle{}, nil, err
	}
	raw, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		return Handle{}, nil, &IOError{Op: "open", Name: name, Err: err}
	}
	doc, err := decodeFile(raw)
	if err != nil {
		return Handle{}, nil, err
	}
	return newHandle(name), doc, nil
}

func (p *LocalPicker) PickAndCreate(ctx context.Context, suggested string) (Handle, error) {
	name, err := p.choose(ctx, suggested)
	if err != nil {
		return Handle{}, err
	}
	return newHandle(name), nil
}

func (p *LocalPicker) WriteTo(_ context.Context, h Handle, doc intake.Document) error {
	if h.IsZero() {
		return &IOError{Op: "write", Err: errors.New("no handle")}
	}
	b, err := intake.EncodePretty(doc)
	if err != nil {
		return &IOError{Op: "write", Name: h.Name, Err: err}
	}
	if err := atomicfile.Write(filepath.Join(p.dir, h.Name), b, 0o644); err != nil {
		return &IOError{Op: "write", Name: h.Name, Err: err}
	}
	p.log.Debugf("wrote %d bytes to %s", len(b), h.Name)
	return nil
}

func (p *LocalPicker) choose(ctx context.Context, suggested string) (string, error) {
	name, err := p.prompt.Choose(ctx, suggested)
	if err != nil {
		return "", err
	}
	return cleanName(name)
}

// DirDownloader saves downloads into a directory, overwriting same-named files.
type DirDownloader struct {
	dir string
}

func NewDirDownloader(dir string) (*DirDownloader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirDownloader{dir: dir}, nil
}

func (d *DirDownloader) Download(_ context.Context, filename string, data []byte) error {
	name, err := cleanName(filename)
	if err != nil {
		return err
	}
	if err := atomicfile.Write(filepath.Join(d.dir, name), data, 0o644); err != nil {
		return &IOError{Op: "download", Name: name, Err: err}
	}
	return nil
}
