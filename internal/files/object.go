package files

import (
	"context"
	"errors"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/storage"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

const jsonContentType = "application/json"

// ObjectPicker resolves handles to objects in a bucket under a key prefix.
type ObjectPicker struct {
	store  storage.ObjectStore
	prefix string
	prompt Prompter
	log    *logger.Entry
}

func NewObjectPicker(store storage.ObjectStore, prefix string, prompt Prompter) *ObjectPicker {
	return &ObjectPicker{store: store, prefix: prefix, prompt: prompt, log: logger.With("cmp", "files.object", "prefix", prefix)}
}

func (p *ObjectPicker) Supported() bool { return true }

func (p *ObjectPicker) key(name string) string { return p.prefix + name }

func (p *ObjectPicker) PickAndOpen(ctx context.Context) (Handle, *intake.Document, error) {
	name, err := p.choose(ctx, "")
	if err != nil {
		return Handle{}, nil, err
	}
	raw, err := p.store.Get(ctx, p.key(name))
	if err != nil {
		return Handle{}, nil, &IOError{Op: "open", Name: name, Err: err}
	}
	doc, err := decodeFile(raw)
	if err != nil {
		return Handle{}, nil, err
	}
	return newHandle(name), doc, nil
}

func (p *ObjectPicker) PickAndCreate(ctx context.Context, suggested string) (Handle, error) {
	name, err := p.choose(ctx, suggested)
	if err != nil {
		return Handle{}, err
	}
	return newHandle(name), nil
}

func (p *ObjectPicker) WriteTo(ctx context.Context, h Handle, doc intake.Document) error {
	if h.IsZero() {
		return &IOError{Op: "write", Err: errors.New("no handle")}
	}
	b, err := intake.EncodePretty(doc)
	if err != nil {
		return &IOError{Op: "write", Name: h.Name, Err: err}
	}
	if err := p.store.Put(ctx, p.key(h.Name), b, jsonContentType); err != nil {
		return &IOError{Op: "write", Name: h.Name, Err: err}
	}
	p.log.Debugf("put %d bytes at %s", len(b), p.key(h.Name))
	return nil
}

func (p *ObjectPicker) choose(ctx context.Context, suggested string) (string, error) {
	name, err := p.prompt.Choose(ctx, suggested)
	if err != nil {
		return "", err
	}
	return cleanName(name)
}
