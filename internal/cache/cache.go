package cache

import (
	"context"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

// DefaultKey is the record name the current draft is stored under.
const DefaultKey = "quote_intake_v1"

// Store is the durable local cache for the current draft. Load returns nil
// when there is no usable draft; a stored record that fails to parse counts
// as no draft, never as an error.
type Store interface {
	Load(ctx context.Context) (*intake.Document, error)
	Save(ctx context.Context, doc intake.Document) error
	Clear(ctx context.Context) error
}

// decodeRecord turns a stored record back into a document.
func decodeRecord(log *logger.Entry, raw []byte) *intake.Document {
	doc, ok, err := intake.Parse(raw)
	if err != nil {
		log.Warnf("ignoring unreadable draft: %v", err)
		return nil
	}
	if !ok {
		log.Warnf("ignoring draft that is not a JSON object")
		return nil
	}
	return &doc
}
