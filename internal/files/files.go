package files

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
)

var (
	// ErrUserCancelled means the user dismissed a picker. Callers treat it as a silent no-op.
	ErrUserCancelled = errors.New("files: cancelled by user")
	// ErrUnsupported means no file picker is available on this host.
	ErrUnsupported = errors.New("files: file system access is not available")
	// ErrIOFailure matches every *IOError.
	ErrIOFailure = errors.New("files: i/o failure")
)

// IOError wraps a failed read or write against a handle.
type IOError struct {
	Op   string
	Name string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("files: %s %q: %v", e.Op, e.Name, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
func (e *IOError) Is(target error) bool {
	return target == ErrIOFailure
}

// Handle is an opaque reference to a user-chosen location. The zero Handle
// refers to nothing.
type Handle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newHandle(name string) Handle {
	return Handle{ID: uuid.NewString(), Name: name}
}

func (h Handle) IsZero() bool { return h.ID == "" }

// Picker lets the user choose where intakes are read from and written to.
//
// PickAndOpen returns a nil document when the chosen file holds valid JSON
// that is not an object. WriteTo writes the whole document as pretty JSON.
type Picker interface {
	Supported() bool
	PickAndOpen(ctx context.Context) (Handle, *intake.Document, error)
	PickAndCreate(ctx context.Context, suggestedName string) (Handle, error)
	WriteTo(ctx context.Context, h Handle, doc intake.Document) error
}

// Downloader hands an exported document to the user without a handle.
type Downloader interface {
	Download(ctx context.Context, filename string, data []byte) error
}

// Unsupported is the Picker of a host without file system access.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }
func (Unsupported) PickAndOpen(context.Context) (Handle, *intake.Document, error) {
	return Handle{}, nil, ErrUnsupported
}
func (Unsupported) PickAndCreate(context.Context, string) (Handle, error) {
	return Handle{}, ErrUnsupported
}
func (Unsupported) WriteTo(context.Context, Handle, intake.Document) error { return ErrUnsupported }

// cleanName accepts a bare file name and adds the .json extension if missing.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrUserCancelled
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || path.Clean(name) != name {
		return "", &IOError{Op: "resolve", Name: name, Err: errors.New("name must not contain a path")}
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	return name, nil
}

// decodeFile parses file contents read through a handle.
func decodeFile(raw []byte) (*intake.Document, error) {
	doc, ok, err := intake.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &doc, nil
}
