package persistence

import (
	"errors"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/files"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
)

// Failure kinds surfaced by the coordinator. Match with errors.Is.
var (
	ErrParseFailure          = intake.ErrParseFailure
	ErrUserCancelled         = files.ErrUserCancelled
	ErrIOFailure             = files.ErrIOFailure
	ErrUnsupportedCapability = files.ErrUnsupported
	ErrEmptyImport           = errors.New("persistence: nothing to import")
)
