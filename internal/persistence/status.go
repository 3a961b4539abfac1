package persistence

import "time"

type Phase string

const (
	PhaseEditing   Phase = "editing"
	PhaseChanged   Phase = "changed"
	PhasePersisted Phase = "persisted"
)

// Status line texts.
const (
	TextPersisted   = "Auto-saved locally"
	TextLimitedHost = "Auto-saved locally (file save limited on this host)"
	TextCacheFailed = "Local auto-save failed"
	TextLoaded      = "Loaded"

	HintLimitedHost = "file save limited on this host"
)

// Notifications returned to the host UI.
const (
	MsgSaved           = "Saved"
	MsgOpened          = "Opened"
	MsgImported        = "Imported"
	MsgNewIntake       = "New intake"
	MsgDownloaded      = "Downloaded JSON"
	MsgInvalidJSON     = "Invalid JSON"
	MsgEmptyImport     = "Paste JSON into the box first"
	MsgSaveUnsupported = "File save not supported here. Use Download JSON instead."
	MsgOpenUnsupported = "File open not supported here. Use Import JSON instead."
	MsgRestored        = "Restored last draft (local)"
)

// Status is what the status line shows. Hint persists across phases once set.
type Status struct {
	Phase     Phase     `json:"phase"`
	Text      string    `json:"text"`
	Hint      string    `json:"hint,omitempty"`
	Handle    string    `json:"handle,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func phaseFor(typing bool) Phase {
	if typing {
		return PhaseEditing
	}
	return PhaseChanged
}

// Outcome is the user-facing result of an action. Message is empty when the
// action ended silently.
type Outcome struct {
	Message   string `json:"message,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// Failure notifications.
const (
	MsgSaveFailed     = "Save failed"
	MsgOpenFailed     = "Open failed"
	MsgDownloadFailed = "Download failed"
)
