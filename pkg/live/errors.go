package live

import (
	"fmt"
	"strings"
)

// ErrorKind classifies session failures into user-facing categories.
type ErrorKind int

const (
	// KindNetwork is a transient connection failure; restarting is fine.
	KindNetwork ErrorKind = iota

	// KindCredential means the API key is invalid or billing is disabled.
	// Further start attempts are pointless until credentials change.
	KindCredential

	// KindDevice means microphone or camera access failed; no remote
	// session was created.
	KindDevice
)

// Error is a classified session failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("live: %s", e.Message)
}

// Describe returns the short user-facing text for an error kind.
func (e *Error) Describe() string {
	switch e.Kind {
	case KindCredential:
		return "Session interrupted. Ensure your API key is correct and has billing enabled."
	case KindDevice:
		return "Could not access microphone or camera. Check device permissions."
	default:
		return "Connection lost. Please check your network and try again."
	}
}

// credentialMarkers are substrings of service error messages that indicate
// a credential or billing problem rather than a transient failure.
var credentialMarkers = []string{
	"Requested entity was not found",
	"Network error",
}

// Classify turns a raw transport error message into a classified Error.
func Classify(message string) *Error {
	kind := KindNetwork
	for _, marker := range credentialMarkers {
		if strings.Contains(message, marker) {
			kind = KindCredential
			break
		}
	}
	return &Error{Kind: kind, Message: message}
}
