package video

import (
	"errors"
	"strings"

	"masterpiece/internal/providers/genai"
)

// staleKeyMessage is what the remote service says when the key's project no
// longer grants access to the model.
const staleKeyMessage = "Requested entity was not found"

// IsStaleCredential reports whether err means the active API key can no longer
// reach the model. Structured NOT_FOUND answers are trusted first; the message
// match covers errors that lost their structure on the way.
func IsStaleCredential(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.NotFound() {
			return true
		}
		return strings.Contains(apiErr.Message, staleKeyMessage)
	}
	return strings.Contains(err.Error(), staleKeyMessage)
}
