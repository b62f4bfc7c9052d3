package domain

// User-facing messages. The English text doubles as the translation key.
const (
	MsgCredentialMissing = "API Key not selected. Please select an API Key to proceed."
	MsgCredentialInvalid = "API Key access lost or invalid. Please reconnect."
	MsgNoResultProduced  = "Video generation failed: No URI returned."
	MsgInProgress        = "A video is already being generated. Wait for it to finish."
	MsgUnexpected        = "An unexpected error occurred during generation."
	MsgNoImage           = "Please upload an image file."
)

// LoadingMessages rotate while a generation is running.
var LoadingMessages = []string{
	"Studying the brushstrokes...",
	"Imagining the movement...",
	"Waking up the subject...",
	"Rendering frames...",
	"Applying artistic filters...",
	"Almost there, polishing the animation...",
}
