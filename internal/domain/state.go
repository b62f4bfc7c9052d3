package domain

import "errors"

// UIState is what the front end renders for the generation panel.
type UIState struct {
	IsLoading       bool    `json:"is_loading"`
	ProgressMessage string  `json:"progress_message"`
	VideoURL        *string `json:"video_url"`
	Error           *string `json:"error"`
}

var errInconsistentState = errors.New("inconsistent ui state")

// Validate enforces that at most one of VideoURL and Error is set and that a
// loading state carries neither.
func (s UIState) Validate() error {
	if s.VideoURL != nil && s.Error != nil {
		return errInconsistentState
	}
	if s.IsLoading && (s.VideoURL != nil || s.Error != nil) {
		return errInconsistentState
	}
	return nil
}
