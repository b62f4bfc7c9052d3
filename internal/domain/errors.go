package domain

import "errors"

// Kind classifies a failed generation attempt.
type Kind int

const (
	KindUnclassified Kind = iota
	KindCredentialMissing
	KindCredentialInvalid
	KindNoResultProduced
	KindDownloadFailed
	KindEnvironmentUnsupported
	KindTimeout
	KindGenerationInProgress
)

var kindNames = map[Kind]string{
	KindUnclassified:           "unclassified_failure",
	KindCredentialMissing:      "credential_missing",
	KindCredentialInvalid:      "credential_invalid",
	KindNoResultProduced:       "no_result_produced",
	KindDownloadFailed:         "download_failed",
	KindEnvironmentUnsupported: "environment_unsupported",
	KindTimeout:                "timeout",
	KindGenerationInProgress:   "generation_in_progress",
}

// String returns the snake_case code used in logs and API responses.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnclassified]
}

// Recoverable reports whether the user can fix the failure by reconnecting a credential.
func (k Kind) Recoverable() bool {
	return k == KindCredentialMissing || k == KindCredentialInvalid
}

// Error is the classified failure returned by the generation lifecycle.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError builds a classified error. Message is shown to users verbatim.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the bare sentinels below by kind so callers can write
// errors.Is(err, domain.ErrCredentialInvalid).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrCredentialMissing      = &Error{Kind: KindCredentialMissing}
	ErrCredentialInvalid      = &Error{Kind: KindCredentialInvalid}
	ErrNoResultProduced       = &Error{Kind: KindNoResultProduced}
	ErrDownloadFailed         = &Error{Kind: KindDownloadFailed}
	ErrUnclassified           = &Error{Kind: KindUnclassified}
	ErrEnvironmentUnsupported = &Error{Kind: KindEnvironmentUnsupported}
	ErrTimeout                = &Error{Kind: KindTimeout}
	ErrGenerationInProgress   = &Error{Kind: KindGenerationInProgress}
)

// ErrInvalidRequest is returned when a generation request cannot be built.
var ErrInvalidRequest = errors.New("invalid generation request")

// KindOf extracts the classification of err. Unknown errors are unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}
