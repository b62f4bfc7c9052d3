package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"masterpiece/internal/blob"
	"masterpiece/internal/domain"
	"masterpiece/internal/infra"
	"masterpiece/internal/middleware"
	"masterpiece/internal/studio"
)

// Studio is the screen state the handlers drive. *studio.Studio satisfies it.
type Studio interface {
	Mount(ctx context.Context) bool
	ConnectKey(ctx context.Context) error
	SelectImage(img domain.Image) (studio.ImageInfo, error)
	Clear()
	SetPrompt(prompt string)
	Generate(aspect string) error
	State(locale string) studio.Snapshot
	OpenVideo(id string) ([]byte, blob.Handle, bool)
}

type App struct {
	Studio         Studio
	Logger         *infra.Logger
	MaxUploadBytes int64
}

func NewApp(s Studio, logger *infra.Logger, maxUploadBytes int64) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &App{Studio: s, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// fail maps a classified error onto a response and logs it with the
// request's logger.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	l := zerolog.Ctx(r.Context())
	if l.GetLevel() == zerolog.Disabled {
		l = a.Logger
	}
	ev := l.Warn()
	if status >= http.StatusInternalServerError {
		ev = l.Error()
	}
	ev.Err(err).Str("code", code).Int("status", status).Msg("http: request failed")
	msg := err.Error()
	if code == codeInternal {
		// unclassified internals stay in the log
		msg = domain.MsgUnexpected
	}
	a.error(w, status, code, studio.Localize(middleware.LocaleFromContext(r.Context()), msg))
}

const codeInternal = "internal"

func errorStatus(err error) (int, string) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return http.StatusBadRequest, "bad_request"
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, codeInternal
	}
	code := de.Kind.String()
	switch de.Kind {
	case domain.KindCredentialMissing:
		return http.StatusPreconditionRequired, code
	case domain.KindCredentialInvalid:
		return http.StatusUnauthorized, code
	case domain.KindGenerationInProgress:
		return http.StatusConflict, code
	case domain.KindEnvironmentUnsupported:
		return http.StatusNotImplemented, code
	case domain.KindTimeout:
		return http.StatusGatewayTimeout, code
	case domain.KindNoResultProduced, domain.KindDownloadFailed:
		return http.StatusBadGateway, code
	default:
		return http.StatusInternalServerError, code
	}
}
