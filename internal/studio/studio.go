// Package studio holds the state of the single-user generation screen: the
// selected picture, the prompt, readiness of the key and the latest outcome.
package studio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"masterpiece/internal/blob"
	"masterpiece/internal/domain"
	"masterpiece/internal/gate"
	"masterpiece/internal/infra"
)

// DefaultRotation is how long each loading message stays on screen.
const DefaultRotation = 4 * time.Second

// AspectAuto derives the framing from the selected picture.
const AspectAuto = "auto"

// Gate is the credential surface the screen needs.
type Gate interface {
	IsCredentialSelected(ctx context.Context) bool
	RequestCredentialSelection(ctx context.Context) error
}

// Generator runs one generation. *lifecycle.Controller satisfies it.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (blob.Handle, error)
}

type Options struct {
	Gate      Gate
	Generator Generator
	Blobs     *blob.Registry
	Logger    *infra.Logger
	Rotation  time.Duration
	Now       func() time.Time
}

// Snapshot is what the front end renders.
type Snapshot struct {
	domain.UIState
	APIKeyReady bool       `json:"api_key_ready"`
	Prompt      string     `json:"prompt"`
	Image       *ImageInfo `json:"image"`
	VideoID     string     `json:"video_id,omitempty"`
}

type Studio struct {
	gate      Gate
	generator Generator
	blobs     *blob.Registry
	logger    *infra.Logger
	rotation  time.Duration
	now       func() time.Time

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	ready     bool
	image     *domain.Image
	info      ImageInfo
	prompt    string
	loading   bool
	started   time.Time
	run       uint64
	cancelRun context.CancelFunc
	video     *blob.Handle
	failure   string
	closed    bool
}

func New(opts Options) *Studio {
	s := &Studio{
		gate:      opts.Gate,
		generator: opts.Generator,
		blobs:     opts.Blobs,
		logger:    opts.Logger,
		rotation:  opts.Rotation,
		now:       opts.Now,
		prompt:    domain.DefaultPrompt,
	}
	if s.logger == nil {
		s.logger = infra.NopLogger()
	}
	if s.rotation <= 0 {
		s.rotation = DefaultRotation
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.blobs == nil {
		s.blobs = blob.NewRegistry("")
	}
	s.base, s.cancel = context.WithCancel(context.Background())
	return s
}

// Mount asks the gate once, as the screen does on first render.
func (s *Studio) Mount(ctx context.Context) bool {
	ready := s.gate != nil && s.gate.IsCredentialSelected(ctx)
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
	return ready
}

// ConnectKey runs the host selection flow and marks the key ready without
// checking it. A stale key surfaces on the next Generate.
func (s *Studio) ConnectKey(ctx context.Context) error {
	if s.gate == nil {
		return gate.ErrEnvironmentUnsupported
	}
	if err := s.gate.RequestCredentialSelection(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("studio: key selection failed")
		return err
	}
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	return nil
}

// SelectImage replaces the picture and clears any previous outcome.
func (s *Studio) SelectImage(img domain.Image) (ImageInfo, error) {
	if err := img.Validate(); err != nil {
		return ImageInfo{}, err
	}
	copied := domain.Image{Data: append([]byte(nil), img.Data...), MIMEType: img.MIMEType}
	info := inspectImage(copied)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = &copied
	s.info = info
	s.dropVideoLocked()
	s.failure = ""
	return info, nil
}

// Clear removes the picture and resets the outcome. A running generation is
// cancelled and its result discarded.
func (s *Studio) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = nil
	s.info = ImageInfo{}
	s.abortRunLocked()
	s.dropVideoLocked()
	s.failure = ""
}

func (s *Studio) SetPrompt(prompt string) {
	s.mu.Lock()
	s.prompt = prompt
	s.mu.Unlock()
}

// Generate starts a generation in the background. aspect is "portrait",
// "landscape", AspectAuto or empty for portrait.
func (s *Studio) Generate(aspect string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return errors.New("studio: closed")
	case s.loading:
		return domain.NewError(domain.KindGenerationInProgress, domain.MsgInProgress, nil)
	case !s.ready:
		return domain.NewError(domain.KindCredentialMissing, domain.MsgCredentialMissing, nil)
	case s.image == nil:
		return domain.NewError(domain.KindUnclassified, domain.MsgNoImage, domain.ErrInvalidRequest)
	}

	ratio, err := s.resolveAspectLocked(aspect)
	if err != nil {
		return err
	}
	req, err := domain.NewGenerationRequest(s.prompt, *s.image, ratio)
	if err != nil {
		return err
	}

	s.dropVideoLocked()
	s.failure = ""
	s.loading = true
	s.started = s.now()
	s.run++
	run := s.run
	ctx, cancel := context.WithCancel(s.base)
	s.cancelRun = cancel

	s.wg.Add(1)
	go s.generate(ctx, run, req)
	return nil
}

func (s *Studio) generate(ctx context.Context, run uint64, req domain.GenerationRequest) {
	defer s.wg.Done()
	handle, err := s.generator.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if run != s.run || !s.loading {
		if err == nil {
			s.blobs.Revoke(handle.ID)
		}
		return
	}
	s.loading = false
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
	if err != nil {
		s.failure = s.failureMessage(err)
		s.logger.Warn().
			Err(err).
			Str("kind", domain.KindOf(err).String()).
			Msg("studio: generation failed")
		return
	}
	s.video = &handle
	s.logger.Info().Str("handle", handle.ID).Msg("studio: video ready")
}

// failureMessage must be called with s.mu held.
func (s *Studio) failureMessage(err error) string {
	switch domain.KindOf(err) {
	case domain.KindCredentialInvalid:
		s.ready = false
		return domain.MsgCredentialInvalid
	case domain.KindCredentialMissing:
		s.ready = false
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return domain.MsgUnexpected
}

// State renders the screen for locale.
func (s *Studio) State(locale string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{APIKeyReady: s.ready, Prompt: s.prompt}
	if s.image != nil {
		info := s.info
		snap.Image = &info
	}
	snap.IsLoading = s.loading
	if s.loading {
		elapsed := s.now().Sub(s.started)
		if elapsed < 0 {
			elapsed = 0
		}
		idx := int(elapsed/s.rotation) % len(domain.LoadingMessages)
		snap.ProgressMessage = Localize(locale, domain.LoadingMessages[idx])
		return snap
	}
	if s.video != nil {
		url := s.video.URL
		snap.VideoURL = &url
		snap.VideoID = s.video.ID
		return snap
	}
	if s.failure != "" {
		msg := Localize(locale, s.failure)
		snap.Error = &msg
	}
	return snap
}

// OpenVideo returns the bytes behind a live handle.
func (s *Studio) OpenVideo(id string) ([]byte, blob.Handle, bool) {
	return s.blobs.Open(id)
}

// Close cancels any running generation, waits for it and releases every handle.
func (s *Studio) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.abortRunLocked()
	s.dropVideoLocked()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	if n := s.blobs.RevokeAll(); n > 0 {
		s.logger.Debug().Int("handles", n).Msg("studio: released handles")
	}
}

func (s *Studio) resolveAspectLocked(aspect string) (domain.AspectRatio, error) {
	switch strings.ToLower(strings.TrimSpace(aspect)) {
	case "":
		return domain.AspectPortrait, nil
	case AspectAuto:
		return domain.AspectRatioForDimensions(s.info.Width, s.info.Height), nil
	default:
		return domain.ParseAspectRatio(aspect)
	}
}

func (s *Studio) abortRunLocked() {
	if !s.loading {
		return
	}
	s.loading = false
	s.run++
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
}

func (s *Studio) dropVideoLocked() {
	if s.video == nil {
		return
	}
	s.blobs.Revoke(s.video.ID)
	s.video = nil
}
