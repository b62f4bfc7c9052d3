// Package lifecycle runs one image-to-video generation end to end: credential
// check, submit, paced polling, download and handle registration.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"masterpiece/internal/blob"
	"masterpiece/internal/domain"
	"masterpiece/internal/infra"
	"masterpiece/internal/providers/video"
)

// Credentials is the part of the gate the controller depends on.
type Credentials interface {
	IsCredentialSelected(ctx context.Context) bool
	APIKey(ctx context.Context) (string, error)
	Invalidate()
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Options struct {
	Credentials Credentials
	Service     video.Service
	Blobs       *blob.Registry
	Poll        infra.PollConfig
	Logger      *infra.Logger
	// Sleep defaults to a timer honoring ctx. Tests replace it.
	Sleep SleepFunc
	// Clock feeds the wall-clock bound of the poll loop.
	Clock backoff.Clock
}

// Controller allows one generation at a time.
type Controller struct {
	creds   Credentials
	service video.Service
	blobs   *blob.Registry
	poll    infra.PollConfig
	logger  *infra.Logger
	sleep   SleepFunc
	clock   backoff.Clock

	inFlight atomic.Bool
}

func New(opts Options) (*Controller, error) {
	if opts.Credentials == nil {
		return nil, errors.New("lifecycle: credentials are required")
	}
	if opts.Service == nil {
		return nil, errors.New("lifecycle: video service is required")
	}
	if opts.Blobs == nil {
		return nil, errors.New("lifecycle: blob registry is required")
	}
	if opts.Poll.InitialInterval <= 0 {
		return nil, errors.New("lifecycle: poll initial interval must be positive")
	}
	c := &Controller{
		creds:   opts.Credentials,
		service: opts.Service,
		blobs:   opts.Blobs,
		poll:    opts.Poll,
		logger:  opts.Logger,
		sleep:   opts.Sleep,
		clock:   opts.Clock,
	}
	if c.logger == nil {
		c.logger = infra.NopLogger()
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.clock == nil {
		c.clock = backoff.SystemClock
	}
	return c, nil
}

// Busy reports whether a generation is running.
func (c *Controller) Busy() bool {
	return c.inFlight.Load()
}

// Generate runs a full cycle for req. On success the handle owns the video
// bytes until the caller revokes it. Nothing is retried or cached.
func (c *Controller) Generate(ctx context.Context, req domain.GenerationRequest) (blob.Handle, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return blob.Handle{}, domain.NewError(domain.KindGenerationInProgress, domain.MsgInProgress, nil)
	}
	defer c.inFlight.Store(false)

	if !c.creds.IsCredentialSelected(ctx) {
		return blob.Handle{}, domain.NewError(domain.KindCredentialMissing, domain.MsgCredentialMissing, nil)
	}
	apiKey, err := c.creds.APIKey(ctx)
	if err != nil {
		return blob.Handle{}, c.classify(err)
	}

	started := c.clock.Now()
	job, err := c.service.Submit(ctx, apiKey, req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("lifecycle: submit failed")
		return blob.Handle{}, c.classify(err)
	}
	c.logger.Info().
		Str("job", job.Name).
		Str("aspect_ratio", string(req.AspectRatio())).
		Msg("lifecycle: generation submitted")

	job, err = c.awaitDone(ctx, apiKey, job)
	if err != nil {
		return blob.Handle{}, err
	}
	if job.ResultURI == "" {
		c.logger.Warn().Str("job", job.Name).Msg("lifecycle: job finished without a result")
		return blob.Handle{}, domain.NewError(domain.KindNoResultProduced, domain.MsgNoResultProduced, nil)
	}

	data, err := c.service.Download(ctx, apiKey, job.ResultURI)
	if err != nil {
		c.logger.Warn().Err(err).Str("job", job.Name).Msg("lifecycle: download failed")
		return blob.Handle{}, c.classify(err)
	}

	h := c.blobs.Register(data, domain.VideoMIMEType)
	c.logger.Info().
		Str("job", job.Name).
		Str("handle", h.ID).
		Int("bytes", h.Size).
		Dur("elapsed", c.clock.Now().Sub(started)).
		Msg("lifecycle: generation finished")
	return h, nil
}

func (c *Controller) awaitDone(ctx context.Context, apiKey string, job domain.Job) (domain.Job, error) {
	b := c.newBackOff()
	attempt := 0
	for !job.Done {
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			c.logger.Warn().Str("job", job.Name).Int("attempt", attempt).Msg("lifecycle: poll budget exhausted")
			return job, domain.NewError(
				domain.KindTimeout,
				fmt.Sprintf("Video generation timed out after %d status checks.", attempt),
				nil,
			)
		}
		if err := c.sleep(ctx, wait); err != nil {
			return job, c.classify(err)
		}
		attempt++

		next, err := c.service.Poll(ctx, apiKey, job)
		if err != nil {
			c.logger.Warn().Err(err).Str("job", job.Name).Int("attempt", attempt).Msg("lifecycle: poll failed")
			return job, c.classify(err)
		}
		if next.Name == "" {
			next.Name = job.Name
		}
		job = next
		c.logger.Debug().
			Str("job", job.Name).
			Int("attempt", attempt).
			Bool("done", job.Done).
			Dur("waited", wait).
			Msg("lifecycle: polled")
	}
	return job, nil
}

func (c *Controller) newBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.poll.InitialInterval
	eb.MaxInterval = c.poll.MaxInterval
	eb.Multiplier = c.poll.Multiplier
	eb.RandomizationFactor = c.poll.Jitter
	eb.MaxElapsedTime = c.poll.Timeout
	eb.Clock = c.clock
	if eb.MaxInterval < eb.InitialInterval {
		eb.MaxInterval = eb.InitialInterval
	}
	if eb.Multiplier < 1 {
		eb.Multiplier = 1
	}
	eb.Reset()
	if c.poll.MaxAttempts > 0 {
		return backoff.WithMaxRetries(eb, uint64(c.poll.MaxAttempts))
	}
	return eb
}

// classify maps a raw failure onto the error taxonomy. A stale key also
// resets the gate so the front end asks for a new one.
func (c *Controller) classify(err error) error {
	var classified *domain.Error
	if errors.As(err, &classified) {
		if classified.Kind == domain.KindCredentialMissing && classified.Message == "" {
			return domain.NewError(domain.KindCredentialMissing, domain.MsgCredentialMissing, err)
		}
		return err
	}
	if video.IsStaleCredential(err) {
		c.creds.Invalidate()
		return domain.NewError(domain.KindCredentialInvalid, domain.MsgCredentialInvalid, err)
	}
	return domain.NewError(domain.KindUnclassified, err.Error(), err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
