// Package video adapts remote video generation services to the lifecycle's
// submit, poll and download steps.
package video

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"masterpiece/internal/domain"
	"masterpiece/internal/infra"
	"masterpiece/internal/providers/genai"
)

// Service is one remote generation backend. Implementations do not retry and
// do not sleep; pacing belongs to the caller.
type Service interface {
	Submit(ctx context.Context, apiKey string, req domain.GenerationRequest) (domain.Job, error)
	Poll(ctx context.Context, apiKey string, job domain.Job) (domain.Job, error)
	Download(ctx context.Context, apiKey, uri string) ([]byte, error)
}

// Veo drives the Veo model through the genai REST client.
type Veo struct {
	client *genai.Client
	logger *infra.Logger
}

func NewVeo(client *genai.Client, logger *infra.Logger) *Veo {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Veo{client: client, logger: logger}
}

func (v *Veo) Submit(ctx context.Context, apiKey string, req domain.GenerationRequest) (domain.Job, error) {
	img := req.Image()
	op, err := v.client.GenerateVideos(ctx, apiKey, genai.VideoRequest{
		Prompt:      req.Prompt(),
		Image:       img.Data,
		MIMEType:    img.MIMEType,
		AspectRatio: string(req.AspectRatio()),
	})
	if err != nil {
		return domain.Job{}, err
	}
	return jobFromOperation(op), nil
}

func (v *Veo) Poll(ctx context.Context, apiKey string, job domain.Job) (domain.Job, error) {
	op, err := v.client.GetOperation(ctx, apiKey, job.Name)
	if err != nil {
		return job, err
	}
	if err := op.Err(); err != nil {
		return job, err
	}
	if op.Done && op.VideoURI() == "" {
		if reasons := op.FilteredReasons(); len(reasons) > 0 {
			v.logger.Warn().
				Str("operation", op.Name).
				Strs("reasons", reasons).
				Msg("video: samples filtered by safety policy")
		}
	}
	return jobFromOperation(op), nil
}

func (v *Veo) Download(ctx context.Context, apiKey, uri string) ([]byte, error) {
	data, _, err := v.client.Download(ctx, apiKey, uri)
	if err == nil {
		return data, nil
	}
	var dlErr *genai.DownloadError
	if errors.As(err, &dlErr) {
		return nil, DownloadFailed(dlErr.Status, err)
	}
	return nil, err
}

// DownloadFailed builds the classified error for a rejected result fetch.
func DownloadFailed(statusText string, err error) error {
	return domain.NewError(
		domain.KindDownloadFailed,
		fmt.Sprintf("Failed to download video: %s", strings.TrimSpace(statusText)),
		err,
	)
}

func jobFromOperation(op *genai.Operation) domain.Job {
	return domain.Job{Name: op.Name, Done: op.Done, ResultURI: op.VideoURI()}
}

var _ Service = (*Veo)(nil)
