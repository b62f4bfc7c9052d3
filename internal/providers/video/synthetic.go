package video

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"masterpiece/internal/domain"
	"masterpiece/internal/infra"
)

const syntheticScheme = "synthetic://"

// Synthetic produces deterministic placeholder videos without network access.
// Each job reports done after PollsUntilDone polls.
type Synthetic struct {
	PollsUntilDone int

	logger *infra.Logger

	mu   sync.Mutex
	jobs map[string]*syntheticJob
}

type syntheticJob struct {
	seed   string
	prompt string
	polls  int
}

func NewSynthetic(pollsUntilDone int, logger *infra.Logger) *Synthetic {
	if pollsUntilDone < 0 {
		pollsUntilDone = 0
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Synthetic{PollsUntilDone: pollsUntilDone, logger: logger, jobs: make(map[string]*syntheticJob)}
}

func (s *Synthetic) Submit(ctx context.Context, apiKey string, req domain.GenerationRequest) (domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return domain.Job{}, err
	}
	img := req.Image()
	name := "synthetic/operations/" + uuid.NewString()
	seed := deterministicSeed(req.Prompt(), string(req.AspectRatio()), img.MIMEType, len(img.Data))

	s.mu.Lock()
	s.jobs[name] = &syntheticJob{seed: seed, prompt: req.Prompt()}
	s.mu.Unlock()

	s.logger.Debug().Str("operation", name).Str("seed", seed).Msg("video: synthetic job submitted")
	if s.PollsUntilDone == 0 {
		return domain.Job{Name: name, Done: true, ResultURI: syntheticScheme + name}, nil
	}
	return domain.Job{Name: name}, nil
}

func (s *Synthetic) Poll(ctx context.Context, apiKey string, job domain.Job) (domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return job, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[job.Name]
	if !ok {
		return job, fmt.Errorf("synthetic: unknown operation %q", job.Name)
	}
	j.polls++
	if j.polls >= s.PollsUntilDone {
		return domain.Job{Name: job.Name, Done: true, ResultURI: syntheticScheme + job.Name}, nil
	}
	return domain.Job{Name: job.Name}, nil
}

func (s *Synthetic) Download(ctx context.Context, apiKey, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(uri, syntheticScheme)
	s.mu.Lock()
	j, ok := s.jobs[name]
	if ok {
		delete(s.jobs, name)
	}
	s.mu.Unlock()
	if !ok {
		return nil, DownloadFailed("Not Found", fmt.Errorf("synthetic: unknown result %q", uri))
	}
	return renderSyntheticVideo(j.seed, j.prompt), nil
}

func renderSyntheticVideo(seed, prompt string) []byte {
	lines := []string{
		"Synthetic video placeholder",
		fmt.Sprintf("Seed: %s", seed),
		fmt.Sprintf("Prompt: %s", strings.TrimSpace(prompt)),
	}
	return []byte(strings.Join(lines, "\n"))
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

var _ Service = (*Synthetic)(nil)
