package gate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"masterpiece/internal/domain"
)

// EnvHost exposes a key fixed at startup. It has no selection flow.
type EnvHost struct {
	key string
}

func NewEnvHost(key string) *EnvHost {
	return &EnvHost{key: strings.TrimSpace(key)}
}

func (h *EnvHost) HasSelectedKey(ctx context.Context) (bool, error) {
	return h.key != "", nil
}

func (h *EnvHost) OpenSelectKey(ctx context.Context) error {
	return ErrEnvironmentUnsupported
}

func (h *EnvHost) APIKey(ctx context.Context) (string, error) {
	if h.key == "" {
		return "", domain.ErrCredentialMissing
	}
	return h.key, nil
}

// KeyStore persists the selected key. *credentials.Store satisfies it.
type KeyStore interface {
	VeoAPIKey(ctx context.Context) (string, error)
	SetVeoAPIKey(ctx context.Context, key, source string) error
}

// Prompter asks the user for a key. An empty key means the user dismissed it.
type Prompter interface {
	PromptAPIKey(ctx context.Context) (string, error)
}

// StoreHost reads the key from a KeyStore and fills it through a Prompter.
type StoreHost struct {
	store    KeyStore
	prompter Prompter
	source   string
}

func NewStoreHost(store KeyStore, prompter Prompter, source string) *StoreHost {
	return &StoreHost{store: store, prompter: prompter, source: source}
}

func (h *StoreHost) HasSelectedKey(ctx context.Context) (bool, error) {
	key, err := h.store.VeoAPIKey(ctx)
	if err != nil {
		return false, err
	}
	return key != "", nil
}

func (h *StoreHost) OpenSelectKey(ctx context.Context) error {
	if h.prompter == nil {
		return ErrEnvironmentUnsupported
	}
	key, err := h.prompter.PromptAPIKey(ctx)
	if err != nil {
		return fmt.Errorf("prompt api key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if err := h.store.SetVeoAPIKey(ctx, key, h.source); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	return nil
}

func (h *StoreHost) APIKey(ctx context.Context) (string, error) {
	key, err := h.store.VeoAPIKey(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", domain.ErrCredentialMissing
	}
	return key, nil
}

// ReaderPrompter reads a key from a terminal.
type ReaderPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p ReaderPrompter) PromptAPIKey(ctx context.Context) (string, error) {
	if p.Out != nil {
		fmt.Fprint(p.Out, "Paste your Veo API key (empty to cancel): ")
	}
	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		done <- result{line: strings.TrimSpace(line), err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.line, r.err
	}
}

type submittedKey struct{}

// WithSubmittedKey carries a key entered in an HTTP request to ContextPrompter.
func WithSubmittedKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, submittedKey{}, key)
}

// ContextPrompter answers with the key placed on the context by WithSubmittedKey.
type ContextPrompter struct{}

func (ContextPrompter) PromptAPIKey(ctx context.Context) (string, error) {
	key, _ := ctx.Value(submittedKey{}).(string)
	return key, nil
}
