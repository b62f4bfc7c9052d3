// Package gate answers whether a usable API key is active and triggers the
// host's key selection flow. It does not store keys itself.
package gate

import (
	"context"
	"sync"

	"masterpiece/internal/domain"
	"masterpiece/internal/infra"
)

// Host is the environment that owns key selection.
type Host interface {
	HasSelectedKey(ctx context.Context) (bool, error)
	// OpenSelectKey returns once the user completed or dismissed selection.
	OpenSelectKey(ctx context.Context) error
	APIKey(ctx context.Context) (string, error)
}

// ErrEnvironmentUnsupported is returned by hosts without a selection flow.
var ErrEnvironmentUnsupported = domain.NewError(
	domain.KindEnvironmentUnsupported,
	"Credential selection is not available in this environment. Configure the API key for the host instead.",
	nil,
)

// Gate wraps a Host and caches readiness for the front end.
type Gate struct {
	host   Host
	logger *infra.Logger

	mu          sync.Mutex
	ready       bool
	invalidated bool
}

func New(host Host, logger *infra.Logger) *Gate {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Gate{host: host, logger: logger}
}

// IsCredentialSelected never fails: a missing host, a host error or a key
// invalidated by the remote service all read as false.
func (g *Gate) IsCredentialSelected(ctx context.Context) bool {
	g.mu.Lock()
	invalidated := g.invalidated
	g.mu.Unlock()
	if invalidated || g.host == nil {
		g.setReady(false)
		return false
	}

	ok, err := g.host.HasSelectedKey(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("gate: host key check failed")
		ok = false
	}
	g.setReady(ok)
	return ok
}

// RequestCredentialSelection runs the host flow and then marks the gate ready
// without verifying the key. A stale key is corrected only by Invalidate on the
// next generation's CredentialInvalid failure.
func (g *Gate) RequestCredentialSelection(ctx context.Context) error {
	if g.host == nil {
		return ErrEnvironmentUnsupported
	}
	if err := g.host.OpenSelectKey(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	g.invalidated = false
	g.ready = true
	g.mu.Unlock()
	g.logger.Info().Msg("gate: credential selection finished")
	return nil
}

// APIKey returns the key the host currently exposes.
func (g *Gate) APIKey(ctx context.Context) (string, error) {
	if g.host == nil {
		return "", domain.ErrCredentialMissing
	}
	return g.host.APIKey(ctx)
}

// Invalidate marks the selected key as stale until the next selection.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	g.invalidated = true
	g.ready = false
	g.mu.Unlock()
	g.logger.Warn().Msg("gate: credential invalidated by remote service")
}

// Ready returns the last known readiness without asking the host.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

func (g *Gate) setReady(v bool) {
	g.mu.Lock()
	g.ready = v
	g.mu.Unlock()
}
