package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"masterpiece/internal/infra"
	"masterpiece/internal/sqlinline"
)

const (
	ProviderVeo = "veo"
)

// Store keeps provider API keys in the integration_tokens table.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QEnsureIntegrationTokens)
	return err
}

func (s *Store) VeoAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderVeo)
}

// Token returns the stored key for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetVeoAPIKey(ctx context.Context, key, source string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("veo api key is required")
	}
	props := map[string]any{"selected_at": time.Now().UTC().Format(time.RFC3339)}
	if source != "" {
		props["source"] = source
	}
	return s.upsert(ctx, ProviderVeo, key, props)
}

func (s *Store) ClearVeoAPIKey(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, ProviderVeo)
	return err
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
