package pomodoro

import (
	"context"
	"fmt"

	"github.com/colonyops/tempo/internal/core/kv"
	"github.com/rs/zerolog"
)

const (
	SettingsNamespace = "pomodoro_settings"
	SessionsNamespace = "pomodoro_sessions"
)

// Store persists settings and the completed work session count per identity
// under "pomodoro_settings_<identity>" and "pomodoro_sessions_<identity>".
type Store struct {
	kv       kv.KV
	settings *kv.TypedKV[Settings]
	sessions *kv.TypedKV[int]
	defaults Settings
	log      zerolog.Logger
}

var _ Persistence = (*Store)(nil)

// NewStore creates a Store. defaults are returned for identities with no
// stored settings and must be valid.
func NewStore(store kv.KV, defaults Settings, log zerolog.Logger) *Store {
	return &Store{
		kv:       store,
		settings: kv.Scoped[Settings](store, SettingsNamespace),
		sessions: kv.Scoped[int](store, SessionsNamespace),
		defaults: defaults,
		log:      log.With().Str("component", "pomodoro-store").Logger(),
	}
}

// Defaults returns the settings used when nothing is stored.
func (s *Store) Defaults() Settings {
	return s.defaults
}

// LoadSettings returns the stored settings for identity. Missing fields take
// their default; a stored value that fails validation is ignored.
func (s *Store) LoadSettings(ctx context.Context, identity string) (Settings, error) {
	loaded := s.defaults
	if err := s.kv.Get(ctx, s.settings.Key(identity), &loaded); err != nil {
		if kv.IsMissing(err) {
			return s.defaults, nil
		}
		return s.defaults, fmt.Errorf("load settings: %w", err)
	}

	if err := loaded.Validate(); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("stored settings invalid, using defaults")
		return s.defaults, nil
	}

	return loaded, nil
}

// SaveSettings overwrites the stored settings for identity.
func (s *Store) SaveSettings(ctx context.Context, identity string, settings Settings) error {
	if err := s.settings.Set(ctx, identity, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadSessions returns the completed work session count for identity, 0 when absent.
func (s *Store) LoadSessions(ctx context.Context, identity string) (int, error) {
	n, ok, err := s.sessions.Lookup(ctx, identity)
	if err != nil {
		return 0, fmt.Errorf("load sessions: %w", err)
	}
	if !ok || n < 0 {
		return 0, nil
	}
	return n, nil
}

// SaveSessions stores the completed work session count for identity.
func (s *Store) SaveSessions(ctx context.Context, identity string, n int) error {
	if err := s.sessions.Set(ctx, identity, n); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

// ClearSessions removes the stored count for identity.
func (s *Store) ClearSessions(ctx context.Context, identity string) error {
	if err := s.sessions.Delete(ctx, identity); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}
