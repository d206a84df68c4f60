package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bobmcallan/raymonds/internal/interfaces"
	"github.com/bobmcallan/raymonds/internal/models"
)

// Storage keys shared with the browser build of the dashboard.
const (
	TokenKey   = "access_token"
	SessionKey = "auth-storage"
)

// SessionVersion is the envelope version written by SaveSession.
const SessionVersion = 1

// ErrSessionSchema marks a persisted session that cannot be restored.
var ErrSessionSchema = errors.New("persisted session has an unsupported schema")

// Session is the persisted {user, token, isAuthenticated} triple.
type Session struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

type sessionEnvelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// EncodeSession wraps s in the versioned envelope.
func EncodeSession(s Session) (string, error) {
	state, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	data, err := json.Marshal(sessionEnvelope{Version: SessionVersion, State: state})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session envelope: %w", err)
	}
	return string(data), nil
}

// DecodeSession parses an envelope written by EncodeSession. Malformed JSON,
// a missing state or a different version all yield ErrSessionSchema.
func DecodeSession(raw string) (Session, error) {
	var env sessionEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionSchema, err)
	}
	if env.Version != SessionVersion {
		return Session{}, fmt.Errorf("%w: version %d", ErrSessionSchema, env.Version)
	}
	if len(env.State) == 0 || string(env.State) == "null" {
		return Session{}, fmt.Errorf("%w: missing state", ErrSessionSchema)
	}

	var s Session
	if err := json.Unmarshal(env.State, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSessionSchema, err)
	}
	return s, nil
}

// SaveSession persists both the bare token and the session envelope.
func SaveSession(ctx context.Context, kv interfaces.KeyValueStore, s Session) error {
	encoded, err := EncodeSession(s)
	if err != nil {
		return err
	}
	if err := kv.Set(ctx, TokenKey, s.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := kv.Set(ctx, SessionKey, encoded); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// LoadSession restores the persisted session. A missing envelope with a bare
// token present yields a session carrying only the token.
func LoadSession(ctx context.Context, kv interfaces.KeyValueStore) (Session, error) {
	raw, err := kv.Get(ctx, SessionKey)
	switch {
	case err == nil:
		s, err := DecodeSession(raw)
		if err != nil {
			return Session{}, err
		}
		if s.Token == "" {
			if token, terr := kv.Get(ctx, TokenKey); terr == nil {
				s.Token = token
			}
		}
		return s, nil
	case errors.Is(err, ErrNotFound):
		token, terr := kv.Get(ctx, TokenKey)
		if terr != nil {
			return Session{}, terr
		}
		return Session{Token: token}, nil
	default:
		return Session{}, err
	}
}

// ClearSession removes both keys.
func ClearSession(ctx context.Context, kv interfaces.KeyValueStore) error {
	if err := kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	if err := kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
