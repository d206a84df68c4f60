package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/raymonds/internal/models"
)

func TestEncodeSession_Envelope(t *testing.T) {
	raw, err := EncodeSession(Session{
		User:            &models.User{ID: "1", Email: "a@b.c", Username: "ana"},
		Token:           "tok",
		IsAuthenticated: true,
	})
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.JSONEq(t, `1`, string(env["version"]))

	var state map[string]any
	require.NoError(t, json.Unmarshal(env["state"], &state))
	assert.Equal(t, "tok", state["token"])
	assert.Equal(t, true, state["isAuthenticated"])
	assert.Contains(t, state, "user")
}

func TestDecodeSession_RoundTrip(t *testing.T) {
	in := Session{User: &models.User{ID: "7", Username: "kim"}, Token: "t", IsAuthenticated: true}
	raw, err := EncodeSession(in)
	require.NoError(t, err)

	out, err := DecodeSession(raw)
	require.NoError(t, err)
	assert.Equal(t, "kim", out.User.Username)
	assert.Equal(t, "t", out.Token)
	assert.True(t, out.IsAuthenticated)
}

func TestDecodeSession_RejectsBadSchema(t *testing.T) {
	cases := map[string]string{
		"malformed":     `{"version":1,"state":`,
		"wrong version": `{"version":2,"state":{"token":"t"}}`,
		"no version":    `{"state":{"token":"t"}}`,
		"null state":    `{"version":1,"state":null}`,
		"bare triple":   `{"user":null,"token":"t","isAuthenticated":true}`,
		"state type":    `{"version":1,"state":"token"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSession(raw)
			assert.True(t, errors.Is(err, ErrSessionSchema), "err = %v", err)
		})
	}
}

func TestSaveLoadClearSession(t *testing.T) {
	kv := NewMemoryStore()
	ctx := context.Background()

	_, err := LoadSession(ctx, kv)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SaveSession(ctx, kv, Session{Token: "tok", IsAuthenticated: true, User: &models.User{ID: "1"}}))

	token, err := kv.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	s, err := LoadSession(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "1", s.User.ID)

	require.NoError(t, ClearSession(ctx, kv))
	assert.Equal(t, 0, kv.Keys())
}

func TestLoadSession_BareTokenOnly(t *testing.T) {
	kv := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, TokenKey, "legacy"))

	s, err := LoadSession(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, "legacy", s.Token)
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
}

func TestLoadSession_CorruptEnvelope(t *testing.T) {
	kv := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, SessionKey, "garbage"))

	_, err := LoadSession(ctx, kv)
	assert.ErrorIs(t, err, ErrSessionSchema)
}
