package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/storage"
	tcommon "github.com/bobmcallan/raymonds/tests/common"
)

const (
	testEmail    = "analyst@example.com"
	testPassword = "correct-horse"
)

type fixture struct {
	store   *Store
	kv      *storage.MemoryStore
	backend *tcommon.StubBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := tcommon.NewStubBackend(t)
	backend.AddUser(testEmail, "analyst", testPassword)
	kv := storage.NewMemoryStore()
	client := raymonds.NewClient(raymonds.WithBaseURL(backend.URL()), raymonds.WithRateLimit(1000))
	return &fixture{store: New(client, kv), kv: kv, backend: backend}
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	err := f.store.Login(context.Background(), models.Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	st := f.store.State()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "analyst", st.User.Username)
	assert.NotEmpty(t, st.Token)
	assert.Empty(t, st.Error)
	assert.False(t, st.IsLoading)

	token, err := f.kv.Get(context.Background(), storage.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, st.Token, token)

	sess, err := storage.LoadSession(context.Background(), f.kv)
	require.NoError(t, err)
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "analyst", sess.User.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)

	err := f.store.Login(context.Background(), models.Credentials{Email: testEmail, Password: "wrong"})
	require.Error(t, err)

	st := f.store.State()
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, "Incorrect email or password", st.Error)
	assert.Nil(t, st.User)
	assert.Equal(t, 0, f.kv.Keys())
}

func TestLogin_ProfileFailureClearsToken(t *testing.T) {
	f := newFixture(t)
	f.backend.FailNext("/auth/me", 1)

	err := f.store.Login(context.Background(), models.Credentials{Email: testEmail, Password: testPassword})
	require.Error(t, err)

	st := f.store.State()
	assert.False(t, st.IsAuthenticated)
	assert.NotEmpty(t, st.Error)
	assert.Equal(t, 0, f.kv.Keys(), "token written before the profile fetch is removed")
}

func TestLogin_LoadingStateObserved(t *testing.T) {
	f := newFixture(t)
	var states []State
	f.store.Subscribe(func(st State) { states = append(states, st) })

	require.NoError(t, f.store.Login(context.Background(), models.Credentials{Email: testEmail, Password: testPassword}))

	require.GreaterOrEqual(t, len(states), 2)
	assert.True(t, states[0].IsLoading)
	last := states[len(states)-1]
	assert.False(t, last.IsLoading)
	assert.True(t, last.IsAuthenticated)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Login(context.Background(), models.Credentials{Email: testEmail, Password: testPassword}))

	f.store.Logout(context.Background())

	assert.Equal(t, State{}, f.store.State())
	assert.Equal(t, 0, f.kv.Keys())
}

func TestRegister_DoesNotTouchSession(t *testing.T) {
	f := newFixture(t)
	notified := 0
	f.store.Subscribe(func(State) { notified++ })

	user, err := f.store.Register(context.Background(), models.RegisterRequest{
		Email: "new@example.com", Username: "newbie", Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "newbie", user.Username)

	assert.Equal(t, State{}, f.store.State())
	assert.Equal(t, 0, notified)
	assert.Equal(t, 0, f.kv.Keys())

	_, err = f.store.Register(context.Background(), models.RegisterRequest{Email: testEmail, Username: "dup", Password: "longenough"})
	assert.Error(t, err)
	assert.Equal(t, State{}, f.store.State())
}

func TestCheckAuth_RestoresValidSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.backend.IssueToken(testEmail, time.Hour)
	require.NoError(t, storage.SaveSession(ctx, f.kv, storage.Session{Token: token}))

	require.NoError(t, f.store.CheckAuth(ctx))

	st := f.store.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "analyst", st.User.Username)
	assert.Equal(t, token, st.Token)
}

func TestCheckAuth_NoTokenIsNotAnError(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.CheckAuth(context.Background()))
	assert.Equal(t, State{}, f.store.State())
	assert.Equal(t, 0, f.backend.TotalCalls())
}

func TestCheckAuth_ExpiredTokenClearedLocally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, storage.TokenKey, f.backend.IssueToken(testEmail, -time.Minute)))

	require.NoError(t, f.store.CheckAuth(ctx))

	st := f.store.State()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Error, "expiry is a silent logout")
	assert.Equal(t, 0, f.kv.Keys())
	assert.Equal(t, 0, f.backend.Calls("/auth/me"))
}

func TestCheckAuth_RejectedTokenClearsStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// signed with a key the backend does not know
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testEmail,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("someone-else"))
	require.NoError(t, err)
	require.NoError(t, storage.SaveSession(ctx, f.kv, storage.Session{Token: forged, IsAuthenticated: true, User: &models.User{Username: "analyst"}}))

	require.NoError(t, f.store.CheckAuth(ctx))

	st := f.store.State()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Error)
	assert.Nil(t, st.User)
	assert.Equal(t, 0, f.kv.Keys())
	assert.Equal(t, 1, f.backend.Calls("/auth/me"))
}

func TestCheckAuth_CorruptSessionDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, storage.SessionKey, `{"version":99,"state":{}}`))
	require.NoError(t, f.kv.Set(ctx, storage.TokenKey, "whatever"))

	require.NoError(t, f.store.CheckAuth(ctx))
	assert.Equal(t, State{}, f.store.State())
	assert.Equal(t, 0, f.kv.Keys())
}

func TestCheckAuth_TransportFailureKeepsToken(t *testing.T) {
	kv := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, storage.TokenKey, "opaque-token"))

	client := raymonds.NewClient(raymonds.WithBaseURL("http://127.0.0.1:1"), raymonds.WithTimeout(time.Second))
	s := New(client, kv)

	err := s.CheckAuth(ctx)
	require.Error(t, err)

	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, "opaque-token", st.Token)
	assert.Equal(t, "Unable to reach the RaymondsIndex server", st.Error)

	token, err := kv.Get(ctx, storage.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)

	s.ClearError()
	assert.Empty(t, s.State().Error)
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sign := func(claims jwt.MapClaims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}

	assert.True(t, tokenExpired(sign(jwt.MapClaims{"exp": now.Add(-time.Second).Unix()}), now))
	assert.True(t, tokenExpired(sign(jwt.MapClaims{"exp": now.Unix()}), now))
	assert.False(t, tokenExpired(sign(jwt.MapClaims{"exp": now.Add(time.Minute).Unix()}), now))
	assert.False(t, tokenExpired(sign(jwt.MapClaims{"sub": "x"}), now), "no exp defers to backend")
	assert.False(t, tokenExpired("not-a-jwt", now))
}

func TestWithClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.backend.IssueToken(testEmail, time.Hour)
	require.NoError(t, f.kv.Set(ctx, storage.TokenKey, token))

	later := New(nil, f.kv, WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) }))
	require.NoError(t, later.CheckAuth(ctx), "nil client is never reached for an expired token")
	assert.False(t, later.State().IsAuthenticated)

	_, err := f.kv.Get(ctx, storage.TokenKey)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
