// Package auth holds the authentication session and its persistence.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/raymonds/internal/clients/raymonds"
	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/interfaces"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/storage"
	"github.com/bobmcallan/raymonds/internal/stores"
)

// State is an immutable snapshot of the session.
type State struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Store owns the auth session. Token presence never implies validity; only
// Login or a successful CheckAuth sets IsAuthenticated.
type Store struct {
	client interfaces.AuthClient
	kv     interfaces.KeyValueStore
	logger *common.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	version   uint64
	listeners stores.Listeners[State]
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to check token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(logger *common.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func New(client interfaces.AuthClient, kv interfaces.KeyValueStore, opts ...Option) *Store {
	s := &Store{
		client: client,
		kv:     kv,
		logger: common.NewSilentLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every state change.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.listeners.Subscribe(fn)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Token returns the current bearer token, which may not yet be validated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

func (s *Store) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Store) set(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	s.version++
	version, st := s.version, s.snapshot()
	s.mu.Unlock()

	s.listeners.Publish(version, st)
}

// Login exchanges credentials for a token, persists it, then loads the
// profile. A failure at either step leaves the session unauthenticated with
// a displayable Error. The error is also returned.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	s.set(func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})

	token, err := s.client.Login(ctx, creds)
	if err != nil {
		s.logger.Debug().Err(err).Str("email", creds.Email).Msg("Login rejected")
		s.fail(err)
		return err
	}

	if err := s.kv.Set(ctx, storage.TokenKey, token.AccessToken); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist access token")
	}

	user, err := s.client.Me(ctx, token.AccessToken)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Profile fetch after login failed")
		s.clearPersisted(ctx)
		s.fail(err)
		return err
	}

	s.authenticate(ctx, token.AccessToken, user)
	s.logger.Info().Str("user", user.Username).Msg("Logged in")
	return nil
}

// Register creates an account without touching the session.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.client.Register(ctx, req)
}

// Logout clears persisted state and resets the session.
func (s *Store) Logout(ctx context.Context) {
	s.clearPersisted(ctx)
	s.set(func(st *State) {
		*st = State{}
	})
}

// CheckAuth revalidates the persisted token. A missing, unreadable, locally
// expired or rejected token resets the session without an error. A transport
// failure keeps the token so a later check can succeed, and sets Error.
func (s *Store) CheckAuth(ctx context.Context) error {
	token := s.Token()
	var restored *models.User
	if token == "" {
		sess, err := storage.LoadSession(ctx, s.kv)
		switch {
		case err == nil:
			token, restored = sess.Token, sess.User
		case errors.Is(err, storage.ErrSessionSchema):
			s.logger.Warn().Err(err).Msg("Discarding unreadable persisted session")
			s.resetSilently(ctx)
			return nil
		case errors.Is(err, storage.ErrNotFound):
		default:
			s.logger.Warn().Err(err).Msg("Failed to read persisted session")
		}
	}

	if token == "" {
		s.resetSilently(ctx)
		return nil
	}

	if tokenExpired(token, s.now()) {
		s.logger.Debug().Msg("Persisted token expired")
		s.resetSilently(ctx)
		return nil
	}

	s.set(func(st *State) {
		st.Token = token
		if st.User == nil {
			st.User = restored
		}
		st.IsLoading = true
		st.Error = ""
	})

	user, err := s.client.Me(ctx, token)
	if err != nil {
		if raymonds.IsUnauthorized(err) {
			s.logger.Debug().Msg("Persisted token rejected")
			s.resetSilently(ctx)
			return nil
		}
		s.logger.Warn().Err(err).Msg("Session revalidation failed")
		s.set(func(st *State) {
			st.IsLoading = false
			st.IsAuthenticated = false
			st.Error = raymonds.UserMessage(err)
		})
		return err
	}

	s.authenticate(ctx, token, user)
	return nil
}

func (s *Store) ClearError() {
	s.set(func(st *State) {
		st.Error = ""
	})
}

func (s *Store) authenticate(ctx context.Context, token string, user *models.User) {
	if err := storage.SaveSession(ctx, s.kv, storage.Session{User: user, Token: token, IsAuthenticated: true}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist session")
	}
	s.set(func(st *State) {
		*st = State{User: user, Token: token, IsAuthenticated: true}
	})
}

func (s *Store) fail(err error) {
	s.set(func(st *State) {
		*st = State{Error: raymonds.UserMessage(err)}
	})
}

func (s *Store) resetSilently(ctx context.Context) {
	s.clearPersisted(ctx)
	s.set(func(st *State) {
		*st = State{}
	})
}

func (s *Store) clearPersisted(ctx context.Context) {
	if err := storage.ClearSession(ctx, s.kv); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear persisted session")
	}
}

// tokenExpired reads the unverified exp claim. Tokens that are not JWTs or
// carry no exp are left for the backend to judge.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
