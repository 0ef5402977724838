// Package sessionservice owns the authenticated identity and its bearer token.
package sessionservice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-petr/convergex-pay/internal/apiclient"
	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/internal/storage"
	"github.com/go-petr/convergex-pay/pkg/tokenpkg"
	"github.com/go-petr/convergex-pay/pkg/web"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Default failure messages.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
)

// Backend provides the authentication endpoints needed by the session store.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type Backend interface {
	Login(ctx context.Context, email, password string) (domain.AuthResponse, error)
	Register(ctx context.Context, displayName, email, password string) (domain.AuthResponse, error)
}

// Navigator moves the user to the public entry point.
type Navigator interface {
	ToLogin()
}

// Result is the outcome of Login and Register.
type Result struct {
	Success bool
	Error   string
}

// Option configures a Service.
type Option func(*Service)

// WithNavigator sets where HandleAuthFailure sends the user.
func WithNavigator(n Navigator) Option {
	return func(s *Service) {
		s.navigator = n
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the session store.
type Service struct {
	backend   Backend
	store     storage.Store
	navigator Navigator
	validate  *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	session  domain.Session
	loading  bool
	onLogout []func()
}

// New returns a session store hydrated from store.
func New(b Backend, store storage.Store, opts ...Option) *Service {
	s := &Service{
		backend:  b,
		store:    store,
		validate: validator.New(),
		logger:   zerolog.Nop(),
		now:      time.Now,
		loading:  true,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.hydrate()

	return s
}

func (s *Service) hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() { s.loading = false }()

	token, hasToken := s.store.Get(storage.KeyToken)
	rawUser, hasUser := s.store.Get(storage.KeyUser)

	if !hasToken && !hasUser {
		return
	}

	var user domain.User

	switch {
	case !hasToken || !hasUser || token == "":
		s.logger.Warn().Bool("token", hasToken).Bool("user", hasUser).Msg("dropping half persisted session")
	case json.Unmarshal([]byte(rawUser), &user) != nil || user.IsZero():
		s.logger.Warn().Msg("dropping session with unreadable user")
	case s.expired(token):
		s.logger.Info().Msg("dropping expired session")
	default:
		s.session = domain.Session{User: user, Token: token}
		return
	}

	if err := s.store.Remove(storage.KeyToken, storage.KeyUser); err != nil {
		s.logger.Error().Err(err).Send()
	}
}

func (s *Service) expired(token string) bool {
	exp, ok := tokenpkg.ExpiresAt(token)
	return ok && !s.now().Before(exp)
}

// Loading reports whether the persisted session is still being read.
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading
}

// Token returns the bearer token, empty when logged out.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.Token
}

// User returns the current identity.
func (s *Service) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session.User, s.session.Token != ""
}

// Session returns a copy of the current session.
func (s *Service) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session
}

// IsAuthenticated reports whether a session exists.
func (s *Service) IsAuthenticated() bool {
	return s.Token() != ""
}

// OnLogout registers fn to run after every logout.
func (s *Service) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onLogout = append(s.onLogout, fn)
}

// Login authenticates with email and password.
func (s *Service) Login(ctx context.Context, email, password string) Result {
	l := s.loggerFrom(ctx)

	if err := s.validate.Struct(domain.Credentials{Email: email, Password: password}); err != nil {
		l.Info().Err(err).Send()
		return Result{Error: validationMessage(err)}
	}

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		l.Info().Err(err).Send()
		return Result{Error: failureMessage(err, MsgLoginFailed)}
	}

	return s.establish(l, res, MsgLoginFailed)
}

// Register creates an account and logs into it.
func (s *Service) Register(ctx context.Context, displayName, email, password string) Result {
	l := s.loggerFrom(ctx)

	form := domain.Registration{Name: displayName, Email: email, Password: password}
	if err := s.validate.Struct(form); err != nil {
		l.Info().Err(err).Send()
		return Result{Error: validationMessage(err)}
	}

	res, err := s.backend.Register(ctx, displayName, email, password)
	if err != nil {
		l.Info().Err(err).Send()
		return Result{Error: failureMessage(err, MsgRegistrationFailed)}
	}

	return s.establish(l, res, MsgRegistrationFailed)
}

func (s *Service) establish(l zerolog.Logger, res domain.AuthResponse, fallback string) Result {
	if res.Token == "" || res.User.IsZero() {
		l.Warn().Msg("backend returned an incomplete session")
		return Result{Error: fallback}
	}

	rawUser, err := json.Marshal(res.User)
	if err != nil {
		l.Error().Err(err).Send()
		return Result{Error: fallback}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(res.Token, string(rawUser)); err != nil {
		l.Error().Err(err).Send()

		if err := s.store.Remove(storage.KeyToken, storage.KeyUser); err != nil {
			l.Error().Err(err).Send()
		}

		return Result{Error: fallback}
	}

	s.session = domain.Session{User: res.User, Token: res.Token}

	return Result{Success: true}
}

func (s *Service) persist(token, rawUser string) error {
	if err := s.store.Set(storage.KeyToken, token); err != nil {
		return err
	}

	return s.store.Set(storage.KeyUser, rawUser)
}

// Logout clears the session from memory and storage. It is idempotent.
func (s *Service) Logout() {
	s.mu.Lock()

	s.session = domain.Session{}

	if err := s.store.Remove(storage.KeyToken, storage.KeyUser); err != nil {
		s.logger.Error().Err(err).Send()
	}

	hooks := append([]func(){}, s.onLogout...)

	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// HandleAuthFailure logs out and sends the user to the login view.
func (s *Service) HandleAuthFailure() {
	s.logger.Info().Msg("session rejected by backend")

	s.Logout()

	if s.navigator != nil {
		s.navigator.ToLogin()
	}
}

func (s *Service) loggerFrom(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}

	return s.logger
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return web.GetErrorMsg(ve).Message
	}

	return domain.ErrInvalidCredentials.Error()
}

// failureMessage prefers the backend message of a 4xx answer.
func failureMessage(err error, fallback string) string {
	if !errors.Is(err, domain.ErrClientRequest) {
		return fallback
	}

	if msg := apiclient.MessageOf(err); msg != "" && msg != apiclient.MsgGeneric {
		return msg
	}

	return fallback
}
