package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/repositories"
	"github.com/hardbound/stacks/internal/services"
	"github.com/hardbound/stacks/internal/shared"
	"golang.org/x/oauth2"
)

// Phase tracks whether the store has finished restoring persisted state.
//
// While Bootstrapping, no gating decision based on the principal is final;
// the route guard must render a neutral placeholder instead of redirecting.
type Phase int

const (
	PhaseBootstrapping Phase = iota
	PhaseIdle
)

func (p Phase) String() string {
	if p == PhaseBootstrapping {
		return "bootstrapping"
	}
	return "idle"
}

// DefaultTimeout bounds every remote call issued by the store.
const DefaultTimeout = 10 * time.Second

// Authenticator is the slice of the remote collaborator the store needs.
// Satisfied by [services.LibraryService].
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*services.Grant, error)
	Register(ctx context.Context, reg models.Registration) (*services.Grant, error)
	FetchCurrentProfile(ctx context.Context, token *oauth2.Token) (*models.Identity, error)
	UpdateProfile(ctx context.Context, identity models.Identity) (*models.Identity, error)
	Logout(ctx context.Context, token *oauth2.Token) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	SetToken(token *oauth2.Token)
}

// Keystore is the persisted slot storage the store writes its token and
// identity snapshot into. Satisfied by [repositories.SlotRepository].
type Keystore interface {
	Get(name string) (value string, ok bool, err error)
	Put(name, value string) error
	Delete(names ...string) error
}

// Store holds the authenticated principal and the flags the view layer keys
// off. One instance lives for the whole process.
type Store struct {
	auth    Authenticator
	keys    Keystore
	timeout time.Duration
	logger  *log.Logger

	mu          sync.Mutex
	phase       Phase
	principal   *models.Identity
	token       *oauth2.Token
	pending     bool
	lastError   string
	lastMessage string
}

// StoreOpts contains configuration options for creating a Store.
type StoreOpts struct {
	Auth     Authenticator
	Keystore Keystore
	Timeout  time.Duration
	Logger   *log.Logger
}

// NewStore creates a session store in the Bootstrapping phase.
// Call [Store.Bootstrap] once at process start to reach Idle.
func NewStore(opts StoreOpts) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Store{
		auth:    opts.Auth,
		keys:    opts.Keystore,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		phase:   PhaseBootstrapping,
	}
}

// Phase returns the current loading phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Principal returns a copy of the authenticated identity, or nil when signed out.
func (s *Store) Principal() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return nil
	}
	p := *s.principal
	return &p
}

// Authenticated reports whether a principal is currently held.
func (s *Store) Authenticated() bool {
	return s.Principal() != nil
}

// Pending reports whether a login/register/reset operation is in flight.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// LastError returns the user-facing message for the most recent failed operation.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// LastMessage returns the user-facing message for the most recent successful operation.
func (s *Store) LastMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessage
}

// ClearMessages clears error and success text without other side effects.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
	s.lastMessage = ""
}

// Bootstrap restores the session from the persisted token. Runs once; calls
// after the first are no-ops.
//
// It never fails outward: a missing token, an unreadable slot, a rejected or
// timed-out profile fetch all resolve to Idle. Failure clears the persisted
// token and identity together, because an expired token is expected, not
// exceptional.
func (s *Store) Bootstrap(ctx context.Context) {
	s.mu.Lock()
	if s.phase != PhaseBootstrapping {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	token, ok := s.loadToken()
	if !ok {
		s.finishBootstrap(nil, nil)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	identity, err := s.auth.FetchCurrentProfile(cctx, token)
	if err != nil {
		s.logger.Debug("persisted session rejected, clearing", "error", err)
		s.clearPersisted()
		s.finishBootstrap(nil, nil)
		return
	}

	// Refresh the identity snapshot; the profile may have changed since it
	// was cached.
	s.persistIdentity(*identity)
	s.finishBootstrap(identity, token)
}

// Login exchanges credentials for a session.
//
// On success the token and identity are persisted, the principal is set and
// the returned identity mirrors it. On failure the principal is untouched and
// the error text is kept in LastError. Empty credentials are the caller's bug
// and are rejected before any state changes.
func (s *Store) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrInvalidInput)
	}

	if err := s.beginOp(); err != nil {
		return nil, err
	}
	defer s.endOp()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	grant, err := s.auth.Login(cctx, username, password)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	s.establish(grant, fmt.Sprintf("Signed in as %s.", grant.Identity.Username))
	identity := grant.Identity
	return &identity, nil
}

// Register creates an account and, like the login form, establishes a session
// on success.
func (s *Store) Register(ctx context.Context, reg models.Registration) (*models.Identity, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	if err := s.beginOp(); err != nil {
		return nil, err
	}
	defer s.endOp()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	grant, err := s.auth.Register(cctx, reg)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	s.establish(grant, fmt.Sprintf("Account created. Welcome, %s.", grant.Identity.Username))
	identity := grant.Identity
	return &identity, nil
}

// Logout tears the session down locally and confirms immediately.
//
// The server-side invalidation happens in the background with its own
// deadline; its failure is logged and otherwise ignored. Calling Logout while
// already signed out re-clears and is not an error.
func (s *Store) Logout() {
	s.mu.Lock()
	token := s.token
	s.principal = nil
	s.token = nil
	s.lastError = ""
	s.lastMessage = "Signed out."
	s.mu.Unlock()

	s.auth.SetToken(nil)
	s.clearPersisted()

	if token == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.auth.Logout(ctx, token); err != nil {
			s.logger.Debug("server-side logout failed", "error", err)
		}
	}()
}

// UpdateProfile edits the signed-in principal's own profile fields and keeps
// the persisted identity snapshot in sync.
func (s *Store) UpdateProfile(ctx context.Context, identity models.Identity) (*models.Identity, error) {
	if !s.Authenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	if err := s.beginOp(); err != nil {
		return nil, err
	}
	defer s.endOp()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updated, err := s.auth.UpdateProfile(cctx, identity)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	s.persistIdentity(*updated)

	s.mu.Lock()
	s.principal = updated
	s.lastMessage = "Profile updated."
	s.mu.Unlock()

	result := *updated
	return &result, nil
}

// RequestPasswordReset asks the backend to mail a reset code. Terminates
// deterministically with either a success or an error message.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", shared.ErrInvalidInput)
	}

	if err := s.beginOp(); err != nil {
		return err
	}
	defer s.endOp()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.auth.RequestPasswordReset(cctx, email); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	s.lastMessage = "If that address is registered, a reset code is on its way."
	s.mu.Unlock()
	return nil
}

// ResetPassword redeems a reset code for a new password.
func (s *Store) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return fmt.Errorf("%w: email, code and new password are required", shared.ErrInvalidInput)
	}

	if err := s.beginOp(); err != nil {
		return err
	}
	defer s.endOp()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.auth.ResetPassword(cctx, email, code, newPassword); err != nil {
		s.recordError(err)
		return err
	}

	s.mu.Lock()
	s.lastMessage = "Password updated. You can sign in with your new password."
	s.mu.Unlock()
	return nil
}

// Invalidate tears the session down without a confirmation message, used when
// an authenticated call comes back 401 mid-session.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.principal = nil
	s.token = nil
	s.lastError = "Your session has expired. Please sign in again."
	s.lastMessage = ""
	s.mu.Unlock()

	s.auth.SetToken(nil)
	s.clearPersisted()
}

// beginOp marks an operation in flight, clearing prior messages. Returns
// shared.ErrOperationPending when one is already running.
func (s *Store) beginOp() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return shared.ErrOperationPending
	}
	s.pending = true
	s.lastError = ""
	s.lastMessage = ""
	return nil
}

func (s *Store) endOp() {
	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()
}

// establish installs a fresh grant: persists it, hands the token to the
// collaborator and publishes the principal.
func (s *Store) establish(grant *services.Grant, message string) {
	s.persistToken(grant.Token)
	s.persistIdentity(grant.Identity)
	s.auth.SetToken(grant.Token)

	identity := grant.Identity
	s.mu.Lock()
	s.principal = &identity
	s.token = grant.Token
	s.lastMessage = message
	s.mu.Unlock()
}

// finishBootstrap publishes the bootstrap outcome and transitions to Idle.
func (s *Store) finishBootstrap(identity *models.Identity, token *oauth2.Token) {
	if token != nil {
		s.auth.SetToken(token)
	}

	s.mu.Lock()
	s.principal = identity
	s.token = token
	s.phase = PhaseIdle
	s.mu.Unlock()
}

// recordError converts a failure into the user-facing string the view layer renders.
func (s *Store) recordError(err error) {
	msg := userMessage(err)

	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func (s *Store) loadToken() (*oauth2.Token, bool) {
	raw, ok, err := s.keys.Get(repositories.SlotSessionToken)
	if err != nil {
		s.logger.Warn("failed to read persisted token", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil || token.AccessToken == "" {
		s.logger.Warn("persisted token is malformed, clearing", "error", err)
		s.clearPersisted()
		return nil, false
	}

	return &token, true
}

func (s *Store) persistToken(token *oauth2.Token) {
	data, err := json.Marshal(token)
	if err != nil {
		s.logger.Warn("failed to serialize token", "error", err)
		return
	}
	if err := s.keys.Put(repositories.SlotSessionToken, string(data)); err != nil {
		s.logger.Warn("failed to persist token", "error", err)
	}
}

func (s *Store) persistIdentity(identity models.Identity) {
	data, err := json.Marshal(identity)
	if err != nil {
		s.logger.Warn("failed to serialize identity", "error", err)
		return
	}
	if err := s.keys.Put(repositories.SlotSessionIdentity, string(data)); err != nil {
		s.logger.Warn("failed to persist identity", "error", err)
	}
}

func (s *Store) clearPersisted() {
	if err := s.keys.Delete(repositories.SlotSessionToken, repositories.SlotSessionIdentity); err != nil {
		s.logger.Warn("failed to clear persisted session", "error", err)
	}
}

// userMessage maps operation failures to the inline text shown on the form.
func userMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, shared.ErrTimeout):
		return "The request timed out. Please try again."
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "You are not signed in."
	case errors.Is(err, shared.ErrAPIRequest):
		return "Could not reach the library service. Please try again."
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}
