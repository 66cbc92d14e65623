// Library API implementation of [Service]
//
// Routes follow the backend's conventional REST layout: /auth/* for the
// session endpoints, /books /authors /users /loans for catalog resources.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://localhost:5000/api"

var _ Service = (*LibraryService)(nil)

// LibraryService is the HTTP client for the remote library backend.
//
// Safe for use from multiple goroutines; the token is guarded because the
// session store swaps it while TUI fetches may be in flight.
type LibraryService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.RWMutex
	token *oauth2.Token
}

// NewLibraryService creates a library API client.
//
// requestsPerSecond bounds outgoing calls; zero or negative disables limiting.
func NewLibraryService(baseURL string, client *http.Client, requestsPerSecond float64) *LibraryService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &LibraryService{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    limiter,
	}
}

// Name returns the name of the backing service.
func (s *LibraryService) Name() string { return "library" }

// SetToken installs the bearer token used for authenticated calls.
func (s *LibraryService) SetToken(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the currently installed bearer token, or nil.
func (s *LibraryService) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// wireIdentity tolerates the backend's inconsistent identity field naming
// ("username" vs "name") and maps it into the one explicit schema.
type wireIdentity struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	JoinedAt  time.Time `json:"joined_at"`
}

func (w wireIdentity) toIdentity() (models.Identity, error) {
	identity := models.Identity{
		ID:        w.ID,
		Username:  w.Username,
		Email:     w.Email,
		Role:      w.Role,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		JoinedAt:  w.JoinedAt,
	}
	if identity.Username == "" {
		identity.Username = w.Name
	}
	if err := identity.Validate(); err != nil {
		return models.Identity{}, fmt.Errorf("malformed identity in response: %w", err)
	}
	return identity, nil
}

type wireGrant struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      wireIdentity `json:"user"`
}

func (w wireGrant) toGrant() (*Grant, error) {
	if w.Token == "" {
		return nil, fmt.Errorf("%w: response carried no token", shared.ErrAuthFailed)
	}
	identity, err := w.User.toIdentity()
	if err != nil {
		return nil, err
	}
	return &Grant{
		Token:    &oauth2.Token{AccessToken: w.Token, TokenType: "Bearer", Expiry: w.ExpiresAt},
		Identity: identity,
	}, nil
}

// apiError is the error envelope the backend uses for non-2xx responses.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e apiError) detail() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// Login exchanges credentials for a session grant.
func (s *LibraryService) Login(ctx context.Context, username, password string) (*Grant, error) {
	payload := map[string]string{"username": username, "password": password}

	var grant wireGrant
	if err := s.request(ctx, http.MethodPost, "/auth/login", payload, &grant); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, fmt.Errorf("%w: check your username and password", shared.ErrInvalidCredentials)
		}
		return nil, err
	}

	return grant.toGrant()
}

// Register creates an account and establishes a session in one call.
func (s *LibraryService) Register(ctx context.Context, reg models.Registration) (*Grant, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	var grant wireGrant
	if err := s.request(ctx, http.MethodPost, "/auth/register", reg, &grant); err != nil {
		return nil, err
	}

	return grant.toGrant()
}

// FetchCurrentProfile returns the identity behind the given token.
func (s *LibraryService) FetchCurrentProfile(ctx context.Context, token *oauth2.Token) (*models.Identity, error) {
	if token == nil || token.AccessToken == "" {
		return nil, shared.ErrNotAuthenticated
	}

	var wire wireIdentity
	if err := s.requestWithToken(ctx, http.MethodGet, "/auth/me", nil, &wire, token); err != nil {
		return nil, err
	}

	identity, err := wire.toIdentity()
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// UpdateProfile modifies the caller's own profile fields.
func (s *LibraryService) UpdateProfile(ctx context.Context, identity models.Identity) (*models.Identity, error) {
	var wire wireIdentity
	if err := s.request(ctx, http.MethodPut, "/auth/me", identity, &wire); err != nil {
		return nil, err
	}

	updated, err := wire.toIdentity()
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Logout invalidates the server-side session behind the given token.
func (s *LibraryService) Logout(ctx context.Context, token *oauth2.Token) error {
	return s.requestWithToken(ctx, http.MethodPost, "/auth/logout", nil, nil, token)
}

// RequestPasswordReset asks the backend to issue a reset code to the given email.
func (s *LibraryService) RequestPasswordReset(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return s.request(ctx, http.MethodPost, "/auth/forgot-password", payload, nil)
}

// ResetPassword redeems a reset code for a new password.
func (s *LibraryService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	payload := map[string]string{"email": email, "code": code, "password": newPassword}
	return s.request(ctx, http.MethodPost, "/auth/reset-password", payload, nil)
}

// ListBooks retrieves books, optionally filtered by a search query.
func (s *LibraryService) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	path := "/books"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}

	var books []models.Book
	if err := s.request(ctx, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook retrieves a single book by ID.
func (s *LibraryService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := s.request(ctx, http.MethodGet, "/books/"+url.PathEscape(id), nil, &book); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrBookNotFound, id)
		}
		return nil, err
	}
	return &book, nil
}

// CreateBook adds a book to the catalog.
func (s *LibraryService) CreateBook(ctx context.Context, book models.Book) (*models.Book, error) {
	if err := book.Validate(); err != nil {
		return nil, err
	}

	var created models.Book
	if err := s.request(ctx, http.MethodPost, "/books", book, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBook modifies an existing book.
func (s *LibraryService) UpdateBook(ctx context.Context, book models.Book) (*models.Book, error) {
	if book.ID == "" {
		return nil, fmt.Errorf("%w: book id is required", shared.ErrInvalidInput)
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	var updated models.Book
	if err := s.request(ctx, http.MethodPut, "/books/"+url.PathEscape(book.ID), book, &updated); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrBookNotFound, book.ID)
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteBook removes a book from the catalog.
func (s *LibraryService) DeleteBook(ctx context.Context, id string) error {
	if err := s.request(ctx, http.MethodDelete, "/books/"+url.PathEscape(id), nil, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", shared.ErrBookNotFound, id)
		}
		return err
	}
	return nil
}

// ListAuthors retrieves all authors.
func (s *LibraryService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	if err := s.request(ctx, http.MethodGet, "/authors", nil, &authors); err != nil {
		return nil, err
	}
	return authors, nil
}

// GetAuthor retrieves a single author by ID.
func (s *LibraryService) GetAuthor(ctx context.Context, id string) (*models.Author, error) {
	var author models.Author
	if err := s.request(ctx, http.MethodGet, "/authors/"+url.PathEscape(id), nil, &author); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrAuthorNotFound, id)
		}
		return nil, err
	}
	return &author, nil
}

// CreateAuthor adds an author.
func (s *LibraryService) CreateAuthor(ctx context.Context, author models.Author) (*models.Author, error) {
	if err := author.Validate(); err != nil {
		return nil, err
	}

	var created models.Author
	if err := s.request(ctx, http.MethodPost, "/authors", author, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAuthor modifies an existing author.
func (s *LibraryService) UpdateAuthor(ctx context.Context, author models.Author) (*models.Author, error) {
	if author.ID == "" {
		return nil, fmt.Errorf("%w: author id is required", shared.ErrInvalidInput)
	}
	if err := author.Validate(); err != nil {
		return nil, err
	}

	var updated models.Author
	if err := s.request(ctx, http.MethodPut, "/authors/"+url.PathEscape(author.ID), author, &updated); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrAuthorNotFound, author.ID)
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteAuthor removes an author.
func (s *LibraryService) DeleteAuthor(ctx context.Context, id string) error {
	if err := s.request(ctx, http.MethodDelete, "/authors/"+url.PathEscape(id), nil, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", shared.ErrAuthorNotFound, id)
		}
		return err
	}
	return nil
}

// ListUsers retrieves all member records. Requires a staff token.
func (s *LibraryService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.request(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser retrieves a single member record by ID.
func (s *LibraryService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.request(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser modifies a member record.
func (s *LibraryService) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID == "" {
		return nil, fmt.Errorf("%w: user id is required", shared.ErrInvalidInput)
	}

	var updated models.User
	if err := s.request(ctx, http.MethodPut, "/users/"+url.PathEscape(user.ID), user, &updated); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, user.ID)
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteUser removes a member record.
func (s *LibraryService) DeleteUser(ctx context.Context, id string) error {
	if err := s.request(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
		}
		return err
	}
	return nil
}

// ListLoans retrieves loans, optionally restricted to open ones.
func (s *LibraryService) ListLoans(ctx context.Context, activeOnly bool) ([]models.Loan, error) {
	path := "/loans"
	if activeOnly {
		path += "?status=active"
	}

	var loans []models.Loan
	if err := s.request(ctx, http.MethodGet, path, nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// OverdueLoans retrieves open loans past their due date.
func (s *LibraryService) OverdueLoans(ctx context.Context) ([]models.Loan, error) {
	var loans []models.Loan
	if err := s.request(ctx, http.MethodGet, "/loans/overdue", nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// CheckoutLoan checks one copy of a book out to a user.
func (s *LibraryService) CheckoutLoan(ctx context.Context, bookID, userID string) (*models.Loan, error) {
	if bookID == "" || userID == "" {
		return nil, fmt.Errorf("%w: book and user ids are required", shared.ErrInvalidInput)
	}

	payload := map[string]string{"book_id": bookID, "user_id": userID}

	var loan models.Loan
	if err := s.request(ctx, http.MethodPost, "/loans", payload, &loan); err != nil {
		if errors.Is(err, shared.ErrAPIRequest) && errorDetailContains(err, "no copies") {
			return nil, fmt.Errorf("%w: %s", shared.ErrNoCopiesAvailable, bookID)
		}
		return nil, err
	}
	return &loan, nil
}

// ReturnLoan closes a loan.
func (s *LibraryService) ReturnLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan models.Loan
	if err := s.request(ctx, http.MethodPatch, "/loans/"+url.PathEscape(loanID)+"/return", nil, &loan); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrLoanNotFound, loanID)
		}
		return nil, err
	}
	return &loan, nil
}

// Stats returns the aggregate counts for the dashboard.
func (s *LibraryService) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	if err := s.request(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// notFoundError marks a 404 so resource methods can translate it into their
// own sentinel without string matching.
type notFoundError struct {
	detail string
}

func (e *notFoundError) Error() string {
	if e.detail == "" {
		return "resource not found"
	}
	return e.detail
}

func isNotFound(err error) bool {
	var nf *notFoundError
	return errors.As(err, &nf)
}

func errorDetailContains(err error, substr string) bool {
	return err != nil && bytes.Contains([]byte(err.Error()), []byte(substr))
}

// request performs one JSON round-trip using the installed token.
//
// All failures come back wrapped in one of the shared sentinels: ErrTimeout
// for deadline expiry, ErrNotAuthenticated for 401/403, ErrAPIRequest for
// everything else the server or network refuses.
func (s *LibraryService) request(ctx context.Context, method, path string, payload, out any) error {
	return s.requestWithToken(ctx, method, path, payload, out, s.Token())
}

// requestWithToken is request with an explicit per-call token, used by the
// bootstrap profile fetch and best-effort logout.
func (s *LibraryService) requestWithToken(ctx context.Context, method, path string, payload, out any, token *oauth2.Token) error {
	if err := s.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != nil && token.AccessToken != "" {
		token.SetAuthHeader(req)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s", shared.ErrTimeout, method, path)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return s.statusError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// statusError maps a non-2xx response to a typed error.
func (s *LibraryService) statusError(status int, raw []byte) error {
	var envelope apiError
	_ = json.Unmarshal(raw, &envelope)
	detail := envelope.detail()

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if detail == "" {
			detail = http.StatusText(status)
		}
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, detail)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, &notFoundError{detail: detail})
	default:
		if detail == "" {
			detail = http.StatusText(status)
		}
		return fmt.Errorf("%w: %s (status %d)", shared.ErrAPIRequest, detail, status)
	}
}
