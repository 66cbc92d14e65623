// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/services"
	"golang.org/x/oauth2"
)

// MockService is a test double for [services.Service].
//
// Auth operations dispatch to the corresponding Fn field when set; catalog
// operations serve the canned slices. Err, when set, fails every call that
// has no Fn override.
type MockService struct {
	mu    sync.Mutex
	token *oauth2.Token

	Err        error
	Books      []models.Book
	Authors    []models.Author
	Users      []models.User
	Loans      []models.Loan
	StatsValue *models.Stats

	LoginFn         func(ctx context.Context, username, password string) (*services.Grant, error)
	RegisterFn      func(ctx context.Context, reg models.Registration) (*services.Grant, error)
	ProfileFn       func(ctx context.Context, token *oauth2.Token) (*models.Identity, error)
	UpdateProfileFn func(ctx context.Context, identity models.Identity) (*models.Identity, error)
	LogoutFn        func(ctx context.Context, token *oauth2.Token) error
	ResetRequestFn  func(ctx context.Context, email string) error
	ResetFn         func(ctx context.Context, email, code, newPassword string) error
}

var _ services.Service = (*MockService)(nil)

func (m *MockService) Login(ctx context.Context, username, password string) (*services.Grant, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, username, password)
	}
	return nil, m.Err
}

func (m *MockService) Register(ctx context.Context, reg models.Registration) (*services.Grant, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, reg)
	}
	return nil, m.Err
}

func (m *MockService) FetchCurrentProfile(ctx context.Context, token *oauth2.Token) (*models.Identity, error) {
	if m.ProfileFn != nil {
		return m.ProfileFn(ctx, token)
	}
	return nil, m.Err
}

func (m *MockService) UpdateProfile(ctx context.Context, identity models.Identity) (*models.Identity, error) {
	if m.UpdateProfileFn != nil {
		return m.UpdateProfileFn(ctx, identity)
	}
	return &identity, m.Err
}

func (m *MockService) Logout(ctx context.Context, token *oauth2.Token) error {
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, token)
	}
	return m.Err
}

func (m *MockService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.ResetRequestFn != nil {
		return m.ResetRequestFn(ctx, email)
	}
	return m.Err
}

func (m *MockService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if m.ResetFn != nil {
		return m.ResetFn(ctx, email, code, newPassword)
	}
	return m.Err
}

func (m *MockService) SetToken(token *oauth2.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *MockService) Token() *oauth2.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MockService) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	return m.Books, m.Err
}

func (m *MockService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	for i := range m.Books {
		if m.Books[i].ID == id {
			return &m.Books[i], nil
		}
	}
	return nil, m.Err
}

func (m *MockService) CreateBook(ctx context.Context, book models.Book) (*models.Book, error) {
	return &book, m.Err
}

func (m *MockService) UpdateBook(ctx context.Context, book models.Book) (*models.Book, error) {
	return &book, m.Err
}

func (m *MockService) DeleteBook(ctx context.Context, id string) error { return m.Err }

func (m *MockService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return m.Authors, m.Err
}

func (m *MockService) GetAuthor(ctx context.Context, id string) (*models.Author, error) {
	for i := range m.Authors {
		if m.Authors[i].ID == id {
			return &m.Authors[i], nil
		}
	}
	return nil, m.Err
}

func (m *MockService) CreateAuthor(ctx context.Context, author models.Author) (*models.Author, error) {
	return &author, m.Err
}

func (m *MockService) UpdateAuthor(ctx context.Context, author models.Author) (*models.Author, error) {
	return &author, m.Err
}

func (m *MockService) DeleteAuthor(ctx context.Context, id string) error { return m.Err }

func (m *MockService) ListUsers(ctx context.Context) ([]models.User, error) {
	return m.Users, m.Err
}

func (m *MockService) GetUser(ctx context.Context, id string) (*models.User, error) {
	for i := range m.Users {
		if m.Users[i].ID == id {
			return &m.Users[i], nil
		}
	}
	return nil, m.Err
}

func (m *MockService) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	return &user, m.Err
}

func (m *MockService) DeleteUser(ctx context.Context, id string) error { return m.Err }

func (m *MockService) ListLoans(ctx context.Context, activeOnly bool) ([]models.Loan, error) {
	return m.Loans, m.Err
}

func (m *MockService) OverdueLoans(ctx context.Context) ([]models.Loan, error) {
	return m.Loans, m.Err
}

func (m *MockService) CheckoutLoan(ctx context.Context, bookID, userID string) (*models.Loan, error) {
	return &models.Loan{BookID: bookID, UserID: userID}, m.Err
}

func (m *MockService) ReturnLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	return &models.Loan{ID: loanID}, m.Err
}

func (m *MockService) Stats(ctx context.Context) (*models.Stats, error) {
	if m.StatsValue != nil {
		return m.StatsValue, m.Err
	}
	return &models.Stats{}, m.Err
}

func (m *MockService) Name() string { return "mock" }

// MemKeystore is an in-memory keystore double for session and theme tests.
type MemKeystore struct {
	mu       sync.Mutex
	values   map[string]string
	FailPuts bool
}

func NewMemKeystore() *MemKeystore {
	return &MemKeystore{values: map[string]string{}}
}

func (k *MemKeystore) Get(name string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.values[name]
	return v, ok, nil
}

func (k *MemKeystore) Put(name, value string) error {
	if k.FailPuts {
		return errors.New("put failed")
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.values[name] = value
	return nil
}

func (k *MemKeystore) Delete(names ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, name := range names {
		delete(k.values, name)
	}
	return nil
}

// Len returns the number of stored slots.
func (k *MemKeystore) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.values)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
