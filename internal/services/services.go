// package services defines interface Service for interacting with the library HTTP API
package services

import (
	"context"

	"github.com/hardbound/stacks/internal/models"
	"golang.org/x/oauth2"
)

// Grant is the result of a successful login or registration: a bearer token
// plus the identity it was issued for.
type Grant struct {
	Token    *oauth2.Token
	Identity models.Identity
}

// Service defines the operations the client needs from the remote library backend.
//
// Implementations convert the backend's loosely shaped responses into the
// explicit models before returning them; callers never see raw JSON.
type Service interface {
	// Login exchanges credentials for a session grant.
	Login(ctx context.Context, username, password string) (*Grant, error)

	// Register creates an account and establishes a session in one call.
	Register(ctx context.Context, reg models.Registration) (*Grant, error)

	// FetchCurrentProfile returns the identity behind the given token.
	// The token is passed explicitly because this runs during session
	// bootstrap, before any token has been installed on the service.
	FetchCurrentProfile(ctx context.Context, token *oauth2.Token) (*models.Identity, error)

	// UpdateProfile modifies the caller's own profile fields.
	UpdateProfile(ctx context.Context, identity models.Identity) (*models.Identity, error)

	// Logout invalidates the server-side session behind the given token.
	// Best effort; the caller clears local state regardless of the outcome.
	Logout(ctx context.Context, token *oauth2.Token) error

	// RequestPasswordReset asks the backend to issue a reset code to the given email.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword redeems a reset code for a new password.
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// SetToken installs the bearer token used for authenticated calls.
	// A nil token reverts the service to unauthenticated.
	SetToken(token *oauth2.Token)

	// Token returns the currently installed bearer token, or nil.
	Token() *oauth2.Token

	// Catalog operations.
	ListBooks(ctx context.Context, query string) ([]models.Book, error)
	GetBook(ctx context.Context, id string) (*models.Book, error)
	CreateBook(ctx context.Context, book models.Book) (*models.Book, error)
	UpdateBook(ctx context.Context, book models.Book) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) error

	ListAuthors(ctx context.Context) ([]models.Author, error)
	GetAuthor(ctx context.Context, id string) (*models.Author, error)
	CreateAuthor(ctx context.Context, author models.Author) (*models.Author, error)
	UpdateAuthor(ctx context.Context, author models.Author) (*models.Author, error)
	DeleteAuthor(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListLoans(ctx context.Context, activeOnly bool) ([]models.Loan, error)
	OverdueLoans(ctx context.Context) ([]models.Loan, error)
	CheckoutLoan(ctx context.Context, bookID, userID string) (*models.Loan, error)
	ReturnLoan(ctx context.Context, loanID string) (*models.Loan, error)

	// Stats returns the aggregate counts for the dashboard.
	Stats(ctx context.Context) (*models.Stats, error)

	// Name returns the name of the backing service.
	Name() string
}
