package models

import (
	"fmt"
	"time"

	"github.com/hardbound/stacks/internal/shared"
)

// Book represents a catalog entry from the library service.
type Book struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	AuthorID        string `json:"author_id"`
	AuthorName      string `json:"author_name,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	Genre           string `json:"genre,omitempty"`
	PublishedYear   int    `json:"published_year,omitempty"`
	CopiesTotal     int    `json:"copies_total"`
	CopiesAvailable int    `json:"copies_available"`
}

// Validate checks the fields the backend requires for create/update calls.
func (b *Book) Validate() error {
	if b.Title == "" {
		return fmt.Errorf("%w: book title is required", shared.ErrInvalidInput)
	}
	if b.AuthorID == "" {
		return fmt.Errorf("%w: book author is required", shared.ErrInvalidInput)
	}
	if b.CopiesTotal < 0 || b.CopiesAvailable < 0 || b.CopiesAvailable > b.CopiesTotal {
		return fmt.Errorf("%w: inconsistent copy counts", shared.ErrInvalidInput)
	}
	return nil
}

// Author represents an author record from the library service.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	BirthYear int    `json:"birth_year,omitempty"`
	BookCount int    `json:"book_count,omitempty"`
}

// Validate checks the fields the backend requires for create/update calls.
func (a *Author) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: author name is required", shared.ErrInvalidInput)
	}
	return nil
}

// User represents a member record as seen by staff accounts.
//
// Distinct from [Identity]: User is a managed catalog entity, Identity is the
// caller's own session principal.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	JoinedAt  time.Time `json:"joined_at,omitzero"`
	LoanCount int       `json:"loan_count,omitempty"`
}

// Loan represents a checkout of one book copy to one user.
type Loan struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	UserID     string     `json:"user_id"`
	Username   string     `json:"username,omitempty"`
	LoanedAt   time.Time  `json:"loaned_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// Returned reports whether the loan has been closed.
func (l *Loan) Returned() bool {
	return l.ReturnedAt != nil
}

// Overdue reports whether an open loan is past its due date at the given instant.
func (l *Loan) Overdue(now time.Time) bool {
	return !l.Returned() && now.After(l.DueAt)
}

// Stats holds the aggregate counts rendered on the dashboard.
type Stats struct {
	TotalBooks   int `json:"total_books"`
	TotalAuthors int `json:"total_authors"`
	TotalUsers   int `json:"total_users"`
	ActiveLoans  int `json:"active_loans"`
	OverdueLoans int `json:"overdue_loans"`
}

// Catalog bundles the entity listings cached as one snapshot payload.
type Catalog struct {
	Books   []Book   `json:"books"`
	Authors []Author `json:"authors"`
	Loans   []Loan   `json:"loans"`
}

// Stats derives dashboard counts from a cached catalog.
//
// TotalUsers is not derivable offline; it is carried over from the snapshot's
// stats if the sync recorded them, so offline callers use [CatalogSnapshot].
func (c *Catalog) Stats(now time.Time) Stats {
	s := Stats{
		TotalBooks:   len(c.Books),
		TotalAuthors: len(c.Authors),
	}
	for i := range c.Loans {
		if c.Loans[i].Returned() {
			continue
		}
		s.ActiveLoans++
		if c.Loans[i].Overdue(now) {
			s.OverdueLoans++
		}
	}
	return s
}
