package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
)

var (
	_ list.Item = bookItem{}
	_ list.Item = loanItem{}
)

// bookItem wraps [models.Book] to implement [list.Item].
type bookItem struct {
	book models.Book
}

func (i bookItem) FilterValue() string { return i.book.Title }
func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string {
	desc := fmt.Sprintf("%d/%d available", i.book.CopiesAvailable, i.book.CopiesTotal)
	if i.book.AuthorName != "" {
		desc = fmt.Sprintf("%s • %s", i.book.AuthorName, desc)
	}
	if i.book.Genre != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.book.Genre)
	}
	return desc
}

// loanItem wraps [models.Loan] to implement [list.Item].
type loanItem struct {
	loan models.Loan
	now  time.Time
}

func (i loanItem) FilterValue() string { return i.loan.BookTitle }
func (i loanItem) Title() string       { return i.loan.BookTitle }
func (i loanItem) Description() string {
	desc := fmt.Sprintf("due %s", shared.FormatDate(i.loan.DueAt))
	if i.loan.Username != "" {
		desc = fmt.Sprintf("%s • %s", i.loan.Username, desc)
	}
	if i.loan.Overdue(i.now) {
		desc += " • OVERDUE"
	} else if i.loan.Returned() {
		desc += " • " + shared.LoanStatusString(true)
	}
	return desc
}
