// package formatter provides functions to export catalog data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/shared"
)

// BooksToCSV converts a book listing to CSV with columns: ID, Title, Author, ISBN, Genre, Year, Available, Total
func BooksToCSV(books []models.Book) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Author", "ISBN", "Genre", "Year", "Available", "Total"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, book := range books {
		record := []string{
			book.ID,
			book.Title,
			book.AuthorName,
			book.ISBN,
			book.Genre,
			strconv.Itoa(book.PublishedYear),
			strconv.Itoa(book.CopiesAvailable),
			strconv.Itoa(book.CopiesTotal),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// CatalogToMarkdown converts a catalog snapshot payload to a Markdown report.
func CatalogToMarkdown(payload *models.SnapshotPayload) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Catalog — %s\n\n", shared.FormatDate(payload.FetchedAt)))

	buf.WriteString(fmt.Sprintf("**Books**: %d\n", payload.Stats.TotalBooks))
	buf.WriteString(fmt.Sprintf("**Authors**: %d\n", payload.Stats.TotalAuthors))
	buf.WriteString(fmt.Sprintf("**Active loans**: %d\n", payload.Stats.ActiveLoans))
	buf.WriteString(fmt.Sprintf("**Overdue**: %d\n\n", payload.Stats.OverdueLoans))

	buf.WriteString("## Books\n\n")
	for i, book := range payload.Catalog.Books {
		authorPart := ""
		if book.AuthorName != "" {
			authorPart = fmt.Sprintf(" — %s", book.AuthorName)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s (%d/%d available)\n", i+1, book.Title, authorPart, book.CopiesAvailable, book.CopiesTotal))
	}

	if len(payload.Catalog.Loans) > 0 {
		now := time.Now()
		buf.WriteString("\n## Open Loans\n\n")
		for _, loan := range payload.Catalog.Loans {
			if loan.Returned() {
				continue
			}
			marker := ""
			if loan.Overdue(now) {
				marker = " **OVERDUE**"
			}
			buf.WriteString(fmt.Sprintf("- %s → %s, due %s%s\n", loan.BookTitle, loan.Username, shared.FormatDate(loan.DueAt), marker))
		}
	}

	return buf.Bytes(), nil
}

// CatalogToText converts a catalog snapshot payload to plain text.
func CatalogToText(payload *models.SnapshotPayload) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Catalog as of %s\n", shared.FormatDate(payload.FetchedAt)))
	buf.WriteString(fmt.Sprintf("Books: %d  Authors: %d  Active loans: %d  Overdue: %d\n\n",
		payload.Stats.TotalBooks, payload.Stats.TotalAuthors, payload.Stats.ActiveLoans, payload.Stats.OverdueLoans))

	for i, book := range payload.Catalog.Books {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, book.AuthorName, book.Title))
	}

	return buf.Bytes(), nil
}

// CatalogToJSON converts a catalog snapshot payload to indented JSON.
func CatalogToJSON(payload *models.SnapshotPayload) ([]byte, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return data, nil
}
