package listing

import (
	"fmt"

	"github.com/rbacctl/rbacctl/internal/record"
)

// RowsPerPageAll is the page size sentinel meaning "every record on one page".
const RowsPerPageAll = 0

// DefaultRowsPerPage is used when no page size is configured.
const DefaultRowsPerPage = 10

// RowsPerPageChoices is the cycle offered by interactive views.
var RowsPerPageChoices = []int{10, 25, 50, RowsPerPageAll}

// TotalPages returns the number of pages for n records. It is never below 1.
func TotalPages(n, rowsPerPage int) int {
	if rowsPerPage <= RowsPerPageAll || n <= 0 {
		return 1
	}
	return (n + rowsPerPage - 1) / rowsPerPage
}

// Bounds returns the [start, end) window of page currentPage, clamped to n.
// A page past the end yields start == end.
func Bounds(n, currentPage, rowsPerPage int) (int, int) {
	if rowsPerPage <= RowsPerPageAll {
		return 0, n
	}
	if currentPage < 1 {
		currentPage = 1
	}
	start := (currentPage - 1) * rowsPerPage
	if start > n {
		start = n
	}
	end := start + rowsPerPage
	if end > n {
		end = n
	}
	return start, end
}

// Page returns the window of filtered for currentPage.
func Page(filtered []record.Record, currentPage, rowsPerPage int) []record.Record {
	start, end := Bounds(len(filtered), currentPage, rowsPerPage)
	return filtered[start:end]
}

// Describe renders the "Showing X to Y of Z Records" footer.
func Describe(n, currentPage, rowsPerPage int) string {
	if n <= 0 {
		return "Showing 0 of 0 Records"
	}
	if rowsPerPage <= RowsPerPageAll {
		return fmt.Sprintf("Showing 1 to %d of %d Records", n, n)
	}
	if currentPage < 1 {
		currentPage = 1
	}
	start := (currentPage-1)*rowsPerPage + 1
	end := min(currentPage*rowsPerPage, n)
	return fmt.Sprintf("Showing %d to %d of %d Records", start, end, n)
}
