package listing

import (
	"github.com/rbacctl/rbacctl/internal/record"
)

// Window is the derived, renderable state of a View over a collection.
type Window struct {
	Filtered    []record.Record
	Rows        []record.Record
	CurrentPage int
	TotalPages  int
	RowsPerPage int
	Info        string
}

// View holds the mutable list state of one screen: criteria, current page and
// page size. Changing criteria or page size returns to the first page.
type View struct {
	matcher     Matcher
	criteria    Criteria
	currentPage int
	rowsPerPage int
}

func NewView(m Matcher, rowsPerPage int) *View {
	if rowsPerPage < 0 {
		rowsPerPage = DefaultRowsPerPage
	}
	return &View{
		matcher:     m,
		currentPage: 1,
		rowsPerPage: rowsPerPage,
		criteria:    Criteria{Selectors: map[string]string{}},
	}
}

func (v *View) Criteria() Criteria {
	return v.criteria
}

func (v *View) CurrentPage() int {
	return v.currentPage
}

func (v *View) RowsPerPage() int {
	return v.rowsPerPage
}

func (v *View) SetCriteria(c Criteria) {
	v.criteria = c
	v.currentPage = 1
}

func (v *View) SetSearch(term string) {
	v.criteria.Search = term
	v.currentPage = 1
}

func (v *View) SetSelector(name, value string) {
	v.criteria = v.criteria.WithSelector(name, value)
	v.currentPage = 1
}

func (v *View) SetRowsPerPage(n int) {
	if n < 0 {
		n = RowsPerPageAll
	}
	v.rowsPerPage = n
	v.currentPage = 1
}

// CycleRowsPerPage moves to the next entry of RowsPerPageChoices.
func (v *View) CycleRowsPerPage() int {
	next := RowsPerPageChoices[0]
	for i, n := range RowsPerPageChoices {
		if n == v.rowsPerPage {
			next = RowsPerPageChoices[(i+1)%len(RowsPerPageChoices)]
			break
		}
	}
	v.SetRowsPerPage(next)
	return next
}

// GoToPage sets the current page, clamped to [1, totalPages] for collection.
func (v *View) GoToPage(collection []record.Record, page int) int {
	total := TotalPages(len(v.matcher.Filter(collection, v.criteria)), v.rowsPerPage)
	v.currentPage = clamp(page, 1, total)
	return v.currentPage
}

func (v *View) NextPage(collection []record.Record) int {
	return v.GoToPage(collection, v.currentPage+1)
}

func (v *View) PrevPage(collection []record.Record) int {
	return v.GoToPage(collection, v.currentPage-1)
}

// Window derives the filtered collection and current page window.
func (v *View) Window(collection []record.Record) Window {
	filtered := v.matcher.Filter(collection, v.criteria)
	return Window{
		Filtered:    filtered,
		Rows:        Page(filtered, v.currentPage, v.rowsPerPage),
		CurrentPage: v.currentPage,
		TotalPages:  TotalPages(len(filtered), v.rowsPerPage),
		RowsPerPage: v.rowsPerPage,
		Info:        Describe(len(filtered), v.currentPage, v.rowsPerPage),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
