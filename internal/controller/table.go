package controller

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/cinefav/internal/models"
	"github.com/desertthunder/cinefav/internal/shared"
	"github.com/sahilm/fuzzy"
)

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 10

// Column is one table column keyed by its record field.
type Column struct {
	Key   string
	Title string
}

// Columns lists every column in display order.
var Columns = []Column{
	{Key: models.FieldTitle, Title: "Title"},
	{Key: models.FieldType, Title: "Type"},
	{Key: models.FieldDirector, Title: "Director"},
	{Key: models.FieldBudget, Title: "Budget"},
	{Key: models.FieldLocation, Title: "Location"},
	{Key: models.FieldDuration, Title: "Duration"},
	{Key: models.FieldTime, Title: "Time"},
	{Key: models.FieldImage, Title: "Image"},
}

// LookupColumn resolves a column by key or title, ignoring case.
func LookupColumn(name string) (Column, error) {
	for _, c := range Columns {
		if strings.EqualFold(c.Key, name) || strings.EqualFold(c.Title, name) {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w: unknown column %q", shared.ErrInvalidArgument, name)
}

// SortDir is a sort direction.
type SortDir int

const (
	SortNone SortDir = iota
	SortAsc
	SortDesc
)

func (d SortDir) String() string {
	switch d {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return ""
	}
}

// Table is local presentation state over the record collection. It never touches the network.
type Table struct {
	sortKey  string
	sortDir  SortDir
	hidden   map[string]bool
	filters  map[string]string
	search   string
	page     int
	pageSize int
}

// NewTable returns a table with every column visible and no sort or filters.
func NewTable(pageSize int) *Table {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Table{hidden: map[string]bool{}, filters: map[string]string{}, pageSize: pageSize}
}

// SortBy orders rows by a column. SortNone restores the received order.
func (t *Table) SortBy(key string, dir SortDir) error {
	col, err := LookupColumn(key)
	if err != nil {
		return err
	}
	t.sortKey, t.sortDir = col.Key, dir
	if dir == SortNone {
		t.sortKey = ""
	}
	return nil
}

// CycleSort steps a column through ascending, descending and unsorted.
func (t *Table) CycleSort(key string) error {
	col, err := LookupColumn(key)
	if err != nil {
		return err
	}
	if t.sortKey != col.Key {
		return t.SortBy(col.Key, SortAsc)
	}
	switch t.sortDir {
	case SortAsc:
		return t.SortBy(col.Key, SortDesc)
	default:
		return t.SortBy(col.Key, SortNone)
	}
}

// Sort returns the active sort column and direction.
func (t *Table) Sort() (string, SortDir) { return t.sortKey, t.sortDir }

// SetVisible shows or hides a column.
func (t *Table) SetVisible(key string, visible bool) error {
	col, err := LookupColumn(key)
	if err != nil {
		return err
	}
	if visible {
		delete(t.hidden, col.Key)
	} else {
		t.hidden[col.Key] = true
	}
	return nil
}

// ToggleColumn flips a column's visibility.
func (t *Table) ToggleColumn(key string) error {
	col, err := LookupColumn(key)
	if err != nil {
		return err
	}
	return t.SetVisible(col.Key, t.hidden[col.Key])
}

// VisibleColumns returns the shown columns in display order.
func (t *Table) VisibleColumns() []Column {
	cols := make([]Column, 0, len(Columns))
	for _, c := range Columns {
		if !t.hidden[c.Key] {
			cols = append(cols, c)
		}
	}
	return cols
}

// SetFilter keeps rows whose column contains value, ignoring case. An empty value removes the filter.
func (t *Table) SetFilter(key, value string) error {
	col, err := LookupColumn(key)
	if err != nil {
		return err
	}
	if value == "" {
		delete(t.filters, col.Key)
	} else {
		t.filters[col.Key] = value
	}
	t.page = 0
	return nil
}

// Filters returns a copy of the active column filters.
func (t *Table) Filters() map[string]string {
	out := make(map[string]string, len(t.filters))
	for k, v := range t.filters {
		out[k] = v
	}
	return out
}

// ClearFilters removes every column filter and the search query.
func (t *Table) ClearFilters() {
	t.filters = map[string]string{}
	t.search = ""
	t.page = 0
}

// SetSearch fuzzy matches rows against query across all visible columns.
func (t *Table) SetSearch(query string) {
	t.search = strings.TrimSpace(query)
	t.page = 0
}

func (t *Table) Search() string { return t.search }

// SetPage selects a zero-based page. It is clamped when the view is computed.
func (t *Table) SetPage(n int) {
	if n < 0 {
		n = 0
	}
	t.page = n
}

// SetPageSize changes rows per page and returns to the first page.
func (t *Table) SetPageSize(n int) {
	if n <= 0 {
		n = DefaultPageSize
	}
	t.pageSize = n
	t.page = 0
}

func (t *Table) Page() int     { return t.page }
func (t *Table) PageSize() int { return t.pageSize }

// NextPage advances when another page exists under v.
func (t *Table) NextPage(v View) {
	if v.Page+1 < v.PageCount {
		t.page = v.Page + 1
	}
}

// PrevPage steps back one page.
func (t *Table) PrevPage(v View) {
	if v.Page > 0 {
		t.page = v.Page - 1
	}
}

// View is one computed page of the table.
type View struct {
	Columns   []Column
	Rows      []models.Movie
	Page      int
	PageCount int
	Total     int // rows after filtering, across all pages
}

// Cells renders a row for the visible columns.
func (v View) Cells(m models.Movie) []string {
	cells := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		cells[i] = m.Get(c.Key)
	}
	return cells
}

// View filters, searches, sorts and paginates movies. The input is not modified.
func (t *Table) View(movies []models.Movie) View {
	rows := t.Rows(movies)

	count := (len(rows) + t.pageSize - 1) / t.pageSize
	if count == 0 {
		count = 1
	}
	page := min(t.page, count-1)

	start := min(page*t.pageSize, len(rows))
	end := min(start+t.pageSize, len(rows))

	return View{
		Columns:   t.VisibleColumns(),
		Rows:      rows[start:end],
		Page:      page,
		PageCount: count,
		Total:     len(rows),
	}
}

// Rows returns every row that passes the filters and search, sorted, without pagination.
func (t *Table) Rows(movies []models.Movie) []models.Movie {
	rows := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if t.matchesFilters(m) {
			rows = append(rows, m)
		}
	}

	if t.search != "" {
		rows = t.fuzzyFilter(rows)
	}

	if t.sortKey != "" && t.sortDir != SortNone {
		key, desc := t.sortKey, t.sortDir == SortDesc
		slices.SortStableFunc(rows, func(a, b models.Movie) int {
			c := compareField(a, b, key)
			if desc {
				return -c
			}
			return c
		})
	}
	return rows
}

func (t *Table) matchesFilters(m models.Movie) bool {
	for key, want := range t.filters {
		if !strings.Contains(strings.ToLower(m.Get(key)), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

// fuzzyFilter keeps rows matching the search query, preserving their order.
func (t *Table) fuzzyFilter(rows []models.Movie) []models.Movie {
	cols := t.VisibleColumns()
	haystack := make([]string, len(rows))
	for i, m := range rows {
		parts := make([]string, len(cols))
		for j, c := range cols {
			parts[j] = m.Get(c.Key)
		}
		haystack[i] = strings.Join(parts, " ")
	}

	matched := map[int]bool{}
	for _, match := range fuzzy.Find(t.search, haystack) {
		matched[match.Index] = true
	}

	kept := make([]models.Movie, 0, len(matched))
	for i, m := range rows {
		if matched[i] {
			kept = append(kept, m)
		}
	}
	return kept
}

func compareField(a, b models.Movie, key string) int {
	if key == models.FieldDuration {
		return cmp.Compare(a.Duration, b.Duration)
	}
	return strings.Compare(strings.ToLower(a.Get(key)), strings.ToLower(b.Get(key)))
}
