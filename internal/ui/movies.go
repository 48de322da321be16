package ui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinefav/internal/controller"
	"github.com/desertthunder/cinefav/internal/formatter"
	"github.com/desertthunder/cinefav/internal/models"
)

var columnWidths = map[string]int{
	models.FieldTitle:    24,
	models.FieldType:     9,
	models.FieldDirector: 18,
	models.FieldBudget:   10,
	models.FieldLocation: 16,
	models.FieldDuration: 9,
	models.FieldTime:     10,
	models.FieldImage:    20,
}

// enterMovies swaps in a fresh controller and returns the command that loads the collection.
func (m *Model) enterMovies() tea.Cmd {
	if m.ctrl != nil {
		m.ctrl.Detach()
	}

	opts := m.opts.Controller
	opts.Catalog = m.opts.Catalog
	opts.Logger = m.logger

	m.view = MoviesView
	m.login, m.register, m.authInputs = nil, nil, nil
	m.ctrl = controller.New(opts)
	m.scheduled = 0
	m.column = 0
	m.editing = editNone
	m.status = ""
	m.search.SetValue("")
	m.table = table.New(table.WithFocused(true), table.WithHeight(m.ctrl.Table().PageSize()+1))
	m.syncTable()

	return m.run(m.ctrl.Load())
}

// logout forgets the token and returns to the login form.
func (m *Model) logout() {
	if err := m.opts.Credentials.Clear(m.ctx); err != nil {
		m.logger.Error("failed to clear credentials", "err", err)
	}
	m.ctrl.Detach()
	m.ctrl = nil
	m.notice = ""
	m.enterLogin()
}

// selected returns the record under the table cursor.
func (m *Model) selected() (models.Movie, bool) {
	rows := m.ctrl.View().Rows
	i := m.table.Cursor()
	if i < 0 || i >= len(rows) {
		return models.Movie{}, false
	}
	return rows[i], true
}

// sortColumn is the column picked for sort, filter and visibility keys.
func (m *Model) sortColumn() controller.Column {
	return controller.Columns[m.column]
}

func (m *Model) handleMoviesKeys(msg tea.KeyMsg) tea.Cmd {
	switch m.ctrl.Modal().Kind {
	case controller.ModalForm:
		return m.handleFormKeys(msg)
	case controller.ModalDelete:
		return m.handleDeleteKeys(msg)
	case controller.ModalView:
		return m.handleViewKeys(msg)
	}

	if m.editing != editNone {
		return m.handleEditingKeys(msg)
	}

	m.status = ""
	tbl := m.ctrl.Table()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.add):
		if err := m.ctrl.OpenAdd(); err == nil {
			m.openForm()
		}
	case key.Matches(msg, m.keys.edit):
		if rec, ok := m.selected(); ok && m.ctrl.OpenEdit(rec) == nil {
			m.openForm()
		}
	case key.Matches(msg, m.keys.remove):
		if rec, ok := m.selected(); ok {
			_ = m.ctrl.OpenDelete(rec.ID)
		}
	case key.Matches(msg, m.keys.view):
		if rec, ok := m.selected(); ok {
			_ = m.ctrl.OpenView(rec)
		}
	case key.Matches(msg, m.keys.refresh):
		return m.run(m.ctrl.Load())
	case key.Matches(msg, m.keys.search):
		m.editing = editSearch
		m.search.Focus()
		return nil
	case key.Matches(msg, m.keys.filter):
		m.editing = editFilter
		m.filter.SetValue(tbl.Filters()[m.sortColumn().Key])
		m.filter.CursorEnd()
		m.filter.Focus()
		return nil
	case key.Matches(msg, m.keys.clear):
		tbl.ClearFilters()
		m.search.SetValue("")
	case key.Matches(msg, m.keys.sort):
		_ = tbl.CycleSort(m.sortColumn().Key)
	case key.Matches(msg, m.keys.column):
		delta := 1
		if msg.String() == "[" {
			delta = -1
		}
		m.column = wrapFocus(m.column, delta, len(controller.Columns))
	case key.Matches(msg, m.keys.hide):
		_ = tbl.ToggleColumn(m.sortColumn().Key)
	case key.Matches(msg, m.keys.nextPage):
		tbl.NextPage(m.ctrl.View())
		m.table.SetCursor(0)
	case key.Matches(msg, m.keys.prevPage):
		tbl.PrevPage(m.ctrl.View())
		m.table.SetCursor(0)
	case key.Matches(msg, m.keys.logout):
		m.logout()
		return nil
	case key.Matches(msg, m.keys.more):
		m.help.ShowAll = !m.help.ShowAll
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}

	m.syncTable()
	return nil
}

// handleEditingKeys routes keys to the search or column filter input.
func (m *Model) handleEditingKeys(msg tea.KeyMsg) tea.Cmd {
	tbl := m.ctrl.Table()

	if m.editing == editSearch {
		if key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.submit) {
			m.editing = editNone
			m.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != tbl.Search() {
			tbl.SetSearch(m.search.Value())
			m.table.SetCursor(0)
			m.syncTable()
		}
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.editing = editNone
		m.filter.Blur()
		return nil
	case key.Matches(msg, m.keys.submit):
		m.editing = editNone
		m.filter.Blur()
		_ = tbl.SetFilter(m.sortColumn().Key, strings.TrimSpace(m.filter.Value()))
		m.table.SetCursor(0)
		m.syncTable()
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return cmd
}

// syncTable rebuilds the table widget from the controller's current page.
func (m *Model) syncTable() {
	if m.ctrl == nil {
		return
	}
	v := m.ctrl.View()
	sortKey, dir := m.ctrl.Table().Sort()

	cols := make([]table.Column, len(v.Columns))
	for i, c := range v.Columns {
		title := c.Title
		if c.Key == sortKey {
			if dir == controller.SortAsc {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		cols[i] = table.Column{Title: title, Width: columnWidths[c.Key]}
	}

	rows := make([]table.Row, len(v.Rows))
	for i, rec := range v.Rows {
		cells := make(table.Row, len(v.Columns))
		for j, c := range v.Columns {
			cells[j] = cellText(rec, c.Key)
		}
		rows[i] = cells
	}

	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	// SetCursor on an empty table leaves the cursor at -1; pull it back once rows exist.
	if c := m.table.Cursor(); len(rows) > 0 && (c < 0 || c >= len(rows)) {
		m.table.SetCursor(min(max(c, 0), len(rows)-1))
	}
}

func cellText(rec models.Movie, field string) string {
	switch field {
	case models.FieldDuration:
		return formatter.FormatDuration(rec.Duration)
	case models.FieldImage:
		switch {
		case rec.Image == "":
			return "-"
		case strings.HasPrefix(rec.Image, "data:"):
			return "(pending)"
		default:
			return path.Base(rec.Image)
		}
	default:
		return rec.Get(field)
	}
}

func (m *Model) renderMovies() string {
	if m.ctrl.Modal().Active() {
		return m.center(m.renderModal())
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Favorites"))
	b.WriteString("\n")

	v := m.ctrl.View()
	switch {
	case !m.ctrl.Loaded() && m.ctrl.Loading():
		b.WriteString(styles.warn.Render("Loading movies...") + "\n")
	case m.ctrl.LoadError() != nil:
		fmt.Fprintf(&b, "%s\n", styles.err.Render(fmt.Sprintf("Could not load movies: %v (press r to retry)", m.ctrl.LoadError())))
	}

	if m.ctrl.Loaded() && v.Total == 0 {
		b.WriteString(styles.help.Render("No data available") + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}

	b.WriteString(m.renderTableStatus(v) + "\n")

	switch m.editing {
	case editSearch:
		b.WriteString("search: " + m.search.View() + "\n")
	case editFilter:
		fmt.Fprintf(&b, "filter %s: %s\n", m.sortColumn().Title, m.filter.View())
	}
	if m.status != "" {
		b.WriteString(styles.warn.Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTableStatus(v controller.View) string {
	tbl := m.ctrl.Table()
	parts := []string{
		fmt.Sprintf("page %d/%d", v.Page+1, v.PageCount),
		fmt.Sprintf("%d of %d", v.Total, len(m.ctrl.Movies())),
		fmt.Sprintf("column: %s", m.sortColumn().Title),
	}
	if q := tbl.Search(); q != "" {
		parts = append(parts, fmt.Sprintf("search: %q", q))
	}
	for _, c := range controller.Columns {
		if f, ok := tbl.Filters()[c.Key]; ok {
			parts = append(parts, fmt.Sprintf("%s~%q", c.Title, f))
		}
	}
	return styles.help.Render(strings.Join(parts, " • "))
}
