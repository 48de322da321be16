package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Letter bindings only apply on the table. Inside forms the letters go to the focused input.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	next     key.Binding
	prev     key.Binding
	submit   key.Binding
	back     key.Binding
	yes      key.Binding
	no       key.Binding
	toggle   key.Binding
	register key.Binding
	add      key.Binding
	edit     key.Binding
	remove   key.Binding
	view     key.Binding
	open     key.Binding
	refresh  key.Binding
	search   key.Binding
	filter   key.Binding
	clear    key.Binding
	sort     key.Binding
	column   key.Binding
	hide     key.Binding
	nextPage key.Binding
	prevPage key.Binding
	logout   key.Binding
	more     key.Binding
	quit     key.Binding
	exit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		toggle:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "remember me")),
		register: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "register")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		remove:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		view:     key.NewBinding(key.WithKeys("enter", "v"), key.WithHelp("enter", "view")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open poster")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
		clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
		column:   key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[/]", "pick column")),
		hide:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show/hide column")),
		nextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		prevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		more:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		exit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.add, k.edit, k.remove, k.view, k.search, k.more, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.prevPage, k.nextPage},
		{k.add, k.edit, k.remove, k.view, k.refresh},
		{k.search, k.filter, k.clear, k.sort, k.column, k.hide},
		{k.logout, k.more, k.quit},
	}
}
