package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinefav/internal/controller"
	"github.com/desertthunder/cinefav/internal/formatter"
	"github.com/desertthunder/cinefav/internal/models"
)

// formFields are the add/edit dialog fields in display order. The image slot takes a file path.
var formFields = []string{
	models.FieldTitle,
	models.FieldType,
	models.FieldDirector,
	models.FieldBudget,
	models.FieldLocation,
	models.FieldDuration,
	models.FieldTime,
	models.FieldImage,
}

var formLabels = map[string]string{
	models.FieldTitle:    "Title",
	models.FieldType:     "Type",
	models.FieldDirector: "Director",
	models.FieldBudget:   "Budget",
	models.FieldLocation: "Location",
	models.FieldDuration: "Duration",
	models.FieldTime:     "Time",
	models.FieldImage:    "Image",
}

// kindChoices includes the unselected state.
var kindChoices = append([]string{""}, models.Kinds...)

// openForm builds inputs from the record the controller just opened.
func (m *Model) openForm() {
	rec := m.ctrl.Form()
	m.formInputs = make([]textinput.Model, len(formFields))
	for i, name := range formFields {
		switch name {
		case models.FieldImage:
			m.formInputs[i] = newInput("path to an image file", false)
		case models.FieldDuration:
			m.formInputs[i] = newInput("Enter duration (mins)", false)
			if rec.Duration > 0 {
				m.formInputs[i].SetValue(rec.Get(name))
			}
		default:
			m.formInputs[i] = newInput("Enter "+strings.ToLower(formLabels[name]), false)
			m.formInputs[i].SetValue(rec.Get(name))
		}
	}
	m.formFocus = 0
	m.attached = ""
	focusInput(m.formInputs, 0)
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	field := formFields[m.formFocus]

	switch {
	case key.Matches(msg, m.keys.back):
		_ = m.ctrl.Close()
		m.formInputs = nil
		m.syncTable()
		return nil
	case key.Matches(msg, m.keys.next):
		m.formFocus = wrapFocus(m.formFocus, 1, len(formFields))
		focusInput(m.formInputs, m.formFocus)
		return nil
	case key.Matches(msg, m.keys.prev):
		m.formFocus = wrapFocus(m.formFocus, -1, len(formFields))
		focusInput(m.formInputs, m.formFocus)
		return nil
	case key.Matches(msg, m.keys.submit):
		return m.submitForm()
	}

	if m.ctrl.Submitting() {
		return nil
	}

	if field == models.FieldType {
		m.cycleKind(msg)
		return nil
	}

	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	if field != models.FieldImage {
		_ = m.ctrl.SetField(field, m.formInputs[m.formFocus].Value())
	}
	return cmd
}

// cycleKind steps the type choice with left, right or space.
func (m *Model) cycleKind(msg tea.KeyMsg) {
	delta := 0
	switch msg.String() {
	case "right", " ", "l":
		delta = 1
	case "left", "h":
		delta = -1
	default:
		return
	}

	current := 0
	for i, k := range kindChoices {
		if k == m.ctrl.Form().Type {
			current = i
		}
	}
	next := kindChoices[wrapFocus(current, delta, len(kindChoices))]
	if m.ctrl.SetField(models.FieldType, next) == nil {
		m.formInputs[m.formFocus].SetValue(next)
	}
}

// submitForm attaches a newly chosen image, then asks the controller for the write.
func (m *Model) submitForm() tea.Cmd {
	p := strings.TrimSpace(m.formInputs[len(formFields)-1].Value())
	if p != "" && p != m.attached {
		data, err := m.opts.ReadFile(p)
		if err != nil {
			m.status = fmt.Sprintf("Could not read image: %v", err)
			return nil
		}
		if err := m.ctrl.AttachImage(models.NewImage(filepath.Base(p), data)); err != nil {
			return m.scheduleToast()
		}
		m.attached = p
	}
	m.status = ""

	op, err := m.ctrl.Submit()
	if err != nil {
		return m.scheduleToast()
	}
	return m.run(op)
}

func (m *Model) handleDeleteKeys(msg tea.KeyMsg) tea.Cmd {
	if _, ok := m.ctrl.Alert(); ok {
		if key.Matches(msg, m.keys.submit) || key.Matches(msg, m.keys.back) {
			m.ctrl.DismissAlert()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.yes):
		op, err := m.ctrl.ConfirmDelete()
		if err != nil {
			return nil
		}
		return m.run(op)
	case key.Matches(msg, m.keys.no):
		_ = m.ctrl.Close()
	}
	return nil
}

func (m *Model) handleViewKeys(msg tea.KeyMsg) tea.Cmd {
	rec := m.ctrl.Modal().Record

	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		_ = m.ctrl.Close()
	case key.Matches(msg, m.keys.edit):
		_ = m.ctrl.Close()
		if m.ctrl.OpenEdit(rec) == nil {
			m.openForm()
		}
	case key.Matches(msg, m.keys.open):
		if rec.Image == "" || strings.HasPrefix(rec.Image, "data:") {
			m.status = "No poster to open"
			return nil
		}
		open, url := m.opts.OpenURL, rec.Image
		return func() tea.Msg { return posterOpenedMsg(open(url)) }
	}
	return nil
}

func (m *Model) renderModal() string {
	modal := m.ctrl.Modal()
	switch modal.Kind {
	case controller.ModalForm:
		return m.renderForm(modal)
	case controller.ModalDelete:
		return m.renderDelete(modal)
	case controller.ModalView:
		return m.renderDetail(modal)
	}
	return ""
}

func (m *Model) renderForm(modal controller.Modal) string {
	var b strings.Builder
	title := "Add New Movie"
	if modal.Mode == controller.ModeEdit {
		title = "Edit Movie"
	}
	b.WriteString(styles.title.Render(title) + "\n")

	rec := m.ctrl.Form()
	for i, name := range formFields {
		b.WriteString(label(formLabels[name], i == m.formFocus))
		if name == models.FieldType {
			choice := rec.Type
			if choice == "" {
				choice = "Select type"
			}
			b.WriteString("‹ " + choice + " ›")
		} else {
			b.WriteString(m.formInputs[i].View())
		}
		b.WriteString("\n")
	}

	switch img := m.ctrl.Pending(); {
	case img != nil:
		b.WriteString(styles.ok.Render(fmt.Sprintf("attached %s (%s, %d bytes)", img.Name, img.ContentType, len(img.Data))) + "\n")
	case modal.Mode == controller.ModeEdit:
		if rec.Image != "" {
			b.WriteString(styles.help.Render("current: "+rec.Image) + "\n")
		}
		b.WriteString(styles.help.Render("Leave empty to keep current image") + "\n")
	}

	if m.ctrl.Submitting() {
		b.WriteString("\n" + styles.warn.Render("Saving...") + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + styles.warn.Render(m.status) + "\n")
	}

	action := "add movie"
	if modal.Mode == controller.ModeEdit {
		action = "save changes"
	}
	save := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", action))
	cancel := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.next, save, cancel, m.keys.exit}))
	return styles.modal.Render(b.String())
}

func (m *Model) renderDelete(modal controller.Modal) string {
	if msg, ok := m.ctrl.Alert(); ok {
		dismiss := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "dismiss"))
		return styles.alert.Render(styles.err.Render(msg) + "\n\n" + m.help.ShortHelpView([]key.Binding{dismiss}))
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Confirm Delete") + "\n")

	name := fmt.Sprintf("#%d", modal.TargetID)
	if rec, ok := m.ctrl.Find(modal.TargetID); ok {
		name = fmt.Sprintf("%q", rec.Title)
	}
	fmt.Fprintf(&b, "Are you sure you want to delete %s?\n", name)

	if m.ctrl.Submitting() {
		b.WriteString("\n" + styles.warn.Render("Deleting...") + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no}))
	return styles.modal.Render(b.String())
}

func (m *Model) renderDetail(modal controller.Modal) string {
	rec := modal.Record
	poster := rec.Image
	if poster == "" || strings.HasPrefix(poster, "data:") {
		poster = cellText(rec, models.FieldImage)
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(rec.Title) + "\n")
	rows := [][2]string{
		{"Type", rec.Type},
		{"Director", rec.Director},
		{"Budget", rec.Budget},
		{"Location", rec.Location},
		{"Duration", formatter.FormatDuration(rec.Duration)},
		{"Time", rec.Time},
		{"Poster", poster},
	}
	for _, r := range rows {
		b.WriteString(styles.label.Render(r[0]) + r[1] + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + styles.warn.Render(m.status) + "\n")
	}

	closeKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close"))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.open, m.keys.edit, closeKey}))
	return styles.modal.Render(b.String())
}
