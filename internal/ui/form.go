package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/backoffice/internal/admin"
	"github.com/five82/backoffice/internal/content"
	"github.com/five82/backoffice/internal/photos"
)

// openForm shows f, with one input per field and a trailing photo input.
func (m *Model) openForm(f admin.FormHandle) tea.Cmd {
	fields := f.Fields()
	inputs := make([]textinput.Model, 0, len(fields)+1)
	for _, fd := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Width = m.inputWidth()
		in.Placeholder = placeholderFor(fd.Kind)
		in.SetValue(fd.Value)
		inputs = append(inputs, in)
	}
	photo := textinput.New()
	photo.Prompt = ""
	photo.Width = m.inputWidth()
	photo.Placeholder = "photo URL or file path, enter to add"
	inputs = append(inputs, photo)

	m.form = formState{handle: f, fields: fields, inputs: inputs}
	m.view = ViewForm
	return m.focusField(0)
}

func placeholderFor(kind content.FieldKind) string {
	switch kind {
	case content.FieldNumber:
		return "0.00"
	case content.FieldInteger:
		return "0"
	case content.FieldBool:
		return "yes / no"
	case content.FieldTags:
		return "comma, separated"
	case content.FieldReference:
		return "id (optional)"
	default:
		return ""
	}
}

func (m *Model) focusField(i int) tea.Cmd {
	n := len(m.form.inputs)
	if n == 0 {
		return nil
	}
	m.form.focus = (i + n) % n
	for j := range m.form.inputs {
		m.form.inputs[j].Blur()
	}
	return m.form.inputs[m.form.focus].Focus()
}

func (m Model) photoFocused() bool {
	return m.form.focus == len(m.form.inputs)-1
}

func (m *Model) closeForm() {
	if m.form.handle != nil {
		m.form.handle.Close()
	}
	m.form = formState{}
	m.view = ViewList
	m.watch()
}

// handleFormKey processes keyboard input for an open form.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form.handle
	if f == nil {
		m.view = ViewList
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		return m.submitForm()

	case key.Matches(msg, m.keys.NextField):
		return m, m.focusField(m.form.focus + 1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusField(m.form.focus - 1)

	case key.Matches(msg, m.keys.PhotoPrev):
		if m.form.photo > 0 {
			m.form.photo--
		}
		return m, nil

	case key.Matches(msg, m.keys.PhotoNext):
		if m.form.photo < len(f.PhotoRefs())-1 {
			m.form.photo++
		}
		return m, nil

	case key.Matches(msg, m.keys.PhotoDrop):
		if err := f.RemovePhoto(m.form.photo); err != nil {
			m.setFlash(errorText(err), "validation")
			return m, nil
		}
		if m.form.photo >= len(f.PhotoRefs()) {
			m.form.photo = max(len(f.PhotoRefs())-1, 0)
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.photoFocused() {
			return m.addPhoto()
		}
		return m, m.focusField(m.form.focus + 1)
	}

	var cmd tea.Cmd
	i := m.form.focus
	m.form.inputs[i], cmd = m.form.inputs[i].Update(msg)
	if i < len(m.form.fields) {
		name := m.form.fields[i].Name
		if err := f.Set(name, m.form.inputs[i].Value()); err == nil {
			m.form.fields[i].Value = m.form.inputs[i].Value()
			m.form.fields[i].Error = ""
		}
	}
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form.handle
	if m.form.saving || f.Submitting() {
		m.setFlash(admin.ErrSubmitInFlight.Error(), "validation")
		return m, nil
	}
	if f.PhotosBusy() {
		m.setFlash(admin.ErrPhotosPending.Error(), "validation")
		return m, nil
	}
	m.form.saving = true
	return m, saveCmd(m.ctx, f)
}

// addPhoto adds the photo input as a URL or reads it as a file.
func (m Model) addPhoto() (tea.Model, tea.Cmd) {
	f := m.form.handle
	in := &m.form.inputs[len(m.form.inputs)-1]
	raw := strings.TrimSpace(in.Value())
	if raw == "" {
		return m, nil
	}

	if isPhotoURL(raw) {
		i, err := f.AddPhotoURL(raw)
		if err != nil {
			m.setFlash(errorText(err), "validation")
			return m, nil
		}
		m.form.photo = i
		in.SetValue("")
		return m, nil
	}

	ch, err := f.AddPhotoFile(m.ctx, expandHome(raw))
	if err != nil {
		m.setFlash(errorText(err), "validation")
		return m, nil
	}
	in.SetValue("")
	m.setFlash("Reading "+filepath.Base(raw)+"...", "loading")
	return m, photoCmd(f, ch)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func (m Model) handlePhotoRead(msg photoReadMsg) (tea.Model, tea.Cmd) {
	if msg.form != m.form.handle {
		return m, nil
	}
	r := msg.result
	if r.Err != nil {
		m.setFlash(photoErrorText(r), "validation")
		return m, nil
	}
	m.form.photo = r.Index
	m.setFlash(fmt.Sprintf("Added %s (%s)", filepath.Base(r.Path), humanBytes(r.Size)), "authenticated")
	return m, nil
}

func photoErrorText(r photos.Result) string {
	name := filepath.Base(r.Path)
	switch {
	case errors.Is(r.Err, photos.ErrNotImage):
		return name + " is not an image"
	default:
		return "Could not read " + name + ": " + r.Err.Error()
	}
}

func (m Model) handleFormSaved(msg formSavedMsg) (tea.Model, tea.Cmd) {
	if msg.form != m.form.handle {
		// The form was closed before the save finished; the cache already
		// reflects the result.
		return m, m.loadRows(false)
	}
	m.form.saving = false

	if msg.err == nil {
		m.setFlash("Saved", "authenticated")
		m.form = formState{}
		m.view = ViewList
		return m, m.loadRows(false)
	}

	m.form.fields = msg.form.Fields()
	if notice, ok := msg.form.Notice(); ok {
		m.setFlash(notice.Message, notice.Kind.String())
	} else if errors.Is(msg.err, admin.ErrValidation) {
		m.setFlash("Fix the highlighted fields", "validation")
	} else {
		m.setFlash(errorText(msg.err), errorStatus(msg.err))
	}
	return m, m.expireOnAuthError(msg.err)
}

// renderForm renders the open form with field errors and the photo list.
func (m Model) renderForm(height int) string {
	f := m.form.handle
	if f == nil {
		return ""
	}
	styles := m.theme.Styles()
	labelStyle := styles.MutedText.Width(LayoutLabelWidth)
	focusLabel := styles.AccentText.Width(LayoutLabelWidth)

	var b strings.Builder
	for i, fd := range m.form.fields {
		label := labelStyle.Render(fd.Label)
		if i == m.form.focus {
			label = focusLabel.Render(fd.Label)
		}
		b.WriteString(label)
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n")
		if fd.Error != "" {
			b.WriteString(strings.Repeat(" ", LayoutLabelWidth))
			b.WriteString(styles.DangerText.Render(fd.Error))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	refs := f.PhotoRefs()
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Photos (%d)", len(refs))))
	b.WriteString("\n")
	for i, ref := range refs {
		marker := "  "
		style := styles.Text
		if i == m.form.photo {
			marker = "> "
			style = styles.AccentText
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%d. %s", marker, i+1, describePhoto(ref, m.inputWidth()))))
		b.WriteString("\n")
	}
	photoLabel := labelStyle.Render("Add photo")
	if m.photoFocused() {
		photoLabel = focusLabel.Render("Add photo")
	}
	b.WriteString(photoLabel)
	b.WriteString(m.form.inputs[len(m.form.inputs)-1].View())
	b.WriteString("\n\n")

	switch {
	case m.form.saving:
		b.WriteString(m.spinner.View() + " Saving...")
	case f.PhotosBusy():
		b.WriteString(m.spinner.View() + " Reading photo...")
	default:
		if notice, ok := f.Notice(); ok {
			b.WriteString(styles.StatusStyle(notice.Kind.String()).Render(notice.Message))
		} else {
			b.WriteString(styles.FaintText.Render("ctrl+s save · esc cancel · ctrl+p/ctrl+n select photo · ctrl+x remove"))
		}
	}

	return m.renderTitledBox(f.Title(), b.String(), m.width, height, true)
}
