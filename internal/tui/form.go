package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/present"
)

type formField int

const (
	fieldName formField = iota
	fieldTask
	fieldDue
	fieldSave
	fieldCount
)

// formModel is the add/edit dialog
type formModel struct {
	editing  bool
	original model.Deadline
	base     present.Draft

	name  textinput.Model
	task  textarea.Model
	due   textinput.Model
	focus formField
}

func newForm() formModel {
	name := textinput.New()
	name.Placeholder = "Enter person's name"
	name.CharLimit = 80
	name.Width = 40

	task := textarea.New()
	task.Placeholder = "What needs to be done?"
	task.ShowLineNumbers = false
	task.CharLimit = 500
	task.SetWidth(42)
	task.SetHeight(3)

	due := textinput.New()
	due.Placeholder = present.DueLayout
	due.CharLimit = 16
	due.Width = 20

	return formModel{name: name, task: task, due: due}
}

// openAdd resets the form to blank
func (f *formModel) openAdd() tea.Cmd {
	f.editing = false
	f.original = model.Deadline{}
	f.base = present.Draft{}
	f.name.SetValue("")
	f.task.SetValue("")
	f.due.SetValue("")
	return f.focusField(fieldName)
}

// openEdit pre-fills the form from d, showing the due instant in loc
func (f *formModel) openEdit(d model.Deadline, loc *time.Location) tea.Cmd {
	f.editing = true
	f.original = d
	f.base = present.DraftFrom(d, loc)
	f.name.SetValue(f.base.Name)
	f.task.SetValue(f.base.Task)
	f.due.SetValue(f.base.Due)
	f.name.CursorEnd()
	f.due.CursorEnd()
	return f.focusField(fieldName)
}

// draft reads the current field values
func (f formModel) draft() present.Draft {
	d := f.base
	d.Name = f.name.Value()
	d.Task = f.task.Value()
	d.Due = f.due.Value()
	return d
}

func (f *formModel) focusField(field formField) tea.Cmd {
	f.focus = (field + fieldCount) % fieldCount
	f.name.Blur()
	f.task.Blur()
	f.due.Blur()

	switch f.focus {
	case fieldName:
		return f.name.Focus()
	case fieldTask:
		return f.task.Focus()
	case fieldDue:
		return f.due.Focus()
	}
	return nil
}

// update forwards a message to the focused input
func (f formModel) update(msg tea.Msg) (formModel, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldName:
		f.name, cmd = f.name.Update(msg)
	case fieldTask:
		f.task, cmd = f.task.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	return f, cmd
}
