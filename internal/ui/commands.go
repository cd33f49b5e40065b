package ui

import (
	"github.com/atomicstack/tweet-popup/internal/imagepicker"
	"github.com/atomicstack/tweet-popup/internal/logging"
	"github.com/atomicstack/tweet-popup/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// canSubmit mirrors the send button: enabled when there is text or an image.
// Over-limit text is flagged by the meter but still sendable.
func (m *Model) canSubmit() bool {
	if m.store == nil {
		return false
	}
	if status := m.store.WeightedStatus(); status != nil && status.Text != "" {
		return true
	}
	return m.store.StatusImage() != nil
}

func (m *Model) submit() tea.Cmd {
	if m.controller == nil || !m.canSubmit() {
		return nil
	}
	m.errMsg = ""
	if _, err := m.controller.Submit(m.ctx); err != nil {
		// the controller already raised the failure notification
		m.errMsg = err.Error()
		return nil
	}
	m.forceClearInfo()
	m.setInfo("Sending…")
	return nil
}

func (m *Model) attachImage() tea.Cmd {
	if m.controller == nil {
		return nil
	}
	m.errMsg = ""
	m.controller.AttachImage()
	return nil
}

func (m *Model) removeImage() tea.Cmd {
	if m.controller == nil {
		return nil
	}
	m.controller.RemoveImage()
	return nil
}

func (m *Model) activateNotification() tea.Cmd {
	if m.notifications == nil {
		return nil
	}
	if !m.notifications.Activate() {
		m.setInfo("Nothing to open.")
	}
	return nil
}

func (m *Model) chooseImage() tea.Cmd {
	current := m.pickerLevel()
	if current == nil {
		return nil
	}
	item, ok := current.Current()
	if !ok {
		return nil
	}
	return m.bus.Execute(command.Request{
		ID:    "image:load",
		Label: item.Label,
		Run:   m.picker.Choose(),
	})
}

func (m *Model) handleImageLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(imagepicker.LoadedMsg)
	if !ok || m.picker == nil {
		return nil
	}
	if !m.picker.Resolve(loaded) {
		if loaded.Err != nil {
			logging.Error(loaded.Err)
		}
		return nil
	}
	m.clearInfo()
	return nil
}
