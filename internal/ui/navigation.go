package ui

import (
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.mode == ModeImagePicker {
		return m.handlePickerKey(keyMsg)
	}
	return m.handleComposeKey(keyMsg)
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit
	case "ctrl+s":
		events.UI.Key("ctrl+s")
		return m.submit()
	case "ctrl+o":
		events.UI.Key("ctrl+o")
		return m.attachImage()
	case "ctrl+x":
		events.UI.Key("ctrl+x")
		return m.removeImage()
	case "ctrl+n":
		events.UI.Key("ctrl+n")
		return m.activateNotification()
	}
	return m.updateEditor(msg)
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	if m.handleTextInput(msg) {
		return nil
	}
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		m.picker.Cancel()
		return nil
	case "enter":
		return m.chooseImage()
	case "up", "ctrl+p":
		m.moveCursor((*level).MoveCursorUp)
	case "down", "ctrl+n":
		m.moveCursor((*level).MoveCursorDown)
	case "pgup":
		page := m.maxVisibleItems()
		m.moveCursor(func(l *level) bool { return l.MoveCursorPageUp(page) })
	case "pgdown":
		page := m.maxVisibleItems()
		m.moveCursor(func(l *level) bool { return l.MoveCursorPageDown(page) })
	case "home":
		m.moveCursor((*level).MoveCursorHome)
	case "end":
		m.moveCursor((*level).MoveCursorEnd)
	}
	return nil
}

func (m *Model) moveCursor(move func(*level) bool) {
	current := m.pickerLevel()
	if current == nil {
		return
	}
	if move(current) {
		events.UI.Cursor(current.ID, current.Cursor)
	}
	m.syncViewport(current)
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.EnsureCursorVisible(m.maxVisibleItems())
}

func (m *Model) pickerLevel() *level {
	if m.picker == nil {
		return nil
	}
	return m.picker.Level()
}
