package ui

import (
	"github.com/atomicstack/tweet-popup/internal/channel"
	"github.com/atomicstack/tweet-popup/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForChannelEvent(ch Events) tea.Cmd {
	return func() tea.Msg {
		env, ok := <-ch.Events()
		if !ok {
			return channelDoneMsg{}
		}
		return channelEventMsg{env: env}
	}
}

type channelEventMsg struct {
	env channel.Envelope
}

type channelDoneMsg struct{}

// handleChannelEventMsg runs the subscribed handlers on the UI loop, so the
// compose controller never touches the draft from another goroutine.
func (m *Model) handleChannelEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(channelEventMsg)
	if !ok {
		return nil
	}
	m.channel.Dispatch(eventMsg.env)
	return waitForChannelEvent(m.channel)
}

func (m *Model) handleChannelDoneMsg(msg tea.Msg) tea.Cmd {
	events.UI.ChannelClosed()
	m.channel = nil
	m.errMsg = "poster disconnected; posts can no longer be sent"
	return nil
}
