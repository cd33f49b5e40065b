package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
)

const (
	defaultEditorWidth  = 60
	defaultEditorHeight = 6
	minEditorHeight     = 3
	meterLabelWidth     = 8

	composeFooter = "ctrl+s send  ctrl+o image  ctrl+x remove image  ctrl+n open  esc quit"
	pickerFooter  = "↑/↓ move  enter attach  esc cancel"
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == ModeImagePicker && m.pickerLevel() != nil {
		return m.viewPicker()
	}
	return m.viewCompose()
}

func (m *Model) viewCompose() string {
	st := m.styles
	lines := make([]styledLine, 0, 16)
	lines = append(lines, styledLine{text: m.strings.Composer.Title, style: st.Title})
	for _, row := range strings.Split(m.editor.View(), "\n") {
		lines = append(lines, styledLine{text: row, raw: true})
	}
	lines = append(lines, m.meterLine())
	lines = append(lines, m.imageLine())
	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: m.currentInfo(), style: st.Info})
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: composeFooter, style: st.Footer})
	}
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)

	var statusLine styledLine
	if m.errMsg != "" {
		statusLine = styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: st.Error}
	}
	bottom := applyWidth([]styledLine{statusLine, m.buttonLine()}, m.width)
	lines = append(lines, bottom...)
	return renderLines(lines)
}

func (m *Model) meterLine() styledLine {
	permillage := 0
	if m.store != nil {
		if status := m.store.WeightedStatus(); status != nil {
			permillage = status.Permillage
		}
	}
	percent := float64(permillage) / 1000
	if percent > 1 {
		percent = 1
	}
	labelStyle := m.styles.MeterLabel
	m.meter.FullColor = m.styles.MeterColor
	if permillage > 1000 {
		labelStyle = m.styles.MeterLabelOver
		m.meter.FullColor = m.styles.MeterOverColor
	}
	label := fmt.Sprintf("%d%%", permillage/10)
	label = fmt.Sprintf("%*s", meterLabelWidth, label)
	if labelStyle != nil {
		label = labelStyle.Render(label)
	}
	return styledLine{text: m.meter.ViewAs(percent) + label, raw: true}
}

func (m *Model) imageLine() styledLine {
	if m.store == nil {
		return styledLine{}
	}
	image := m.store.StatusImage()
	if image == nil {
		return styledLine{text: "No image attached", style: m.styles.ItemDetail}
	}
	text := fmt.Sprintf("Image: %s (%s)", image.Name, humanize.Bytes(uint64(image.Size)))
	return styledLine{text: text, style: m.styles.Attachment}
}

func (m *Model) buttonLine() styledLine {
	label := m.strings.Composer.TweetButton
	if label == "" {
		label = "Send"
	}
	style := m.styles.Button
	if !m.canSubmit() {
		style = m.styles.ButtonDisabled
	}
	if style != nil {
		return styledLine{text: style.Render(label), raw: true}
	}
	return styledLine{text: label}
}

func (m *Model) viewPicker() string {
	st := m.styles
	current := m.pickerLevel()
	lines := make([]styledLine, 0, 16)
	lines = append(lines, styledLine{text: fmt.Sprintf("Attach image: %s", m.picker.Root()), style: st.Header})

	m.syncViewport(current)
	maxItems := m.maxVisibleItems()
	visible := current.Visible(maxItems)
	start := 0
	if maxItems > 0 && len(current.Items) > maxItems {
		start = current.ViewportOffset
	}
	if len(current.Items) == 0 {
		msg := "(no images)"
		if current.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", current.Filter)
		}
		lines = append(lines, styledLine{text: msg, style: st.Info})
	}
	for i, item := range visible {
		idx := start + i
		lines = append(lines, m.buildItemLine(item.Label, item.Detail, idx == current.Cursor, m.width))
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: st.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: pickerFooter, style: st.Footer})
	}
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)

	var statusLine styledLine
	switch {
	case m.picker.Loading() != "":
		statusLine = styledLine{text: "Loading…", style: st.Info}
	case m.picker.Err() != "":
		statusLine = styledLine{text: fmt.Sprintf("Error: %s", m.picker.Err()), style: st.Error}
	}
	bottom := applyWidth([]styledLine{statusLine, {text: m.filterPrompt(), raw: true}}, m.width)
	lines = append(lines, bottom...)
	return renderLines(lines)
}

// buildItemLine constructs a single styledLine for a picker entry. When
// width > 0 the text is padded so the selected item's background spans the
// full row.
func (m *Model) buildItemLine(label, detail string, selected bool, width int) styledLine {
	indicator := "▌"
	lineStyle := m.styles.Item
	indicatorStyle := m.styles.ItemIndicator
	if selected {
		indicatorStyle = m.styles.SelectedItemIndicator
		lineStyle = m.styles.SelectedItem
	}
	fullText := indicator + " " + label
	if detail != "" {
		fullText += "  " + detail
	}
	if width > 0 {
		if pad := width - len([]rune(fullText)); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1, // just the ▌ character
	}
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.layout()
	if current := m.pickerLevel(); current != nil {
		m.syncViewport(current)
	}
	return nil
}

// layout sizes the editor and meter to the viewport.
func (m *Model) layout() {
	width := m.width
	if width <= 0 {
		width = defaultEditorWidth
	}
	height := defaultEditorHeight
	if m.height > 0 {
		// title, meter, image, blank, info, status, button
		used := 7
		if m.showFooter {
			used += 2
		}
		height = m.height - used
		if height < minEditorHeight {
			height = minEditorHeight
		}
	}
	m.editor.SetWidth(width)
	m.editor.SetHeight(height)
	m.meter.Width = width - meterLabelWidth
	if m.meter.Width < 1 {
		m.meter.Width = 1
	}
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 3 // header, status, filter prompt
	if info := m.currentInfo(); info != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) clearInfo() {
	if m.infoMsg == "" {
		return
	}
	if !m.infoExpire.IsZero() && time.Now().Before(m.infoExpire) {
		return
	}
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		result[i] = styledLine{
			text:          text,
			style:         line.style,
			prefixStyle:   line.prefixStyle,
			highlightFrom: line.highlightFrom,
			raw:           line.raw,
		}
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil && text != "" {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
