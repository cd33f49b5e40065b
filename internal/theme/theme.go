package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted by ForName.
const (
	Night = "night"
	Day   = "day"
)

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Title                 *lipgloss.Style
	Item                  *lipgloss.Style
	ItemDetail            *lipgloss.Style
	ItemIndicator         *lipgloss.Style
	SelectedItemIndicator *lipgloss.Style
	SelectedItem          *lipgloss.Style
	Error                 *lipgloss.Style
	Info                  *lipgloss.Style
	Header                *lipgloss.Style
	Footer                *lipgloss.Style
	Filter                *lipgloss.Style
	FilterPrompt          *lipgloss.Style
	FilterPlaceholder     *lipgloss.Style
	Cursor                *lipgloss.Style
	Attachment            *lipgloss.Style
	Button                *lipgloss.Style
	ButtonDisabled        *lipgloss.Style
	MeterLabel            *lipgloss.Style
	MeterLabelOver        *lipgloss.Style

	// Progress bar fill colours for the weight meter.
	MeterColor     string
	MeterOverColor string
}

var nightStyles = Styles{
	Title:                 ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)),
	Item:                  ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	ItemDetail:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))),
	ItemIndicator:         ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))),
	SelectedItemIndicator: ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Background(lipgloss.Color("238"))),
	SelectedItem:          ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true)),
	Error:                 ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)),
	Info:                  ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	Header:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)),
	Footer:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("244"))),
	Filter:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("249"))),
	FilterPrompt:          ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)),
	FilterPlaceholder:     ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))),
	Cursor:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33"))),
	Attachment:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("39"))),
	Button:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("33")).Bold(true).Padding(0, 1)),
	ButtonDisabled:        ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Background(lipgloss.Color("236")).Padding(0, 1)),
	MeterLabel:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("245"))),
	MeterLabelOver:        ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)),
	MeterColor:            "#1d9bf0",
	MeterOverColor:        "#f4212e",
}

var dayStyles = Styles{
	Title:                 ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("232")).Bold(true)),
	Item:                  ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("237"))),
	ItemDetail:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("244"))),
	ItemIndicator:         ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("250"))),
	SelectedItemIndicator: ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("26")).Background(lipgloss.Color("254"))),
	SelectedItem:          ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("232")).Background(lipgloss.Color("254")).Bold(true)),
	Error:                 ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)),
	Info:                  ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))),
	Header:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true)),
	Footer:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("243"))),
	Filter:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("237"))),
	FilterPrompt:          ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true)),
	FilterPlaceholder:     ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("246"))),
	Cursor:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("26"))),
	Attachment:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("26"))),
	Button:                ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("26")).Bold(true).Padding(0, 1)),
	ButtonDisabled:        ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Background(lipgloss.Color("254")).Padding(0, 1)),
	MeterLabel:            ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))),
	MeterLabelOver:        ptr(lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)),
	MeterColor:            "#1d9bf0",
	MeterOverColor:        "#e0245e",
}

// Default exposes the night style set.
func Default() *Styles {
	return &nightStyles
}

// ForName returns the style set for a theme name. An empty name selects the
// night theme.
func ForName(name string) (*Styles, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Night:
		return &nightStyles, nil
	case Day:
		return &dayStyles, nil
	default:
		return nil, fmt.Errorf("unknown theme %q (want %s or %s)", name, Day, Night)
	}
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
