package cssval

import "github.com/charmbracelet/lipgloss"

// palette holds the console report styles. The zero value of Reporter
// renders plain text; paint only applies a style when colors are on.
type palette struct {
	pass     lipgloss.Style
	fail     lipgloss.Style
	warning  lipgloss.Style
	location lipgloss.Style
	excerpt  lipgloss.Style
}

var reportPalette = palette{
	pass:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	fail:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
	location: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	excerpt:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

// severity returns the message style for a diagnostic of severity s.
func (p palette) severity(s Severity) lipgloss.Style {
	if s == SeverityWarning {
		return p.warning
	}
	return p.fail
}

// outcome returns the marker and its style for a file result.
func (p palette) outcome(ok bool) (string, lipgloss.Style) {
	if ok {
		return "✓", p.pass
	}
	return "✗", p.fail
}

func (r *Reporter) paint(style lipgloss.Style, text string) string {
	if !r.useColors {
		return text
	}
	return style.Render(text)
}
