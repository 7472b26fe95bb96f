package browse

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorAccent  = lipgloss.Color("39")  // blue
	colorValid   = lipgloss.Color("76")  // green
	colorInvalid = lipgloss.Color("196") // red
	colorWarning = lipgloss.Color("214") // orange
	colorMuted   = lipgloss.Color("242") // gray
	colorBorder  = lipgloss.Color("240")
)

// Styles for the catalog browser
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorMuted)

	validStyle = lipgloss.NewStyle().
			Foreground(colorValid)

	invalidStyle = lipgloss.NewStyle().
			Foreground(colorInvalid).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	detailBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorInvalid)
)
