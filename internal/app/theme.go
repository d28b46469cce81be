package app

import "github.com/charmbracelet/lipgloss/v2"

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	projectStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	sessionStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	ageStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
	statusInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	statusWarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	statusErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	previewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	previewBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)
