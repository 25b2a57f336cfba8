package cli

import "github.com/charmbracelet/lipgloss"

// Theme holds the color scheme for the interactive views.
type Theme struct {
	Header    lipgloss.Color
	Status    lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
	UserBg    lipgloss.Color
	UserFg    lipgloss.Color
	BotBorder lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Header:    lipgloss.Color("#5F5FD7"), // indigo
	Status:    lipgloss.Color("#5FAFD7"), // light blue
	Success:   lipgloss.Color("#00D787"), // green
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
	UserBg:    lipgloss.Color("#AFAFFF"), // light indigo
	UserFg:    lipgloss.Color("#1C1C1C"),
	BotBorder: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(t.Header).Bold(true).Padding(0, 2)
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).MarginBottom(1)
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) userBubbleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.UserFg).Background(t.UserBg).Padding(0, 1)
}

func (t Theme) botBubbleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BotBorder).Padding(0, 1)
}
