package tui

import "github.com/charmbracelet/lipgloss"

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 1)
}

func modeStyle(selected bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 2)
	if selected {
		return s.Foreground(lipgloss.Color("39")).Bold(true)
	}
	return s.Foreground(lipgloss.Color("245"))
}

func resultStyle(width int, failed bool) lipgloss.Style {
	border := lipgloss.Color("62")
	if failed {
		border = lipgloss.Color("196")
	}
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 4 {
		s = s.Width(width - 4)
	}
	return s
}

func statusStyle(width int) lipgloss.Style {
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)
	if width > 0 {
		s = s.Width(width)
	}
	return s
}
