package ui

import "github.com/charmbracelet/lipgloss"

type Style struct {
	Header       lipgloss.Style
	Question     lipgloss.Style
	Answer       lipgloss.Style
	FailedAnswer lipgloss.Style
	Empty        lipgloss.Style
	FocusedInput lipgloss.Style
	BlurredInput lipgloss.Style
	Status       lipgloss.Style
	Notice       lipgloss.Style
}

type BorderColors struct {
	Question string
	Answer   string
	Failed   string
	Focused  string
	Blurred  string
}

func DefaultStyles() *Style {
	lightModeColors := BorderColors{
		Question: "#CCCCCC",
		Answer:   "#4F46E5", // Indigo
		Failed:   "#D7263D",
		Focused:  "#FFB6C1", // Light pink
		Blurred:  "#CCCCCC",
	}

	darkModeColors := BorderColors{
		Question: "#444444",
		Answer:   "#7C75F0", // Desaturated indigo for dark mode
		Failed:   "#E06070",
		Focused:  "#DD7090", // Desaturated pink for dark mode
		Blurred:  "#444444",
	}

	color := func(pick func(BorderColors) string) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{
			Light: pick(lightModeColors),
			Dark:  pick(darkModeColors),
		}
	}

	return &Style{
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Question: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(color(func(c BorderColors) string { return c.Question })),
		Answer: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(color(func(c BorderColors) string { return c.Answer })),
		FailedAnswer: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Foreground(color(func(c BorderColors) string { return c.Failed })).
			BorderForeground(color(func(c BorderColors) string { return c.Failed })),
		Empty: lipgloss.NewStyle().Faint(true).Padding(1, 1),
		FocusedInput: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			BorderForeground(color(func(c BorderColors) string { return c.Focused })),
		BlurredInput: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			BorderForeground(color(func(c BorderColors) string { return c.Blurred })),
		Status: lipgloss.NewStyle().Faint(true).Padding(0, 1),
		Notice: lipgloss.NewStyle().Italic(true).Padding(0, 1),
	}
}
