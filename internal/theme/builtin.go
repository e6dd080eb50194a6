package theme

import "github.com/charmbracelet/lipgloss"

// Reviewer is the default theme: slate grays with a blue action color.
func Reviewer() *Theme {
	return &Theme{
		Name:        "dreview",
		Description: "Slate grays with blue actions",
		Type:        "dark",

		Primary: lipgloss.Color("#60A5FA"), // Blue 400
		Accent:  lipgloss.Color("#93C5FD"), // Blue 300
		Success: lipgloss.Color("#4ADE80"), // Green 400
		Warning: lipgloss.Color("#FACC15"), // Yellow 400
		Error:   lipgloss.Color("#DC2626"), // Red 600

		Text:      lipgloss.Color("#E5E7EB"), // Gray 200
		TextMuted: lipgloss.Color("#9CA3AF"), // Gray 400
		TextDim:   lipgloss.Color("#4B5563"), // Gray 600

		Surface:         lipgloss.Color("#374151"), // Gray 700
		Border:          lipgloss.Color("#6B7280"), // Gray 500
		BorderHighlight: lipgloss.Color("#2563EB"), // Blue 600

		Button:     lipgloss.Color("#2563EB"), // Blue 600
		ButtonText: lipgloss.Color("#FFFFFF"),

		SyntaxTheme:   "github-dark",
		MarkdownTheme: "dark",
	}
}

func CatppuccinMocha() *Theme {
	return &Theme{
		Name:        "catppuccin-mocha",
		Description: "Soothing pastel theme (dark)",
		Type:        "dark",

		Primary: lipgloss.Color("#CBA6F7"), // Mauve
		Accent:  lipgloss.Color("#F5C2E7"), // Pink
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red

		Text:      lipgloss.Color("#CDD6F4"),
		TextMuted: lipgloss.Color("#A6ADC8"), // Subtext
		TextDim:   lipgloss.Color("#6C7086"), // Overlay

		Surface:         lipgloss.Color("#313244"), // Surface0
		Border:          lipgloss.Color("#6C7086"), // Overlay0
		BorderHighlight: lipgloss.Color("#CBA6F7"), // Mauve

		Button:     lipgloss.Color("#89B4FA"), // Blue
		ButtonText: lipgloss.Color("#1E1E2E"), // Base

		SyntaxTheme:   "catppuccin-mocha",
		MarkdownTheme: "dark",
	}
}

func Dracula() *Theme {
	return &Theme{
		Name:        "dracula",
		Description: "Dark theme with vibrant colors",
		Type:        "dark",

		Primary: lipgloss.Color("#BD93F9"), // Purple
		Accent:  lipgloss.Color("#FF79C6"), // Pink
		Success: lipgloss.Color("#50FA7B"),
		Warning: lipgloss.Color("#F1FA8C"),
		Error:   lipgloss.Color("#FF5555"),

		Text:      lipgloss.Color("#F8F8F2"),
		TextMuted: lipgloss.Color("#6272A4"), // Comment
		TextDim:   lipgloss.Color("#44475A"), // Current line

		Surface:         lipgloss.Color("#44475A"),
		Border:          lipgloss.Color("#6272A4"),
		BorderHighlight: lipgloss.Color("#BD93F9"),

		Button:     lipgloss.Color("#BD93F9"),
		ButtonText: lipgloss.Color("#282A36"),

		SyntaxTheme:   "dracula",
		MarkdownTheme: "dracula",
	}
}

func TokyoNight() *Theme {
	return &Theme{
		Name:        "tokyo-night",
		Description: "A clean, dark theme inspired by Tokyo",
		Type:        "dark",

		Primary: lipgloss.Color("#BB9AF7"),
		Accent:  lipgloss.Color("#7DCFFF"),
		Success: lipgloss.Color("#9ECE6A"),
		Warning: lipgloss.Color("#E0AF68"),
		Error:   lipgloss.Color("#F7768E"),

		Text:      lipgloss.Color("#C0CAF5"),
		TextMuted: lipgloss.Color("#565F89"),
		TextDim:   lipgloss.Color("#414868"),

		Surface:         lipgloss.Color("#24283B"),
		Border:          lipgloss.Color("#414868"),
		BorderHighlight: lipgloss.Color("#BB9AF7"),

		Button:     lipgloss.Color("#7AA2F7"),
		ButtonText: lipgloss.Color("#1A1B26"),

		SyntaxTheme:   "tokyonight-night",
		MarkdownTheme: "tokyo-night",
	}
}

func Nord() *Theme {
	return &Theme{
		Name:        "nord",
		Description: "Arctic, north-bluish color palette",
		Type:        "dark",

		Primary: lipgloss.Color("#88C0D0"), // Frost 2
		Accent:  lipgloss.Color("#B48EAD"), // Aurora 4
		Success: lipgloss.Color("#A3BE8C"),
		Warning: lipgloss.Color("#EBCB8B"),
		Error:   lipgloss.Color("#BF616A"),

		Text:      lipgloss.Color("#ECEFF4"),
		TextMuted: lipgloss.Color("#D8DEE9"),
		TextDim:   lipgloss.Color("#4C566A"),

		Surface:         lipgloss.Color("#3B4252"),
		Border:          lipgloss.Color("#4C566A"),
		BorderHighlight: lipgloss.Color("#88C0D0"),

		Button:     lipgloss.Color("#5E81AC"), // Frost 4
		ButtonText: lipgloss.Color("#ECEFF4"),

		SyntaxTheme:   "nord",
		MarkdownTheme: "dark",
	}
}

func GithubLight() *Theme {
	return &Theme{
		Name:        "github-light",
		Description: "GitHub's light color scheme",
		Type:        "light",

		Primary: lipgloss.Color("#6F42C1"),
		Accent:  lipgloss.Color("#E36209"),
		Success: lipgloss.Color("#22863A"),
		Warning: lipgloss.Color("#B08800"),
		Error:   lipgloss.Color("#D73A49"),

		Text:      lipgloss.Color("#24292E"),
		TextMuted: lipgloss.Color("#6A737D"),
		TextDim:   lipgloss.Color("#D1D5DA"),

		Surface:         lipgloss.Color("#F6F8FA"),
		Border:          lipgloss.Color("#E1E4E8"),
		BorderHighlight: lipgloss.Color("#0366D6"),

		Button:     lipgloss.Color("#0366D6"),
		ButtonText: lipgloss.Color("#FFFFFF"),

		SyntaxTheme:   "github",
		MarkdownTheme: "light",
	}
}
