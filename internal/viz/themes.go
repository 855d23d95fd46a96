package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the live view.
type Theme struct {
	Name    string
	Flock   lipgloss.Color
	Bounds  lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Good    lipgloss.Color
	Warning lipgloss.Color
}

var (
	ThemeDusk = Theme{
		Name:    "dusk",
		Flock:   lipgloss.Color("#ffd27f"),
		Bounds:  lipgloss.Color("#5b4b8a"),
		Accent:  lipgloss.Color("#ff8fab"),
		Text:    lipgloss.Color("#f5f0ff"),
		Muted:   lipgloss.Color("#7a6f99"),
		Good:    lipgloss.Color("#7ee0a1"),
		Warning: lipgloss.Color("#ffb347"),
	}

	ThemeStarling = Theme{
		Name:    "starling",
		Flock:   lipgloss.Color("#e0e0e0"),
		Bounds:  lipgloss.Color("#444466"),
		Accent:  lipgloss.Color("#00ccff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888899"),
		Good:    lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
	}

	ThemeReef = Theme{
		Name:    "reef",
		Flock:   lipgloss.Color("#00e5ff"),
		Bounds:  lipgloss.Color("#004d66"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f7ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Good:    lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ff7f50"),
	}

	ThemePhosphor = Theme{
		Name:    "phosphor",
		Flock:   lipgloss.Color("#00ff00"),
		Bounds:  lipgloss.Color("#005500"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#007700"),
		Good:    lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
	}

	CurrentTheme = ThemeDusk

	Themes = []Theme{ThemeDusk, ThemeStarling, ThemeReef, ThemePhosphor}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme advances CurrentTheme and returns its name.
func NextTheme() string {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return CurrentTheme.Name
		}
	}
	CurrentTheme = Themes[0]
	return CurrentTheme.Name
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
