package models

// ThemeID selects one of the app's cosmetic themes. The UI cycles through
// them in declaration order.
type ThemeID string

const (
	ThemeClassic ThemeID = "classic"
	ThemeSunset  ThemeID = "sunset"
	ThemeCats    ThemeID = "cats"
)

// ThemeConfig is a plain record of per-theme presentation values.
type ThemeConfig struct {
	ID           ThemeID `json:"id"`
	Name         string  `json:"name"`
	PrimaryColor string  `json:"primaryColor"`
	AccentColor  string  `json:"accentColor"`
	Emoji        string  `json:"emoji"`
}

// themes is the tagged-variant lookup. No dynamic dispatch needed.
var themes = map[ThemeID]ThemeConfig{
	ThemeClassic: {ID: ThemeClassic, Name: "Classic", PrimaryColor: "#2563eb", AccentColor: "#f59e0b", Emoji: "🏠"},
	ThemeSunset:  {ID: ThemeSunset, Name: "Sunset", PrimaryColor: "#db2777", AccentColor: "#fb923c", Emoji: "🌇"},
	ThemeCats:    {ID: ThemeCats, Name: "Cats", PrimaryColor: "#7c3aed", AccentColor: "#fbbf24", Emoji: "🐈"},
}

// ThemeByID returns the config for id, falling back to the classic theme
// for unknown values so a stale stored theme never breaks rendering.
func ThemeByID(id ThemeID) ThemeConfig {
	if cfg, ok := themes[id]; ok {
		return cfg
	}
	return themes[ThemeClassic]
}

// NextTheme returns the theme following id in the cycle order.
func NextTheme(id ThemeID) ThemeID {
	order := []ThemeID{ThemeClassic, ThemeSunset, ThemeCats}
	for i, t := range order {
		if t == id {
			return order[(i+1)%len(order)]
		}
	}
	return ThemeClassic
}

// AllThemes returns every theme config in cycle order.
func AllThemes() []ThemeConfig {
	return []ThemeConfig{themes[ThemeClassic], themes[ThemeSunset], themes[ThemeCats]}
}
