package model

// CustomLabels holds the operator-editable button captions.
type CustomLabels struct {
	AnalyzeAds    string `json:"analyze_ads"`
	TalkToMe      string `json:"talk_to_me"`
	TalkToAnalyst string `json:"talk_to_analyst"`
	Spot1         string `json:"spot1"`
	Spot2         string `json:"spot2"`
	Spot3         string `json:"spot3"`
}

// DefaultLabels returns the factory captions.
func DefaultLabels() CustomLabels {
	return CustomLabels{
		AnalyzeAds:    "Analisar Anúncios",
		TalkToMe:      "Converse Comigo!",
		TalkToAnalyst: "Falar com Analista",
		Spot1:         "SPOT 1",
		Spot2:         "SPOT 2",
		Spot3:         "SPOT 3",
	}
}

// AppTheme selects the panel color scheme.
type AppTheme string

const (
	ThemeDefault   AppTheme = "theme-padrao"
	ThemeSummer    AppTheme = "theme-verao"
	ThemeWinter    AppTheme = "theme-inverno"
	ThemeChristmas AppTheme = "theme-natal"
	ThemeSpecial   AppTheme = "theme-especial"
)

// ValidTheme reports whether t is a known theme.
func ValidTheme(t AppTheme) bool {
	switch t {
	case ThemeDefault, ThemeSummer, ThemeWinter, ThemeChristmas, ThemeSpecial:
		return true
	}
	return false
}
