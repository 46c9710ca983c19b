package config

// Theme names accepted in UIConfig.Theme.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is light, dark, or auto (detected from the terminal).
	Theme string `yaml:"theme" validate:"omitempty,oneof=auto light dark"`
}
