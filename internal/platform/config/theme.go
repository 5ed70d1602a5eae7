package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Theme holds the colours and typography applied as CSS variables on every page.
type Theme struct {
	BackgroundColor string `yaml:"background_color"`
	CardColor       string `yaml:"card_color"`
	TextColor       string `yaml:"text_color"`
	PrimaryColor    string `yaml:"primary_color"`
	SecondaryColor  string `yaml:"secondary_color"`
	FontFamily      string `yaml:"font_family"`
	FontSize        int    `yaml:"font_size"`
}

var (
	hexColorPattern   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	fontFamilyPattern = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)
)

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		BackgroundColor: "#f8fafc",
		CardColor:       "#ffffff",
		TextColor:       "#1e293b",
		PrimaryColor:    "#6366f1",
		SecondaryColor:  "#64748b",
		FontFamily:      "Outfit",
		FontSize:        16,
	}
}

// LoadTheme reads YAML overrides from path and merges them over DefaultTheme.
// An empty path returns the defaults.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	if strings.TrimSpace(path) == "" {
		return theme, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Theme{}, &ValidationError{fields: []string{"UI.ThemeFile"}}
	}
	if err != nil {
		return Theme{}, fmt.Errorf("config: read theme %s: %w", path, err)
	}

	var overrides Theme
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return Theme{}, fmt.Errorf("config: parse theme %s: %w", path, err)
	}
	return theme.Merge(overrides)
}

// Merge applies the non-empty fields of overrides. Values that could break out of a
// CSS declaration are rejected.
func (t Theme) Merge(overrides Theme) (Theme, error) {
	var invalid []string
	color := func(name string, dst *string, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		if !hexColorPattern.MatchString(value) {
			invalid = append(invalid, "Theme."+name)
			return
		}
		*dst = value
	}

	color("BackgroundColor", &t.BackgroundColor, overrides.BackgroundColor)
	color("CardColor", &t.CardColor, overrides.CardColor)
	color("TextColor", &t.TextColor, overrides.TextColor)
	color("PrimaryColor", &t.PrimaryColor, overrides.PrimaryColor)
	color("SecondaryColor", &t.SecondaryColor, overrides.SecondaryColor)

	if font := strings.TrimSpace(overrides.FontFamily); font != "" {
		if fontFamilyPattern.MatchString(font) {
			t.FontFamily = font
		} else {
			invalid = append(invalid, "Theme.FontFamily")
		}
	}
	if overrides.FontSize != 0 {
		if overrides.FontSize >= 8 && overrides.FontSize <= 48 {
			t.FontSize = overrides.FontSize
		} else {
			invalid = append(invalid, "Theme.FontSize")
		}
	}

	if len(invalid) > 0 {
		return Theme{}, &ValidationError{fields: invalid}
	}
	return t, nil
}
