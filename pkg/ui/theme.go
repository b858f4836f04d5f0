package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// transkriptTheme darkens the default palette and enlarges body text
type transkriptTheme struct {
	fyne.Theme
}

func newTheme() fyne.Theme {
	return &transkriptTheme{Theme: theme.DefaultTheme()}
}

func (t *transkriptTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 100, G: 140, B: 240, A: 255}
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 158, G: 206, B: 106, A: 255}
	}
	if variant == theme.VariantDark {
		switch name {
		case theme.ColorNameBackground:
			return color.NRGBA{R: 19, G: 26, B: 56, A: 255}
		case theme.ColorNameInputBackground:
			return color.NRGBA{R: 30, G: 36, B: 66, A: 255}
		case theme.ColorNameDisabled:
			return color.NRGBA{R: 180, G: 180, B: 180, A: 255}
		}
	}
	return t.Theme.Color(name, variant)
}

func (t *transkriptTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameText {
		return t.Theme.Size(name) * 1.2
	}
	return t.Theme.Size(name)
}
