// Package theme derives the terminal palette of the interactive browser from
// the stored preferences.
package theme

import (
	"context"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
	"github.com/rbacctl/rbacctl/internal/preferences"
)

// Token represents a semantic color slot within the CLI.
type Token string

const (
	ColorTextPrimary Token = "text.primary"
	ColorTextMuted   Token = "text.muted"
	ColorBorder      Token = "border"
	ColorSurface     Token = "surface"
	ColorPrimary     Token = "primary"
	ColorPrimaryText Token = "primary.text"
	ColorSuccess     Token = "success"
	ColorWarning     Token = "warning"
	ColorDanger      Token = "danger"
	ColorDangerText  Token = "danger.text"
	ColorHighlight   Token = "highlight"
)

// Palette is a resolved theme.
type Palette struct {
	Name   string
	Dark   bool
	Colors map[Token]string
	// Padding is the horizontal cell padding derived from the font size.
	Padding int
	// Animate reports whether spinners tick.
	Animate bool
}

// Color returns the hex color of token, falling back to the base palette.
func (p Palette) Color(token Token) string {
	if c, ok := p.Colors[token]; ok && c != "" {
		return c
	}
	base := lightBase
	if p.Dark {
		base = darkBase
	}
	if c, ok := base[token]; ok {
		return c
	}
	return "#FFFFFF"
}

// ForegroundStyle returns a lipgloss style with the foreground set to the requested token.
func (p Palette) ForegroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color(token)))
}

// BackgroundStyle returns a lipgloss style with the background set to the requested token.
func (p Palette) BackgroundStyle(token Token) lipgloss.Style {
	return lipgloss.NewStyle().Background(lipgloss.Color(p.Color(token)))
}

// GlamourStyle names the glamour style matching the palette.
func (p Palette) GlamourStyle() string {
	if p.Dark {
		return "dark"
	}
	return "light"
}

// BackgroundDetector reports whether the terminal background is dark.
type BackgroundDetector func() bool

// TerminalBackground queries the terminal through termenv.
func TerminalBackground() bool {
	return termenv.HasDarkBackground()
}

// Resolve builds the palette for prefs. detect is only consulted for the
// system theme and may be nil, which means light.
func Resolve(prefs preferences.Preferences, detect BackgroundDetector) Palette {
	dark := false
	switch prefs.Theme {
	case preferences.ThemeDark:
		dark = true
	case preferences.ThemeLight:
	default:
		if detect != nil {
			dark = detect()
		}
	}

	name := preferences.ThemeLight
	base := lightBase
	if dark {
		name, base = preferences.ThemeDark, darkBase
	}

	colors := make(map[Token]string, len(base)+2)
	for k, v := range base {
		colors[k] = v
	}

	primary := primaryHex(prefs.PrimaryColor, dark)
	colors[ColorPrimary] = primary
	colors[ColorPrimaryText] = contrastColor(primary)
	colors[ColorHighlight] = blendHex(primary, colors[ColorSurface], 0.8)

	return Palette{
		Name:    name + "/" + strings.ToLower(prefs.PrimaryColor),
		Dark:    dark,
		Colors:  colors,
		Padding: padding(prefs.FontSize),
		Animate: prefs.Animation,
	}
}

func padding(fontSize string) int {
	switch fontSize {
	case preferences.FontSmall:
		return 0
	case preferences.FontLarge:
		return 2
	default:
		return 1
	}
}

type contextKey struct{}

// ContextWithPalette stores the palette on the context.
func ContextWithPalette(ctx context.Context, p Palette) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the palette stored on the context or the default light
// palette.
func FromContext(ctx context.Context) Palette {
	if ctx != nil {
		if p, ok := ctx.Value(contextKey{}).(Palette); ok {
			return p
		}
	}
	return Resolve(preferences.Defaults(), nil)
}

var primaries = map[string][2]string{
	"blue":   {"#1D4ED8", "#60A5FA"},
	"green":  {"#15803D", "#4ADE80"},
	"purple": {"#7E22CE", "#C084FC"},
	"orange": {"#C2410C", "#FB923C"},
	"red":    {"#B91C1C", "#F87171"},
	"teal":   {"#0F766E", "#2DD4BF"},
}

func primaryHex(name string, dark bool) string {
	pair, ok := primaries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		pair = primaries["blue"]
	}
	if dark {
		return pair[1]
	}
	return pair[0]
}

var lightBase = map[Token]string{
	ColorTextPrimary: "#111827",
	ColorTextMuted:   "#6B7280",
	ColorBorder:      "#D1D5DB",
	ColorSurface:     "#FFFFFF",
	ColorSuccess:     "#15803D",
	ColorWarning:     "#B45309",
	ColorDanger:      "#B91C1C",
	ColorDangerText:  "#FFFFFF",
}

var darkBase = map[Token]string{
	ColorTextPrimary: "#F3F4F6",
	ColorTextMuted:   "#9CA3AF",
	ColorBorder:      "#374151",
	ColorSurface:     "#111827",
	ColorSuccess:     "#4ADE80",
	ColorWarning:     "#FBBF24",
	ColorDanger:      "#F87171",
	ColorDangerText:  "#111827",
}

func normalizeHex(hex string) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
	switch len(trimmed) {
	case 0:
		return ""
	case 3:
		var b strings.Builder
		b.WriteString("#")
		for _, r := range trimmed {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		return strings.ToUpper(b.String())
	default:
		if len(trimmed) > 6 {
			trimmed = trimmed[:6]
		}
		return "#" + strings.ToUpper(trimmed)
	}
}

// contrastColor picks near black or near white text for a background.
func contrastColor(hex string) string {
	c, err := colorful.Hex(normalizeHex(hex))
	if err != nil {
		return "#121418"
	}
	if relativeLuminance(c) > 0.4 {
		return "#121418"
	}
	return "#F8F8F8"
}

func blendHex(from, to string, amount float64) string {
	a, err := colorful.Hex(normalizeHex(from))
	if err != nil {
		return normalizeHex(to)
	}
	b, err := colorful.Hex(normalizeHex(to))
	if err != nil {
		return normalizeHex(from)
	}
	return strings.ToUpper(a.BlendLab(b, clampFloat(amount, 0, 1)).Clamped().Hex())
}

func clampFloat(val, minVal, maxVal float64) float64 {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func relativeLuminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
