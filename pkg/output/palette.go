package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// palette is assigned to processes cyclically in launch order
var palette = [...]color.Attribute{
	color.FgHiCyan,
	color.FgHiMagenta,
	color.FgHiBlue,
	color.FgHiYellow,
	color.FgHiGreen,
	color.FgHiRed,
	color.FgRed,
	color.FgGreen,
	color.FgYellow,
	color.FgBlue,
	color.FgMagenta,
	color.FgCyan,
}

// PaletteSize is the number of distinct process colors
const PaletteSize = len(palette)

// ColorMode controls when line colors are emitted
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Color when the destination is a terminal
	ColorAlways ColorMode = "always" // Always color
	ColorNever  ColorMode = "never"  // Never color
)

// ParseColorMode validates a color mode name
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(s); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (use auto, always or never)", s)
	}
}

// Enabled reports whether lines written to w should be colored
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Attribute returns the palette entry for the process launched at index
func Attribute(index int) color.Attribute {
	return palette[index%PaletteSize]
}

// Color returns the color for the process launched at index. The result
// ignores color's global NO_COLOR/TTY detection; enabled decides.
func Color(index int, enabled bool) *color.Color {
	c := color.New(Attribute(index))
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
