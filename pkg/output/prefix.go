package output

import (
	"fmt"
	"unicode/utf8"
)

// AliasWidth returns the length in runes of the longest alias
func AliasWidth(aliases []string) int {
	width := 0
	for _, alias := range aliases {
		if n := utf8.RuneCountInString(alias); n > width {
			width = n
		}
	}
	return width
}

// Prefix returns "[alias]" right-padded with spaces to width+2 runes,
// so prefixes of every process line up in one column.
func Prefix(alias string, width int) string {
	return fmt.Sprintf("%-*s", width+2, "["+alias+"]")
}

// FormatLine renders one output line without color
func FormatLine(prefix, line string) string {
	return prefix + " " + line
}
