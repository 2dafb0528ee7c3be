package monitor

import "strings"

// StripANSI removes terminal escape sequences from a line: CSI sequences
// (colors, cursor movement, clears), OSC sequences (titles, hyperlinks)
// and two-byte escapes. Printable text is left untouched.
func StripANSI(line string) string {
	if !strings.ContainsAny(line, "\x1b\u009b") {
		return line
	}

	var sb strings.Builder
	sb.Grow(len(line))

	i := 0
	for i < len(line) {
		b := line[i]
		switch {
		case b == 0x1B: // ESC
			i++
			if i >= len(line) {
				continue
			}
			switch next := line[i]; next {
			case '[': // CSI
				i = skipCSI(line, i+1)
			case ']': // OSC, terminated by BEL or ESC \
				i = skipOSC(line, i+1)
			case '(', ')': // Character set designation
				i += 2
			default:
				i++
			}
		case b == 0xC2 && i+1 < len(line) && line[i+1] == 0x9B: // C1 CSI (U+009B)
			i = skipCSI(line, i+2)
		default:
			sb.WriteByte(b)
			i++
		}
	}

	return sb.String()
}

// HasVisibleContent reports whether the line contains anything other
// than escape sequences and whitespace
func HasVisibleContent(line string) bool {
	return strings.TrimSpace(StripANSI(line)) != ""
}

// skipCSI returns the index after the CSI final byte (0x40-0x7E)
func skipCSI(s string, i int) int {
	for i < len(s) {
		c := s[i]
		i++
		if c >= 0x40 && c <= 0x7E {
			break
		}
	}
	return i
}

func skipOSC(s string, i int) int {
	for i < len(s) {
		if s[i] == 0x07 {
			return i + 1
		}
		if s[i] == 0x1B && i+1 < len(s) && s[i+1] == '\\' {
			return i + 2
		}
		i++
	}
	return i
}
