package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Content-stream text recovery. A decoded stream interleaves string
// operands with operators; the text-showing operators are Tj, TJ, '
// and ". The structured pass keeps only operands consumed by one of
// those, the sweep pass keeps every string operand it can decode.

// parseTextOperators walks the stream and concatenates the operands of
// text-showing operators in stream order. TD/Td/T* motions are treated
// as line breaks so words do not fuse across positioning.
func parseTextOperators(stream []byte) string {
	var out strings.Builder
	var pending []string

	i := 0
	for i < len(stream) {
		c := stream[i]
		switch {
		case c == '(':
			s, next := readLiteralString(stream, i)
			pending = append(pending, s)
			i = next
		case c == '<' && i+1 < len(stream) && stream[i+1] != '<':
			s, next := readHexString(stream, i)
			pending = append(pending, s)
			i = next
		case c == '[':
			// Array operand, usually for TJ; elements were already
			// collected as they were read.
			i++
		case isOperatorStart(c):
			op, next := readToken(stream, i)
			switch op {
			case "Tj", "TJ", "'", "\"":
				for _, s := range pending {
					out.WriteString(s)
				}
				out.WriteString(" ")
				pending = pending[:0]
			case "Td", "TD", "T*", "ET":
				out.WriteString("\n")
				pending = pending[:0]
			default:
				pending = pending[:0]
			}
			i = next
		default:
			i++
		}
	}
	return cleanRecovered(out.String())
}

// sweepStringOperands decodes every string operand in the stream
// regardless of operator context. Used when the operator structure is
// mangled but the strings themselves survive.
func sweepStringOperands(stream []byte) string {
	var out strings.Builder
	i := 0
	for i < len(stream) {
		switch {
		case stream[i] == '(':
			s, next := readLiteralString(stream, i)
			if s != "" {
				out.WriteString(s)
				out.WriteString(" ")
			}
			i = next
		case stream[i] == '<' && i+1 < len(stream) && stream[i+1] != '<':
			s, next := readHexString(stream, i)
			if s != "" {
				out.WriteString(s)
				out.WriteString(" ")
			}
			i = next
		default:
			i++
		}
	}
	return cleanRecovered(out.String())
}

// readLiteralString decodes a parenthesized string starting at open.
// Returns the decoded text and the index after the closing parenthesis.
func readLiteralString(stream []byte, open int) (string, int) {
	var b strings.Builder
	depth := 0
	i := open
	for i < len(stream) {
		c := stream[i]
		switch c {
		case '\\':
			if i+1 < len(stream) {
				b.WriteByte(unescape(stream[i+1]))
				i += 2
				continue
			}
			i++
		case '(':
			depth++
			if depth > 1 {
				b.WriteByte(c)
			}
			i++
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

// readHexString decodes a <...> hex string starting at open. Byte pairs
// are decoded as Latin-1; multi-byte CID text is recognizer territory.
func readHexString(stream []byte, open int) (string, int) {
	var digits []byte
	i := open + 1
	for i < len(stream) && stream[i] != '>' {
		c := stream[i]
		if isHexDigit(c) {
			digits = append(digits, c)
		}
		i++
	}
	if i < len(stream) {
		i++ // consume '>'
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	var b strings.Builder
	for j := 0; j+1 < len(digits); j += 2 {
		b.WriteByte(hexValue(digits[j])<<4 | hexValue(digits[j+1]))
	}
	return b.String(), i
}

// readToken reads an operator or keyword token starting at i.
func readToken(stream []byte, i int) (string, int) {
	start := i
	for i < len(stream) && isOperatorStart(stream[i]) {
		i++
	}
	return string(stream[start:i]), i
}

func isOperatorStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '\'' || c == '"' || c == '*'
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		return c
	}
}

// cleanRecovered drops undecodable bytes and collapses whitespace runs.
// Recovered streams carry encoding artifacts that would otherwise
// pollute the index.
func cleanRecovered(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace, sawNewline := false, false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if unicode.IsControl(r) && r != '\n' {
			continue
		}
		if unicode.IsSpace(r) {
			inSpace = true
			if r == '\n' {
				sawNewline = true
			}
			continue
		}
		// A whitespace run collapses to one newline if it held one,
		// otherwise to one space.
		if inSpace && b.Len() > 0 {
			if sawNewline {
				b.WriteRune('\n')
			} else {
				b.WriteRune(' ')
			}
		}
		inSpace, sawNewline = false, false
		b.WriteRune(r)
	}
	return b.String()
}

// letterRatio is the fraction of runes that are letters. Extraction of
// a scanned page without a text layer tends to produce operator soup
// with a very low ratio.
func letterRatio(s string) float64 {
	var letters, total int
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}
