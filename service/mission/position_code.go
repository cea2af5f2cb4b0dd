package mission

import (
	"strconv"
	"strings"
)

// Humanize turns a raw position code into the compact label printed on the shelves.
// In the first hyphen segment the two-digit pairs at offsets 0 and 3 become the character with that
// code point, so "86265-21-1-3" reads "V2A-21-1-3". Segments of 2 to 4 characters only convert the
// leading pair. Pairs that are not digits or fall outside 32..126 are kept as they are.
func Humanize(code string) string {
	if code == "" || code == "UNKNOWN" {
		return code
	}
	first, rest, hasRest := strings.Cut(code, "-")
	if len(first) < 2 {
		return code
	}

	var b strings.Builder
	b.WriteString(pairToChar(first[0:2]))
	if len(first) >= 5 {
		b.WriteByte(first[2])
		b.WriteString(pairToChar(first[3:5]))
		b.WriteString(first[5:])
	} else {
		b.WriteString(first[2:])
	}
	if hasRest {
		b.WriteByte('-')
		b.WriteString(rest)
	}
	return b.String()
}

func pairToChar(pair string) string {
	if len(pair) != 2 || !isDigit(pair[0]) || !isDigit(pair[1]) {
		return pair
	}
	n, err := strconv.Atoi(pair)
	if err != nil || n < 32 || n > 126 {
		return pair
	}
	return string(rune(n))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
