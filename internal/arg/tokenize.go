package arg

import (
	"strings"
	"unicode"
)

// regexFlags are the modifiers allowed after the closing slash of a /pattern/ literal.
const regexFlags = "gimy"

// Tokenize splits input on unquoted whitespace. Double and single quoted sections, backslash
// escaped whitespace and /pattern/ literals stay inside a single token, and quotes are kept in the
// returned tokens. An unterminated quote is treated as a plain character.
func Tokenize(input string) []string {
	var (
		tokens []string
		b      strings.Builder
	)
	rs := []rune(input)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			if b.Len() > 0 {
				tokens = append(tokens, b.String())
				b.Reset()
			}
		case r == '\\' && i+1 < len(rs):
			b.WriteRune(r)
			b.WriteRune(rs[i+1])
			i++
		case r == '"' || r == '\'':
			end := closing(rs, i, r)
			if end < 0 {
				b.WriteRune(r)
				continue
			}
			b.WriteString(string(rs[i : end+1]))
			i = end
		case r == '/':
			end := regexEnd(rs, i)
			if end < 0 {
				b.WriteRune(r)
				continue
			}
			b.WriteString(string(rs[i : end+1]))
			i = end
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// closing returns the index of the first unescaped q after start, or -1.
func closing(rs []rune, start int, q rune) int {
	for j := start + 1; j < len(rs); j++ {
		switch rs[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return -1
}

// regexEnd returns the index of the last rune of a /pattern/flags literal beginning at start. The
// literal must be followed by whitespace or the end of input.
func regexEnd(rs []rune, start int) int {
	end := closing(rs, start, '/')
	if end < 0 {
		return -1
	}
	k := end + 1
	for k < len(rs) && strings.ContainsRune(regexFlags, rs[k]) {
		k++
	}
	if k < len(rs) && !unicode.IsSpace(rs[k]) {
		return -1
	}
	return k - 1
}

// Unquote strips a single layer of matching surrounding quotes from s and unescapes the quote
// character inside them. Other backslashes are kept, so quoted and unquoted values agree. Strings
// that are not wrapped in matching quotes are returned trimmed but otherwise unchanged.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], `\`+string(q), string(q))
}
