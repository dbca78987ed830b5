package docstring

import (
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/runenames"
)

// scanPythonDocstring finds a module docstring without a parser: comments and
// blank lines may precede it, but the first real statement must be a string
// literal. Without a docstring, the leading # block is used instead.
func scanPythonDocstring(lines []string, syn Syntax) (string, bool) {
	if doc, ok := leadingDocstring(lines); ok {
		return doc, true
	}
	return scanLeadingComment(lines, syn)
}

func leadingDocstring(lines []string) (string, bool) {
	i := 0
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		break
	}
	if i >= len(lines) {
		return "", false
	}
	rest := strings.TrimLeft(strings.Join(lines[i:], "\n"), " \t")

	// Adjacent literals on one logical line are a single string.
	var parts []string
	for {
		literal, ok := leadingStringLiteral(rest)
		if !ok {
			break
		}
		parts = append(parts, literal)
		rest = strings.TrimLeft(rest[len(literal):], " \t")
	}
	if len(parts) == 0 || !statementEnds(rest) {
		return "", false
	}
	return joinPythonLiterals(parts)
}

// statementEnds reports whether nothing but a comment or a statement
// separator follows on the current line, so the literal is a bare expression.
func statementEnds(rest string) bool {
	line, _, _ := strings.Cut(rest, "\n")
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";")
}

// leadingStringLiteral returns the string literal at the start of src,
// including its prefix and quotes.
func leadingStringLiteral(src string) (string, bool) {
	prefixLen := stringPrefixLen(src)
	body := src[prefixLen:]
	quote := openingQuote(body)
	if quote == "" {
		return "", false
	}
	end := closingQuote(body, quote)
	if end < 0 {
		return "", false
	}
	return src[:prefixLen+end+len(quote)], true
}

// pythonStringValue converts a single literal into the docstring text.
func pythonStringValue(literal string) (string, bool) {
	return joinPythonLiterals([]string{literal})
}

// joinPythonLiterals concatenates implicitly joined literals. Bytes and
// f-strings are not docstrings.
func joinPythonLiterals(literals []string) (string, bool) {
	var b strings.Builder
	for _, literal := range literals {
		value, ok := decodePythonLiteral(literal)
		if !ok {
			return "", false
		}
		b.WriteString(value)
	}
	return nonEmpty(strings.Trim(b.String(), "\n"))
}

func decodePythonLiteral(literal string) (string, bool) {
	prefixLen := stringPrefixLen(literal)
	prefix := strings.ToLower(literal[:prefixLen])
	if strings.ContainsAny(prefix, "bf") {
		return "", false
	}
	body := literal[prefixLen:]
	quote := openingQuote(body)
	if quote == "" || len(body) < 2*len(quote) {
		return "", false
	}
	value := body[len(quote) : len(body)-len(quote)]
	if strings.Contains(prefix, "r") {
		return value, true
	}
	return unescapePython(value), true
}

func stringPrefixLen(src string) int {
	n := 0
	for n < len(src) && n < 2 && strings.ContainsRune("rRuUbBfF", rune(src[n])) {
		n++
	}
	if n < len(src) && (src[n] == '"' || src[n] == '\'') {
		return n
	}
	return 0
}

func openingQuote(body string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(body, q) {
			return q
		}
	}
	return ""
}

// closingQuote returns the index in body where the closing quote starts.
func closingQuote(body, quote string) int {
	for i := len(quote); i < len(body); i++ {
		switch {
		case body[i] == '\\':
			i++
		case len(quote) == 1 && body[i] == '\n':
			return -1
		case strings.HasPrefix(body[i:], quote):
			return i
		}
	}
	return -1
}

var simpleEscapes = map[byte]string{
	'\n': "",
	'\\': `\`,
	'\'': "'",
	'"':  `"`,
	'a':  "\a",
	'b':  "\b",
	'f':  "\f",
	'n':  "\n",
	'r':  "\r",
	't':  "\t",
	'v':  "\v",
}

var hexEscapeWidth = map[byte]int{'x': 2, 'u': 4, 'U': 8}

// unescapePython decodes the escape sequences of a non-raw str literal.
// Unknown or malformed escapes are kept verbatim.
func unescapePython(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		if repl, ok := simpleEscapes[next]; ok {
			b.WriteString(repl)
			i++
			continue
		}
		switch {
		case next >= '0' && next <= '7':
			j := i + 1
			for j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i+1:j], 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
			continue
		case hexEscapeWidth[next] > 0:
			width := hexEscapeWidth[next]
			if i+2+width <= len(s) {
				v, err := strconv.ParseUint(s[i+2:i+2+width], 16, 32)
				if err == nil && utf8.ValidRune(rune(v)) {
					b.WriteRune(rune(v))
					i += 1 + width
					continue
				}
			}
		case next == 'N':
			if r, n, ok := namedEscape(s[i+2:]); ok {
				b.WriteRune(r)
				i += 1 + n
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// namedEscape decodes the {NAME} part of a \N escape and returns the number
// of bytes it spans.
func namedEscape(rest string) (rune, int, bool) {
	if !strings.HasPrefix(rest, "{") {
		return 0, 0, false
	}
	end := strings.IndexByte(rest, '}')
	if end < 0 {
		return 0, 0, false
	}
	r, ok := lookupRuneName(rest[1:end])
	return r, end + 1, ok
}

var (
	runeNamesOnce sync.Once
	runeNames     map[string]rune
)

// lookupRuneName maps a Unicode character name to its rune. The reverse
// table is built on first use.
func lookupRuneName(name string) (rune, bool) {
	runeNamesOnce.Do(func() {
		runeNames = make(map[string]rune, 1<<15)
		for r := rune(0); r <= unicode.MaxRune; r++ {
			if n := runenames.Name(r); n != "" && !strings.HasPrefix(n, "<") {
				runeNames[n] = r
			}
		}
	})
	r, ok := runeNames[strings.ToUpper(strings.TrimSpace(name))]
	return r, ok
}
