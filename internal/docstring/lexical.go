package docstring

import (
	"bytes"
	"context"
	"regexp"
	"strings"
)

// LexicalExtractor finds the leading comment block by scanning lines.
type LexicalExtractor struct {
	Syntax Syntax
}

// PEP 263 style encoding declaration, only honoured on the first two lines.
var encodingLine = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*[-_.a-zA-Z0-9]+`)

// Extract implements Extractor.
func (e *LexicalExtractor) Extract(ctx context.Context, src []byte) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	lines := splitLines(src)
	if e.Syntax.Docstring {
		doc, ok := scanPythonDocstring(lines, e.Syntax)
		return doc, ok, nil
	}
	doc, ok := scanLeadingComment(lines, e.Syntax)
	return doc, ok, nil
}

func splitLines(src []byte) []string {
	return strings.Split(string(normalizeSource(src)), "\n")
}

// normalizeSource strips a UTF-8 BOM and converts CRLF line endings to LF so
// every extractor sees the same text.
func normalizeSource(src []byte) []byte {
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	if bytes.IndexByte(src, '\r') < 0 {
		return src
	}
	return bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
}

// isPreamble reports lines that may sit above the documentation without
// breaking adjacency: shebangs, encoding declarations and build directives.
func isPreamble(idx int, line string) bool {
	trimmed := strings.TrimSpace(line)
	if idx == 0 && strings.HasPrefix(trimmed, "#!") {
		return true
	}
	if idx < 2 && encodingLine.MatchString(line) {
		return true
	}
	return isDirective(trimmed)
}

func isDirective(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//go:build") || strings.HasPrefix(trimmed, "// +build")
}

// scanLeadingComment returns the first comment block when it is the first
// non-blank content after the preamble. A comment that appears only after
// code does not count.
func scanLeadingComment(lines []string, syn Syntax) (string, bool) {
	i := 0
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" || isPreamble(i, lines[i]) {
			continue
		}
		break
	}
	if i >= len(lines) {
		return "", false
	}
	first := strings.TrimSpace(lines[i])

	if syn.BlockStart != "" && strings.HasPrefix(first, syn.BlockStart) {
		var block []string
		for ; i < len(lines); i++ {
			block = append(block, lines[i])
			body := strings.TrimSpace(lines[i])
			if len(block) == 1 {
				body = strings.TrimPrefix(body, syn.BlockStart)
			}
			if strings.Contains(body, syn.BlockEnd) {
				return nonEmpty(cleanBlockComment(strings.Join(block, "\n"), syn))
			}
		}
		// Unterminated block comments are not documentation.
		return "", false
	}

	prefix := matchPrefix(first, syn.LineComments)
	if prefix == "" {
		return "", false
	}
	var run []string
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if isDirective(trimmed) || matchPrefix(trimmed, syn.LineComments) == "" {
			break
		}
		run = append(run, trimmed)
	}
	return nonEmpty(cleanLineComments(run, syn.LineComments))
}

// matchPrefix returns the longest configured prefix the line starts with.
func matchPrefix(line string, prefixes []string) string {
	best := ""
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(line, p) && len(p) > len(best) {
			best = p
		}
	}
	return best
}

func cleanLineComments(lines []string, prefixes []string) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		body := strings.TrimPrefix(trimmed, matchPrefix(trimmed, prefixes))
		body = strings.TrimPrefix(body, " ")
		out = append(out, strings.TrimRight(body, " \t"))
	}
	return trimBlankEdges(out)
}

func cleanBlockComment(text string, syn Syntax) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, syn.BlockStart)
	if idx := strings.LastIndex(text, syn.BlockEnd); idx >= 0 {
		text = text[:idx]
	}
	lines := strings.Split(text, "\n")
	starred := len(lines) > 1
	for _, line := range lines[1:] {
		t := strings.TrimSpace(line)
		if t != "" && !strings.HasPrefix(t, "*") {
			starred = false
			break
		}
	}
	out := make([]string, 0, len(lines))
	for idx, line := range lines {
		if idx == 0 {
			// Javadoc openers ("/**") leave a stray star behind.
			line = strings.TrimLeft(line, "*")
		} else if starred {
			line = strings.TrimPrefix(strings.TrimSpace(line), "*")
		}
		line = strings.TrimRight(line, " \t")
		if idx == 0 || starred {
			line = strings.TrimPrefix(line, " ")
		}
		out = append(out, line)
	}
	return trimBlankEdges(out)
}

func trimBlankEdges(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func nonEmpty(doc string) (string, bool) {
	if strings.TrimSpace(doc) == "" {
		return "", false
	}
	return doc, true
}
