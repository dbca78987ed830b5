package snapshot

import (
	"fmt"
	"strings"
)

const truncatedMarker = "… (truncated)"

// Render formats the report as markdown. With MissingOnly set, only files
// without documentation get a section, and the section is just the path.
func Render(r *Report, opts Options) string {
	opts = opts.withDefaults()

	var parts []string
	parts = append(parts,
		"# Codebase snapshot\n",
		fmt.Sprintf("**Root:** `%s`  \n", r.Root),
		fmt.Sprintf("**Focus:** `%s`  \n", r.Focus),
		fmt.Sprintf("**Source files scanned:** %d  \n", r.Scanned()),
		fmt.Sprintf("**Missing leading docs:** %d\n", len(r.Missing)),
		"## Project tree (root)\n",
		fence(r.Tree),
	)
	if len(r.FocusTree) > 0 {
		parts = append(parts, "## Focus tree\n", fence(r.FocusTree))
	}
	if len(r.Missing) > 0 {
		parts = append(parts, "## Missing leading docs\n", fence(r.Missing))
	}

	parts = append(parts, "## Leading docs\n")
	var blocks []string
	for _, f := range r.Files {
		if opts.MissingOnly {
			if !f.HasDoc {
				blocks = append(blocks, fmt.Sprintf("### %s\n", f.Path))
			}
			continue
		}
		blocks = append(blocks, renderFile(f, opts))
	}
	switch {
	case len(blocks) > 0:
		parts = append(parts, blocks...)
	case opts.MissingOnly && r.Scanned() > 0:
		parts = append(parts, "_Every scanned file has leading documentation._\n")
	default:
		parts = append(parts, "_No recognized source files found in focus._\n")
	}
	return strings.Join(parts, "\n")
}

func renderFile(f FileNode, opts Options) string {
	var body string
	switch {
	case f.ReadErr != nil:
		body = fmt.Sprintf("_Could not read file: %v_", f.ReadErr)
	case !f.HasDoc:
		body = "_No leading documentation found._"
	default:
		body = "```text\n" + Truncate(f.Doc, opts.MaxDocLines, opts.MaxDocChars) + "\n```"
	}
	return fmt.Sprintf("### %s\n\n%s\n", f.Path, body)
}

func fence(lines []string) string {
	return "```text\n" + strings.Join(lines, "\n") + "\n```\n"
}

// Truncate limits text to maxLines lines and then to maxChars characters,
// appending an ellipsis marker whenever something was cut.
func Truncate(text string, maxLines, maxChars int) string {
	lines := strings.Split(text, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = append(lines[:maxLines:maxLines], truncatedMarker)
	}
	out := strings.Join(lines, "\n")
	runes := []rune(out)
	if maxChars > 0 && len(runes) > maxChars {
		keep := maxChars - 20
		if keep < 0 {
			keep = 0
		}
		out = strings.TrimRight(string(runes[:keep]), " \t\n") + "\n" + truncatedMarker
	}
	return out
}
