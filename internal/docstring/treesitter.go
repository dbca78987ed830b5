package docstring

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammars lists the tree-sitter languages compiled into the binary, keyed by
// the language name used in configuration.
var grammars = map[string]func() *sitter.Language{
	"python":     python.GetLanguage,
	"go":         golang.GetLanguage,
	"typescript": typescript.GetLanguage,
	"javascript": typescript.GetLanguage,
}

// HasGrammar reports whether a tree-sitter grammar is available for name.
func HasGrammar(name string) bool {
	_, ok := grammars[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// TreeSitterExtractor parses files with a tree-sitter grammar and reads the
// leading comment or docstring nodes off the syntax tree.
type TreeSitterExtractor struct {
	language *sitter.Language
	syntax   Syntax
	fallback Extractor
}

func newTreeSitterExtractor(lang Language, fallback Extractor) (*TreeSitterExtractor, error) {
	grammar, ok := grammars[strings.ToLower(strings.TrimSpace(lang.Name))]
	if !ok {
		return nil, fmt.Errorf("docstring: no tree-sitter grammar for %s", lang.Name)
	}
	return &TreeSitterExtractor{
		language: grammar(),
		syntax:   lang.Syntax,
		fallback: fallback,
	}, nil
}

// Extract implements Extractor.
func (e *TreeSitterExtractor) Extract(ctx context.Context, src []byte) (string, bool, error) {
	src = normalizeSource(src)
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.language)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		return e.fallback.Extract(ctx, src)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return e.fallback.Extract(ctx, src)
	}
	if e.syntax.Docstring {
		if root.HasError() {
			return e.fallback.Extract(ctx, src)
		}
		if doc, ok := docstringNode(root, src); ok {
			return doc, true, nil
		}
	}
	doc, ok := leadingCommentNodes(root, src, e.syntax)
	return doc, ok, nil
}

// docstringNode returns the module docstring: the first statement, ignoring
// comments, must be a bare string expression, possibly implicitly
// concatenated.
func docstringNode(root *sitter.Node, src []byte) (string, bool) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if child.Type() != "expression_statement" || child.NamedChildCount() != 1 {
			return "", false
		}
		str := child.NamedChild(0)
		switch str.Type() {
		case "string":
			return pythonStringValue(str.Content(src))
		case "concatenated_string":
			var parts []string
			for j := 0; j < int(str.NamedChildCount()); j++ {
				if part := str.NamedChild(j); part.Type() == "string" {
					parts = append(parts, part.Content(src))
				}
			}
			return joinPythonLiterals(parts)
		}
		return "", false
	}
	return "", false
}

// leadingCommentNodes collects the first run of comment nodes. The run must
// begin at the first non-preamble node and continue on consecutive rows.
func leadingCommentNodes(root *sitter.Node, src []byte, syn Syntax) (string, bool) {
	var run []*sitter.Node
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if len(run) == 0 {
			if child.Type() == "hash_bang_line" {
				continue
			}
			if child.Type() != "comment" {
				return "", false
			}
			text := strings.TrimSpace(child.Content(src))
			if isDirective(text) || isShebangOrEncoding(child, text) {
				continue
			}
			run = append(run, child)
			if syn.BlockStart != "" && strings.HasPrefix(text, syn.BlockStart) {
				break
			}
			continue
		}
		prev := run[len(run)-1]
		text := strings.TrimSpace(child.Content(src))
		if child.Type() != "comment" ||
			child.StartPoint().Row != prev.EndPoint().Row+1 ||
			isDirective(text) ||
			(syn.BlockStart != "" && strings.HasPrefix(text, syn.BlockStart)) {
			break
		}
		run = append(run, child)
	}
	if len(run) == 0 {
		return "", false
	}
	first := strings.TrimSpace(run[0].Content(src))
	if syn.BlockStart != "" && strings.HasPrefix(first, syn.BlockStart) {
		return nonEmpty(cleanBlockComment(first, syn))
	}
	lines := make([]string, 0, len(run))
	for _, node := range run {
		lines = append(lines, strings.TrimSpace(node.Content(src)))
	}
	return nonEmpty(cleanLineComments(lines, syn.LineComments))
}

func isShebangOrEncoding(node *sitter.Node, text string) bool {
	row := node.StartPoint().Row
	if row == 0 && strings.HasPrefix(text, "#!") {
		return true
	}
	return row < 2 && encodingLine.MatchString(text)
}
