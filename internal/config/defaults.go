package config

import "github.com/kingrea/ritual/internal/docstring"

const (
	defaultMaxDepth    = 6
	defaultMaxDocLines = 60
	defaultMaxDocChars = 4000
)

// .ritual is excluded so run history never changes the next snapshot.
var defaultExcludeDirs = []string{
	".git",
	".hg",
	".svn",
	".venv",
	"venv",
	".tox",
	".eggs",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".ruff_cache",
	"node_modules",
	"dist",
	"build",
	".idea",
	".vscode",
	RitualDir,
}

var defaultExcludeGlobs = []string{
	"**/*.pyc",
	"**/*.pyo",
	"**/*.pyd",
	"**/*.so",
	"**/*.dylib",
	"**/*.dll",
	"**/.DS_Store",
}

var (
	hashComments  = []string{"#"}
	slashComments = []string{"//"}
	cBlock        = &BlockComment{Start: "/*", End: "*/"}
)

func defaultLanguages() []LanguageConfig {
	treeSitter := string(docstring.ParserTreeSitter)
	lexical := string(docstring.ParserLexical)
	return []LanguageConfig{
		{Name: "python", Extensions: []string{".py", ".pyi"}, Parser: treeSitter, Docstring: true, LineComments: hashComments},
		{Name: "go", Extensions: []string{".go"}, Parser: treeSitter, LineComments: slashComments, BlockComment: cloneBlock(cBlock)},
		{Name: "typescript", Extensions: []string{".ts", ".mts", ".cts"}, Parser: treeSitter, LineComments: slashComments, BlockComment: cloneBlock(cBlock)},
		{Name: "javascript", Extensions: []string{".js", ".mjs", ".cjs"}, Parser: treeSitter, LineComments: slashComments, BlockComment: cloneBlock(cBlock)},
		{Name: "rust", Extensions: []string{".rs"}, Parser: lexical, LineComments: []string{"//!", "///", "//"}, BlockComment: cloneBlock(cBlock)},
		{Name: "c-family", Extensions: []string{".c", ".h", ".cc", ".cpp", ".hpp", ".java", ".kt", ".swift", ".cs"}, Parser: lexical, LineComments: slashComments, BlockComment: cloneBlock(cBlock)},
		{Name: "shell", Extensions: []string{".sh", ".bash", ".zsh"}, Parser: lexical, LineComments: hashComments},
		{Name: "ruby", Extensions: []string{".rb"}, Parser: lexical, LineComments: hashComments},
	}
}

func cloneBlock(b *BlockComment) *BlockComment {
	clone := *b
	return &clone
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Snapshot: SnapshotConfig{
			MaxDepth:     defaultMaxDepth,
			MaxDocLines:  defaultMaxDocLines,
			MaxDocChars:  defaultMaxDocChars,
			ExcludeDirs:  append([]string(nil), defaultExcludeDirs...),
			ExcludeGlobs: append([]string(nil), defaultExcludeGlobs...),
			Languages:    defaultLanguages(),
		},
	}
}
