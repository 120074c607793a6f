// Package language holds the set of programming languages a snip can be
// written in: the key stored on the snip, the label shown to users and the
// name the syntax highlighter knows the language by.
package language

import (
	"sort"
	"strings"
)

// Plaintext is the key used when a snip has no language.
const Plaintext = "plaintext"

// Language describes one supported syntax.
type Language struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Lexer string `json:"-"`
}

var known = map[string]Language{
	"bash":        {Key: "bash", Label: "Bash", Lexer: "bash"},
	"c":           {Key: "c", Label: "C", Lexer: "c"},
	"clojure":     {Key: "clojure", Label: "Clojure", Lexer: "clojure"},
	"cpp":         {Key: "cpp", Label: "C++", Lexer: "cpp"},
	"csharp":      {Key: "csharp", Label: "C#", Lexer: "csharp"},
	"css":         {Key: "css", Label: "CSS", Lexer: "css"},
	"diff":        {Key: "diff", Label: "Diff", Lexer: "diff"},
	"dockerfile":  {Key: "dockerfile", Label: "Dockerfile", Lexer: "dockerfile"},
	"go":          {Key: "go", Label: "Go", Lexer: "go"},
	"graphql":     {Key: "graphql", Label: "GraphQL", Lexer: "graphql"},
	"ini":         {Key: "ini", Label: "ini", Lexer: "ini"},
	"java":        {Key: "java", Label: "Java", Lexer: "java"},
	"javascript":  {Key: "javascript", Label: "JavaScript", Lexer: "javascript"},
	"json":        {Key: "json", Label: "JSON", Lexer: "json"},
	"kotlin":      {Key: "kotlin", Label: "Kotlin", Lexer: "kotlin"},
	"less":        {Key: "less", Label: "LESS", Lexer: "css"},
	"lua":         {Key: "lua", Label: "Lua", Lexer: "lua"},
	"makefile":    {Key: "makefile", Label: "Makefile", Lexer: "makefile"},
	"markdown":    {Key: "markdown", Label: "Markdown", Lexer: "markdown"},
	"mathematica": {Key: "mathematica", Label: "Mathematica", Lexer: "mathematica"},
	"matlab":      {Key: "matlab", Label: "Matlab", Lexer: "matlab"},
	"objectivec":  {Key: "objectivec", Label: "Objective-C", Lexer: "objectivec"},
	"perl":        {Key: "perl", Label: "Perl", Lexer: "perl"},
	"pgsql":       {Key: "pgsql", Label: "pgSQL", Lexer: "postgresql"},
	"php":         {Key: "php", Label: "PHP", Lexer: "php"},
	"plaintext":   {Key: "plaintext", Label: "Plain text", Lexer: "plaintext"},
	"powershell":  {Key: "powershell", Label: "Power Shell", Lexer: "powershell"},
	"python":      {Key: "python", Label: "Python", Lexer: "python"},
	"r":           {Key: "r", Label: "R", Lexer: "r"},
	"ruby":        {Key: "ruby", Label: "Ruby", Lexer: "ruby"},
	"rust":        {Key: "rust", Label: "Rust", Lexer: "rust"},
	"scss":        {Key: "scss", Label: "SCSS", Lexer: "scss"},
	"shell":       {Key: "shell", Label: "Shell", Lexer: "bash"},
	"sql":         {Key: "sql", Label: "SQL", Lexer: "sql"},
	"swift":       {Key: "swift", Label: "Swift", Lexer: "swift"},
	"typescript":  {Key: "typescript", Label: "TypeScript", Lexer: "typescript"},
	"vbnet":       {Key: "vbnet", Label: "VB.Net", Lexer: "vbnet"},
	"xml":         {Key: "xml", Label: "XML", Lexer: "xml"},
	"yaml":        {Key: "yaml", Label: "YAML", Lexer: "yaml"},
}

// Normalize lower-cases and trims a language key. An empty key becomes Plaintext.
func Normalize(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return Plaintext
	}
	return key
}

// Lookup returns the language registered under key (case-insensitive).
func Lookup(key string) (Language, bool) {
	l, ok := known[Normalize(key)]
	return l, ok
}

// IsKnown reports whether key names a supported language.
func IsKnown(key string) bool {
	_, ok := Lookup(key)
	return ok
}

// Label returns the display label for key. Unknown keys are shown as given.
func Label(key string) string {
	if l, ok := Lookup(key); ok {
		return l.Label
	}
	return key
}

// LexerName returns the highlighter name for key. Unknown keys are passed
// through so the highlighter can try them directly.
func LexerName(key string) string {
	if l, ok := Lookup(key); ok {
		return l.Lexer
	}
	return Normalize(key)
}

// All returns every supported language ordered by key.
func All() []Language {
	out := make([]Language, 0, len(known))
	for _, l := range known {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
