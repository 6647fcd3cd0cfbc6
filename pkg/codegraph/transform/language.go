package transform

import (
	"path/filepath"
	"strings"
)

var extLanguages = map[string]string{
	".js":    "javascript",
	".jsx":   "jsx",
	".ts":    "typescript",
	".tsx":   "tsx",
	".py":    "python",
	".java":  "java",
	".c":     "c",
	".cpp":   "cpp",
	".h":     "c",
	".hpp":   "cpp",
	".cs":    "csharp",
	".go":    "go",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".rs":    "rust",
	".html":  "html",
	".css":   "css",
	".scss":  "scss",
	".json":  "json",
	".md":    "markdown",
	".xml":   "xml",
	".yaml":  "yaml",
	".yml":   "yaml",
	".sh":    "shell",
	".bat":   "batch",
	".ps1":   "powershell",
}

// LanguageForPath returns the language implied by the file extension of path,
// or "" when the extension is not recognized. Matching is case-insensitive.
func LanguageForPath(path string) string {
	if path == "" {
		return ""
	}
	return extLanguages[strings.ToLower(filepath.Ext(path))]
}
