package indexer

import (
	"path/filepath"
	"strings"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// DetectLanguage maps a file extension to a language tag.
func DetectLanguage(filePath string) (extraction.Language, bool) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".java":
		return extraction.LanguageJava, true
	case ".py", ".pyi":
		return extraction.LanguagePython, true
	case ".php":
		return extraction.LanguagePHP, true
	case ".ts", ".tsx", ".mts", ".cts":
		return extraction.LanguageTypeScript, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return extraction.LanguageJavaScript, true
	case ".rb":
		return extraction.LanguageRuby, true
	default:
		return "", false
	}
}
