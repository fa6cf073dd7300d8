package judge

import "strings"

// DefaultLanguage is assumed when a submission omits its language.
const DefaultLanguage = "cpp"

var judge0LanguageIDs = map[string]int{
	"javascript": 93,
	"python":     71,
	"java":       62,
	"cpp":        54,
}

// LanguageID maps a language name to its Judge0 identifier, falling back to C++.
func LanguageID(language string) int {
	if id, ok := judge0LanguageIDs[strings.ToLower(strings.TrimSpace(language))]; ok {
		return id
	}
	return judge0LanguageIDs[DefaultLanguage]
}

// NormalizeLanguage lowercases the language and applies the default when empty.
func NormalizeLanguage(language string) string {
	normalized := strings.ToLower(strings.TrimSpace(language))
	if normalized == "" {
		return DefaultLanguage
	}
	return normalized
}
