package catalog

import "strings"

// LanguageAll is the sentinel filter value meaning "no language filter".
const LanguageAll = "all"

// NormalizeLanguage maps user input to the stored language tag (upper case).
// Empty and "all" both mean no filter and return "".
func NormalizeLanguage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, LanguageAll) {
		return ""
	}
	return strings.ToUpper(s)
}
