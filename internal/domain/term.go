package domain

import "strings"

// Term is a search query driving provider searches.
type Term string

// FolderKey returns the catalog key and filesystem bucket for the term.
func (t Term) FolderKey() string {
	return FolderKey(string(t))
}

// FolderKey lowercases the term and replaces spaces with underscores.
func FolderKey(term string) string {
	return strings.ToLower(strings.ReplaceAll(term, " ", "_"))
}

// LoadTerms builds the active term list from raw operator input.
// Blank lines and terms whose folder key is in satisfied are dropped;
// order and duplicates are preserved.
func LoadTerms(rawLines []string, satisfied map[string]struct{}) []Term {
	terms := make([]Term, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, done := satisfied[FolderKey(line)]; done {
			continue
		}
		terms = append(terms, Term(line))
	}

	return terms
}

// SplitLines splits text into lines, accepting both \n and \r\n endings.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}
