package services

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// likeEscaper maskiert LIKE-Metazeichen; Postgres nutzt Backslash als Standard-Escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NormalizeKeyword bringt ein Suchwort in NFC-Form und entfernt Randleerzeichen.
// Ein Ergebnis "" bedeutet: Filter nicht gesetzt.
func NormalizeKeyword(s string) string {
	normalized, _, err := transform.String(transform.Chain(norm.NFC), s)
	if err != nil {
		normalized = s
	}
	return strings.TrimSpace(normalized)
}

// containsPattern baut das ILIKE-Muster für eine Teilstring-Suche.
func containsPattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}
