package repository

import "strings"

// likeEscape is the escape character declared in every LIKE clause.  It is
// not a backslash so the pattern means the same on MySQL and SQLite.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a substring pattern for term.  Queries compare
// LOWER(column) with LOWER(pattern) so both sides fold the same way.
// Wildcards inside term match literally; an empty term matches everything.
func containsPattern(term string) string {
	return "%" + likeReplacer.Replace(term) + "%"
}
