package model

import "strings"

// Genres is the ordered list of category tags attached to a venue or an
// artist.  Order is the order the tags were submitted in.
type Genres []string

// Normalize trims every tag, drops empty ones and keeps only the first
// occurrence of a repeated tag.  The result is never nil.
func (g Genres) Normalize() Genres {
	out := make(Genres, 0, len(g))
	seen := make(map[string]bool, len(g))
	for _, tag := range g {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
