// Package catalog provides the fixed choices the venue and artist forms
// offer: music genres and US state codes.
package catalog

import (
	_ "embed"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Catalog is an immutable set of form choices.
type Catalog struct {
	Genres []string `yaml:"genres" json:"genres"`
	States []string `yaml:"states" json:"states"`

	genreSet map[string]bool
	stateSet map[string]bool
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the catalog embedded in the binary.  It panics if the
// embedded file is malformed, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if len(c.Genres) == 0 || len(c.States) == 0 {
		return nil, errors.New("catalog needs at least one genre and one state")
	}
	c.genreSet = toSet(c.Genres)
	c.stateSet = toSet(c.States)
	return &c, nil
}

// HasGenre reports whether g is one of the offered genres.
func (c *Catalog) HasGenre(g string) bool { return c.genreSet[g] }

// HasState reports whether s is one of the offered state codes.
func (c *Catalog) HasState(s string) bool { return c.stateSet[s] }

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
