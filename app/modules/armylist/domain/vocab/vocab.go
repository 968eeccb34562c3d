package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Term is one canonical vocabulary entry and the spellings it is recognized by.
type Term struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Vocabulary is a closed, case-insensitive set of canonical names.
type Vocabulary struct {
	terms []Term
	index map[string]string
}

// NewVocabulary indexes terms by their normalized name and aliases.
func NewVocabulary(terms []Term) (*Vocabulary, error) {
	v := &Vocabulary{
		terms: terms,
		index: make(map[string]string, len(terms)*2),
	}
	for _, t := range terms {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("vocabulary term with empty name")
		}
		keys := append([]string{t.Name}, t.Aliases...)
		for _, k := range keys {
			nk := Normalize(k)
			if existing, ok := v.index[nk]; ok && existing != t.Name {
				return nil, fmt.Errorf("%q is claimed by both %q and %q", k, existing, t.Name)
			}
			v.index[nk] = t.Name
		}
	}
	return v, nil
}

// Lookup returns the canonical name for raw.
func (v *Vocabulary) Lookup(raw string) (string, bool) {
	if v == nil {
		return "", false
	}
	name, ok := v.index[Normalize(raw)]
	return name, ok
}

// Names lists the canonical names in declaration order.
func (v *Vocabulary) Names() []string {
	names := make([]string, 0, len(v.terms))
	for _, t := range v.terms {
		names = append(names, t.Name)
	}
	return names
}

// Set groups every closed vocabulary the engine resolves against.
type Set struct {
	Factions    *Vocabulary
	Maps        *Vocabulary
	Deployments *Vocabulary
	Objectives  *Vocabulary
	Spells      *Vocabulary
}

type fileFormat struct {
	Factions    []Term `yaml:"factions"`
	Maps        []Term `yaml:"maps"`
	Deployments []Term `yaml:"deployments"`
	Objectives  []Term `yaml:"objectives"`
	Spells      []Term `yaml:"spells"`
}

// Parse builds a Set from YAML. Every section must be present.
func Parse(data []byte) (*Set, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vocabulary: %w", err)
	}

	set := &Set{}
	sections := []struct {
		name  string
		terms []Term
		dst   **Vocabulary
	}{
		{"factions", f.Factions, &set.Factions},
		{"maps", f.Maps, &set.Maps},
		{"deployments", f.Deployments, &set.Deployments},
		{"objectives", f.Objectives, &set.Objectives},
		{"spells", f.Spells, &set.Spells},
	}

	for _, s := range sections {
		if len(s.terms) == 0 {
			return nil, fmt.Errorf("vocabulary section %q is empty", s.name)
		}
		v, err := NewVocabulary(s.terms)
		if err != nil {
			return nil, fmt.Errorf("vocabulary section %q: %w", s.name, err)
		}
		*s.dst = v
	}
	return set, nil
}

// Load reads a vocabulary file. An empty path yields the built-in defaults.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	return Parse(data)
}

var defaultSet = sync.OnceValue(func() *Set {
	set, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return set
})

// Default returns the built-in vocabularies.
func Default() *Set {
	return defaultSet()
}

// Normalize lower-cases s, collapses inner whitespace and trims surrounding punctuation.
func Normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.Trim(s, " .:;,-_*")
}
