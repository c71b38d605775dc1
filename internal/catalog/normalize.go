package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"saniteetti/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var aliasesYAML []byte

// AliasTable maps folded alias spellings to canonical category ids.
type AliasTable struct {
	Version int
	lookup  map[string]string
}

type aliasFile struct {
	Version int                 `yaml:"version"`
	Aliases map[string][]string `yaml:"aliases"`
}

// ParseAliasTable decodes a YAML alias table and checks that normalisation
// stays idempotent: no canonical id may be remapped to another id.
func ParseAliasTable(data []byte) (*AliasTable, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}

	t := &AliasTable{Version: f.Version, lookup: make(map[string]string)}
	for canonical, aliases := range f.Aliases {
		canonical = strings.TrimSpace(canonical)
		if canonical == "" {
			return nil, fmt.Errorf("alias table: empty canonical id")
		}
		if err := t.add(fold(canonical), canonical); err != nil {
			return nil, err
		}
		for _, alias := range aliases {
			if err := t.add(fold(alias), canonical); err != nil {
				return nil, err
			}
		}
	}

	for _, canonical := range t.lookup {
		if target := t.lookup[fold(canonical)]; target != canonical {
			return nil, fmt.Errorf("alias table: canonical id %q is remapped to %q", canonical, target)
		}
	}

	return t, nil
}

func (t *AliasTable) add(key, canonical string) error {
	if key == "" {
		return fmt.Errorf("alias table: empty alias for %q", canonical)
	}
	if existing, ok := t.lookup[key]; ok && existing != canonical {
		return fmt.Errorf("alias table: %q maps to both %q and %q", key, existing, canonical)
	}
	t.lookup[key] = canonical
	return nil
}

// Normalize returns the canonical category id for a raw category name.
func (t *AliasTable) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.OtherCategoryID
	}
	if canonical, ok := t.lookup[fold(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

var defaultAliases = mustParseAliases(aliasesYAML)

func mustParseAliases(data []byte) *AliasTable {
	t, err := ParseAliasTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultAliases returns the embedded alias table.
func DefaultAliases() *AliasTable {
	return defaultAliases
}

// NormalizeCategoryID normalises raw with the embedded alias table.
func NormalizeCategoryID(raw string) string {
	return defaultAliases.Normalize(raw)
}
