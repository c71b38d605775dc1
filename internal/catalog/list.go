package catalog

import (
	"sort"
	"strings"

	"saniteetti/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys accepted by ListProducts.
const (
	SortRelevance = "relevance"
	SortPrice     = "price"
	SortName      = "name"
)

// AllCategories matches every category in a Filter.
const AllCategories = "all"

// Filter narrows and orders a product listing.
type Filter struct {
	Query    string
	Category string
	Sort     string
	Lang     string
}

// ListProducts returns the products matching f. Paging is left to the caller.
func (s *Store) ListProducts(f Filter) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(f.Query))
	category := f.Category
	if category == "" {
		category = AllCategories
	}

	names := make(map[string]model.Category, len(s.categories))
	for _, c := range s.categories {
		names[c.ID] = c
	}

	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != AllCategories && p.Category != category {
			continue
		}
		if query != "" && !strings.Contains(haystack(p, names[p.Category]), query) {
			continue
		}
		out = append(out, p.Clone())
	}

	switch f.Sort {
	case SortPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortName:
		col := collate.New(collatorTag(f.Lang))
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) < 0 })
	}

	return out
}

func haystack(p model.Product, c model.Category) string {
	return strings.ToLower(strings.Join([]string{
		p.Name,
		p.SKU,
		p.Description,
		p.Category,
		c.Names[model.LangFI],
		c.Names[model.LangEN],
	}, " "))
}

func collatorTag(lang string) language.Tag {
	if model.NormalizeLang(lang) == model.LangEN {
		return language.English
	}
	return language.Finnish
}
