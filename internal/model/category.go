package model

// Supported locales.
const (
	LangFI = "fi"
	LangEN = "en"
)

// OtherCategoryID is the sentinel category that absorbs products from deleted categories.
const OtherCategoryID = "Muut"

// Category groups products. Names holds the display name per locale.
type Category struct {
	ID    string            `json:"id"`
	Names map[string]string `json:"names"`
}

// Name returns the display name for lang, falling back to the ID.
func (c Category) Name(lang string) string {
	if name := c.Names[lang]; name != "" {
		return name
	}
	return c.ID
}

// Clone returns a deep copy of the category.
func (c Category) Clone() Category {
	names := make(map[string]string, len(c.Names))
	for k, v := range c.Names {
		names[k] = v
	}
	c.Names = names
	return c
}

// OtherCategory returns a fresh copy of the sentinel category.
func OtherCategory() Category {
	return Category{
		ID:    OtherCategoryID,
		Names: map[string]string{LangFI: "Muut", LangEN: "Other"},
	}
}

// NormalizeLang maps any input to a supported locale, defaulting to Finnish.
func NormalizeLang(lang string) string {
	if lang == LangEN {
		return LangEN
	}
	return LangFI
}
