package catalog

import "saniteetti/internal/model"

// PlaceholderImage is used when a product is saved without any image.
const PlaceholderImage = "/images/placeholder.svg"

// DefaultPriceUnit is used when a product is saved without a price unit.
const DefaultPriceUnit = "€ / kpl"

// DefaultCategories returns the built-in category list.
func DefaultCategories() []model.Category {
	return []model.Category{
		{ID: "WC-paperit", Names: map[string]string{model.LangFI: "WC-paperit", model.LangEN: "Toilet paper"}},
		{ID: "Käsipyyhkeet", Names: map[string]string{model.LangFI: "Käsipyyhkeet", model.LangEN: "Hand towels"}},
		{ID: "Saippuat", Names: map[string]string{model.LangFI: "Saippuat", model.LangEN: "Soaps"}},
		{ID: "Puhdistus", Names: map[string]string{model.LangFI: "Puhdistus", model.LangEN: "Cleaning"}},
		{ID: "Jätesäkit", Names: map[string]string{model.LangFI: "Jätesäkit", model.LangEN: "Waste bags"}},
		model.OtherCategory(),
	}
}

// DefaultProducts returns the built-in product list.
func DefaultProducts() []model.Product {
	return []model.Product{
		{
			ID:          "wc",
			Name:        "Tork H2 Xpress® Multifold Soft käsipyyhe 2-ker. luonnonvalkoinen 3800 ark",
			SKU:         "471103",
			Description: "Pehmeä ja imukykyinen käsipyyhe suurkulutukseen.",
			Category:    "Käsipyyhkeet",
			Price:       21.55,
			PriceUnit:   "€ / säkki",
			UnitNote:    "5,67 € / 1000 ark",
			Stock:       140,
			Images:      []string{"/images/towel.svg"},
		},
		{
			ID:          "towel",
			Name:        "Tork T4 Universal wc-paperi 2-krs 38,30m/42rll",
			SKU:         "472246",
			Description: "Luotettava peruspaperi yrityskäyttöön.",
			Category:    "WC-paperit",
			Price:       15.86,
			PriceUnit:   "€ / säkki",
			UnitNote:    "9,94 € / 1000 m",
			Stock:       122,
			Images:      []string{"/images/wc.svg"},
		},
		{
			ID:          "soap",
			Name:        "Tork H3 Universal käsipyyhe C-taitto 2-krs luonnonvalkoinen 2400 ark",
			SKU:         "N953102",
			Description: "Laadukas taittopaperi annostelijoihin.",
			Category:    "Käsipyyhkeet",
			Price:       18.68,
			PriceUnit:   "€ / säkki",
			UnitNote:    "7,78 € / 1000 ark",
			Stock:       96,
			Images:      []string{"/images/roll.svg"},
		},
		{
			ID:          "spray",
			Name:        "Yleispuhdistussuihke 750 ml, sitrus",
			SKU:         "S71421",
			Description: "Raikas ja tehokas yleispuhdistaja pinnoille.",
			Category:    "Puhdistus",
			Price:       6.95,
			PriceUnit:   "€ / kpl",
			Stock:       28,
			Images:      []string{"/images/spray.svg"},
		},
		{
			ID:          "bag",
			Name:        "Jätesäkki 240 L, vahva 10 kpl",
			SKU:         "B24010",
			Description: "Vahvat jätesäkit isoihin astioihin.",
			Category:    "Jätesäkit",
			Price:       8.9,
			PriceUnit:   "€ / rulla",
			Stock:       88,
			Images:      []string{"/images/trash.svg"},
		},
		{
			ID:          "soap5",
			Name:        "Nestesaippua 5 L, hellävarainen",
			SKU:         "S5001",
			Description: "Hellävarainen nestesaippua ammattilaiskäyttöön.",
			Category:    "Saippuat",
			Price:       14.9,
			PriceUnit:   "€ / kanisteri",
			Stock:       8,
			Images:      []string{"/images/soap.svg"},
		},
	}
}
