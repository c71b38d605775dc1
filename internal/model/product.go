package model

import "encoding/json"

// VATMultiplier converts a net price into a gross price (Finnish VAT 25.5 %).
const VATMultiplier = 1.255

// Stock bands used by the storefront to label availability.
const (
	StockOut  = "out"
	StockLow  = "low"
	StockWarn = "warn"
	StockOK   = "ok"
)

// Product represents a sanitary-supply product in the catalogue.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	SKU         string   `json:"sku"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	PriceUnit   string   `json:"priceUnit"`
	UnitNote    string   `json:"unitNote,omitempty"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
}

// PrimaryImage returns the canonical image reference.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// GrossPrice returns the price including VAT.
func (p Product) GrossPrice() float64 {
	return p.Price * VATMultiplier
}

// StockBand classifies the stock level for display.
func (p Product) StockBand() string {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock <= 10:
		return StockLow
	case p.Stock <= 40:
		return StockWarn
	default:
		return StockOK
	}
}

// Clone returns a deep copy of the product.
func (p Product) Clone() Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

// UnmarshalJSON accepts the legacy single "image" field and lifts it into Images.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var aux struct {
		plain
		Image string `json:"image"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Product(aux.plain)
	if len(p.Images) == 0 && aux.Image != "" {
		p.Images = []string{aux.Image}
	}
	return nil
}

// ProductForm is the admin input for creating or editing a product. Price and
// stock are kept as raw strings because they come straight from form fields.
type ProductForm struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	SKU         string   `json:"sku"`
	Category    string   `json:"category"`
	Price       string   `json:"price"`
	PriceUnit   string   `json:"priceUnit"`
	UnitNote    string   `json:"unitNote"`
	Stock       string   `json:"stock"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
}
