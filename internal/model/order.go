package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew     OrderStatus = "new"
	OrderStatusShipped OrderStatus = "shipped"
)

// Customer is the contact and billing snapshot captured at order time.
type Customer struct {
	Company        string `json:"company"`
	Contact        string `json:"contact"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Zip            string `json:"zip"`
	City           string `json:"city"`
	BillingCompany string `json:"billingCompany"`
	BillingAddress string `json:"billingAddress"`
	Notes          string `json:"notes"`
}

// OrderItem is an immutable line captured when the order was placed.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	PriceUnit string  `json:"priceUnit"`
}

// Order represents a customer order.
type Order struct {
	ID        string      `json:"id"`
	Lang      string      `json:"lang"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	ShippedAt *time.Time  `json:"shippedAt"`
	Customer  Customer    `json:"customer"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Shipping  float64     `json:"shipping"`
	Total     float64     `json:"total"`
}

// IsShipped reports whether the order has been shipped.
func (o *Order) IsShipped() bool {
	return o.Status == OrderStatusShipped
}

// Clone returns a deep copy so callers never share item slices or the
// shippedAt pointer with the store.
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	if o.ShippedAt != nil {
		t := *o.ShippedAt
		o.ShippedAt = &t
	}
	return o
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Customer Customer    `json:"customer"`
	Items    []OrderItem `json:"items"`
	Lang     string      `json:"lang"`
	Subtotal float64     `json:"subtotal"`
	Shipping float64     `json:"shipping"`
	Total    float64     `json:"total"`
}

// CreateOrderResponse is returned after a successful order submission.
type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

// OrderListResponse is returned by the admin order listing.
type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

// ShippedResponse is returned by the shipped transition.
type ShippedResponse struct {
	OK    bool  `json:"ok"`
	Order Order `json:"order"`
}
