// Package checkout drives the two-step checkout that turns a cart into an order.
package checkout

import (
	"context"
	"strings"

	"saniteetti/internal/cart"
	"saniteetti/internal/model"
)

// State is a checkout step.
type State string

const (
	StateCollectingContact State = "contact"
	StateCollectingBilling State = "billing"
	StateSubmitted         State = "submitted"
)

// OrderCreator persists an order built from a checkout.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)
}

// Workflow holds the checkout state of one storefront session.
// A Workflow is not safe for concurrent use.
type Workflow struct {
	state   State
	form    model.CheckoutForm
	pricing cart.Pricing
	orderID string
}

// NewWorkflow returns a workflow collecting contact details.
func NewWorkflow(pricing cart.Pricing) *Workflow {
	return &Workflow{state: StateCollectingContact, pricing: pricing}
}

// State returns the current step.
func (w *Workflow) State() State {
	return w.state
}

// Form returns the entered checkout data.
func (w *Workflow) Form() model.CheckoutForm {
	return w.form
}

// OrderID returns the id of the submitted order, empty before submission.
func (w *Workflow) OrderID() string {
	return w.orderID
}

// Open restarts the checkout at the contact step. Entered data is kept.
func (w *Workflow) Open() {
	w.state = StateCollectingContact
	w.orderID = ""
}

// UpdateContact replaces the contact half of the form.
func (w *Workflow) UpdateContact(contact model.ContactForm) {
	w.form.Contact = contact
}

// UpdateBilling replaces the billing half of the form.
func (w *Workflow) UpdateBilling(billing model.BillingForm) {
	w.form.Billing = billing
}

// Advance moves from the contact step to the billing step.
func (w *Workflow) Advance(c *cart.Cart, lookup cart.ProductLookup) error {
	if w.state != StateCollectingContact {
		return model.ErrInvalidCheckoutState
	}
	if len(c.Lines(lookup)) == 0 {
		return model.ErrEmptyCart
	}
	contact := w.form.Contact
	if blank(contact.Company, contact.Contact, contact.Email, contact.Address) {
		return model.ErrMissingContactFields
	}
	w.state = StateCollectingBilling
	return nil
}

// Back returns from the billing step to the contact step.
func (w *Workflow) Back() error {
	if w.state != StateCollectingBilling {
		return model.ErrInvalidCheckoutState
	}
	w.state = StateCollectingContact
	return nil
}

// Submit builds an order snapshot from the cart and hands it to creator. On
// success the cart is cleared and flagged as ordered; on failure the workflow
// stays at the billing step. When creator stored the order but failed
// afterwards, the stored order is returned along with the error.
func (w *Workflow) Submit(ctx context.Context, c *cart.Cart, lookup cart.ProductLookup, lang string, creator OrderCreator) (*model.Order, error) {
	if w.state != StateCollectingBilling {
		return nil, model.ErrInvalidCheckoutState
	}
	billing := w.form.Billing
	if blank(billing.BillingCompany, billing.BillingAddress) {
		return nil, model.ErrMissingBillingFields
	}

	lines := c.Lines(lookup)
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	totals := c.Totals(lookup, w.pricing)
	req := &model.OrderRequest{
		Customer: w.form.Customer(),
		Items:    make([]model.OrderItem, 0, len(lines)),
		Lang:     model.NormalizeLang(lang),
		Subtotal: totals.Subtotal,
		Shipping: totals.Shipping,
		Total:    totals.Total,
	}
	for _, line := range lines {
		req.Items = append(req.Items, model.OrderItem{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.Product.Price,
			PriceUnit: line.Product.PriceUnit,
		})
	}

	order, err := creator.CreateOrder(ctx, req)
	if err != nil {
		return order, err
	}

	w.state = StateSubmitted
	w.orderID = order.ID
	c.Clear()
	c.MarkOrderPlaced()
	return order, nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
