package model

// ContactForm is the first checkout step.
type ContactForm struct {
	Company string `json:"company"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
}

// BillingForm is the second checkout step.
type BillingForm struct {
	BillingCompany string `json:"billingCompany"`
	BillingAddress string `json:"billingAddress"`
	Notes          string `json:"notes"`
}

// CheckoutForm holds both halves of the checkout data.
type CheckoutForm struct {
	Contact ContactForm `json:"contact"`
	Billing BillingForm `json:"billing"`
}

// Customer flattens the form into an order customer snapshot.
func (f CheckoutForm) Customer() Customer {
	return Customer{
		Company:        f.Contact.Company,
		Contact:        f.Contact.Contact,
		Email:          f.Contact.Email,
		Phone:          f.Contact.Phone,
		Address:        f.Contact.Address,
		Zip:            f.Contact.Zip,
		City:           f.Contact.City,
		BillingCompany: f.Billing.BillingCompany,
		BillingAddress: f.Billing.BillingAddress,
		Notes:          f.Billing.Notes,
	}
}
