package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"saniteetti/internal/model"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// texts holds the e-mail strings for one language.
type texts struct {
	Thanks          string
	OrderNumber     string
	Product         string
	Quantity        string
	Price           string
	Subtotal        string
	Shipping        string
	Total           string
	DeliveryAddress string
	NewOrder        string
	Company         string
	Contact         string
	Email           string
	Phone           string
	ShippedTitle    string
	ShippedBody     string
	ShippedThanks   string
	Questions       string
	Regards         string
	SubjectConfirm  string
	SubjectNew      string
	SubjectShipped  string
}

var mailTexts = map[string]texts{
	model.LangFI: {
		Thanks:          "Kiitos tilauksesta!",
		OrderNumber:     "Tilausnumerosi on",
		Product:         "Tuote",
		Quantity:        "Määrä",
		Price:           "Hinta",
		Subtotal:        "Välisumma",
		Shipping:        "Toimitus",
		Total:           "Yhteensä",
		DeliveryAddress: "Toimitusosoite",
		NewOrder:        "Uusi tilaus",
		Company:         "Yritys",
		Contact:         "Yhteyshenkilö",
		Email:           "Sähköposti",
		Phone:           "Puhelin",
		ShippedTitle:    "Tilauksesi on matkalla",
		ShippedBody:     "Tilaus on nyt lähetetty",
		ShippedThanks:   "Kiitos tilauksesta Suomen Paperitukulta.",
		Questions:       "Jos sinulla on kysyttävää tilauksesta, vastaathan tähän viestiin.",
		Regards:         "Ystävällisin terveisin",
		SubjectConfirm:  "Tilausvahvistus",
		SubjectNew:      "Uusi tilaus",
		SubjectShipped:  "Tilauksesi on matkalla",
	},
	model.LangEN: {
		Thanks:          "Thank you for your order!",
		OrderNumber:     "Your order number is",
		Product:         "Product",
		Quantity:        "Qty",
		Price:           "Price",
		Subtotal:        "Subtotal",
		Shipping:        "Shipping",
		Total:           "Total",
		DeliveryAddress: "Delivery address",
		NewOrder:        "New order",
		Company:         "Company",
		Contact:         "Contact person",
		Email:           "Email",
		Phone:           "Phone",
		ShippedTitle:    "Your order is on the way",
		ShippedBody:     "Order is now shipped",
		ShippedThanks:   "Thank you for ordering from Suomen Paperitukku.",
		Questions:       "If you have any questions about your order, just reply to this email.",
		Regards:         "Best regards",
		SubjectConfirm:  "Order confirmation",
		SubjectNew:      "New order",
		SubjectShipped:  "Your order is on the way",
	},
}

func textsFor(lang string) texts {
	return mailTexts[model.NormalizeLang(lang)]
}

// Amounts in every e-mail are formatted the Finnish way regardless of the
// order language, e.g. "1 234,50".
var euroPrinter = message.NewPrinter(language.Finnish)

func euro(v float64) string {
	return euroPrinter.Sprintf("%v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

const tableTmpl = `{{define "items"}}<table style="border-collapse:collapse;width:100%;max-width:680px;">
    <thead>
      <tr>
        <th style="padding:8px;border:1px solid #d9e2f2;text-align:left;background:#f5f9ff;">{{.T.Product}}</th>
        <th style="padding:8px;border:1px solid #d9e2f2;background:#f5f9ff;">{{.T.Quantity}}</th>
        <th style="padding:8px;border:1px solid #d9e2f2;text-align:right;background:#f5f9ff;">{{.T.Price}}</th>
      </tr>
    </thead>
    <tbody>{{range .Order.Items}}
      <tr>
        <td style="padding:8px;border:1px solid #d9e2f2;">{{.Name}}</td>
        <td style="padding:8px;border:1px solid #d9e2f2;text-align:center;">{{.Quantity}}</td>
        <td style="padding:8px;border:1px solid #d9e2f2;text-align:right;">{{euro .UnitPrice}} €</td>
      </tr>{{end}}
    </tbody>
  </table>{{end}}
{{define "footer"}}<p style="margin:16px 0 0;">{{.T.Questions}}</p>
  <p style="margin:14px 0 0;">
    {{.T.Regards}}<br />
    +358 44 978 2446<br />
    suomenpaperitukku@gmail.com
  </p>{{end}}`

const customerTmpl = `{{define "customer"}}<div style="font-family:Arial,Helvetica,sans-serif;color:#13233f;line-height:1.45;">
  <h2 style="margin:0 0 8px;">{{.T.Thanks}}</h2>
  <p style="margin:0 0 14px;">{{.T.OrderNumber}} <strong>{{.Order.ID}}</strong>.</p>
  {{template "items" .}}
  <p style="margin:14px 0 6px;">{{.T.Subtotal}}: <strong>{{euro .Order.Subtotal}} €</strong></p>
  <p style="margin:0 0 6px;">{{.T.Shipping}}: <strong>{{euro .Order.Shipping}} €</strong></p>
  <p style="margin:0 0 14px;">{{.T.Total}}: <strong>{{euro .Order.Total}} €</strong></p>
  <p style="margin:0;">{{.T.DeliveryAddress}}: {{.Order.Customer.Address}}, {{.Order.Customer.Zip}} {{.Order.Customer.City}}</p>
  {{template "footer" .}}
</div>{{end}}`

const merchantTmpl = `{{define "merchant"}}<div style="font-family:Arial,Helvetica,sans-serif;color:#13233f;line-height:1.45;">
  <h2 style="margin:0 0 10px;">{{.T.NewOrder}} {{.Order.ID}}</h2>
  <p style="margin:0 0 8px;"><strong>{{.T.Company}}:</strong> {{.Order.Customer.Company}}</p>
  <p style="margin:0 0 8px;"><strong>{{.T.Contact}}:</strong> {{.Order.Customer.Contact}}</p>
  <p style="margin:0 0 8px;"><strong>{{.T.Email}}:</strong> {{.Order.Customer.Email}}</p>
  <p style="margin:0 0 14px;"><strong>{{.T.Phone}}:</strong> {{or .Order.Customer.Phone "-"}}</p>
  {{template "items" .}}
  <p style="margin:14px 0 6px;">{{.T.Total}}: <strong>{{euro .Order.Total}} €</strong></p>
  {{template "footer" .}}
</div>{{end}}`

const shippedTmpl = `{{define "shipped"}}<div style="font-family:Arial,Helvetica,sans-serif;color:#13233f;line-height:1.45;">
  <h2 style="margin:0 0 8px;">{{.T.ShippedTitle}}</h2>
  <p style="margin:0 0 12px;">{{.T.ShippedBody}} <strong>{{.Order.ID}}</strong>.</p>
  <p style="margin:0;">{{.T.ShippedThanks}}</p>
  {{template "footer" .}}
</div>{{end}}`

var templates = template.Must(
	template.New("mail").
		Funcs(template.FuncMap{"euro": euro}).
		Parse(tableTmpl + customerTmpl + merchantTmpl + shippedTmpl),
)

type mailData struct {
	T     texts
	Order model.Order
}

// Mail is a rendered e-mail.
type Mail struct {
	To      []string
	Subject string
	HTML    string
}

func render(name string, order model.Order) (string, error) {
	var buf bytes.Buffer
	data := mailData{T: textsFor(order.Lang), Order: order}
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s mail: %w", name, err)
	}
	return buf.String(), nil
}

// CustomerConfirmation renders the order confirmation sent to the customer.
func CustomerConfirmation(order model.Order) (Mail, error) {
	html, err := render("customer", order)
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      []string{order.Customer.Email},
		Subject: textsFor(order.Lang).SubjectConfirm + " " + order.ID,
		HTML:    html,
	}, nil
}

// MerchantNotification renders the new-order notice sent to the merchant.
func MerchantNotification(order model.Order, recipients []string) (Mail, error) {
	html, err := render("merchant", order)
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      recipients,
		Subject: textsFor(order.Lang).SubjectNew + " " + order.ID,
		HTML:    html,
	}, nil
}

// ShippedNotice renders the shipped notice sent to the customer.
func ShippedNotice(order model.Order) (Mail, error) {
	html, err := render("shipped", order)
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		To:      []string{order.Customer.Email},
		Subject: textsFor(order.Lang).SubjectShipped + " " + order.ID,
		HTML:    html,
	}, nil
}
