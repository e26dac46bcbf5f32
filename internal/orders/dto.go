package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

const dateLayout = "2006-01-02"

// CreateOrderRequest is the JSON body of POST /purchase-orders and POST /sales/orders.
// Purchase orders send poDate, sales orders orderDate; either is accepted.
type CreateOrderRequest struct {
	ContactID int64              `json:"contactId" validate:"required,gt=0"`
	Reference string             `json:"reference" validate:"max=128"`
	PoDate    string             `json:"poDate" validate:"omitempty,datetime=2006-01-02"`
	OrderDate string             `json:"orderDate" validate:"omitempty,datetime=2006-01-02"`
	Lines     []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// OrderLineRequest is one requested order line.
type OrderLineRequest struct {
	ProductID   int64           `json:"productId" validate:"required,gt=0"`
	TaxID       *int64          `json:"taxId" validate:"omitempty,gt=0"`
	Description string          `json:"description" validate:"max=256"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Input converts the request to a service input.
func (r CreateOrderRequest) Input() (CreateInput, error) {
	raw := r.PoDate
	if raw == "" {
		raw = r.OrderDate
	}
	var date time.Time
	if raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return CreateInput{}, shared.NewValidationError("poDate", "must be a date formatted "+dateLayout)
		}
		date = parsed
	}
	in := CreateInput{PartnerID: r.ContactID, Reference: r.Reference, OrderDate: date}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, LineInput{
			ProductID:   l.ProductID,
			TaxID:       l.TaxID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return in, nil
}
