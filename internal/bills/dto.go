package bills

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

const dateLayout = "2006-01-02"

// Key is a natural key that clients may send as a JSON string or number,
// e.g. a tax given as "VAT 5%" or 5.
type Key string

func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*k = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = Key(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*k = Key(n.String())
	return nil
}

// LineRequest is one bill line keyed by product, account and tax names.
type LineRequest struct {
	Product     Key             `json:"product" validate:"required"`
	Account     Key             `json:"account" validate:"required"`
	Tax         Key             `json:"tax"`
	Description string          `json:"description" validate:"max=256"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// VendorBillRequest is the JSON body of POST /vendor-bills.
type VendorBillRequest struct {
	PurchaseOrderID *int64        `json:"purchaseOrderId" validate:"omitempty,gt=0"`
	VendorName      string        `json:"vendorName" validate:"required_without=PurchaseOrderID,max=128"`
	BillDate        string        `json:"billDate" validate:"required,datetime=2006-01-02"`
	DueDate         string        `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	BillReference   *string       `json:"billReference" validate:"omitempty,max=128"`
	Lines           []LineRequest `json:"lines" validate:"required_without=PurchaseOrderID,dive"`
}

// Input converts the request to a conversion input.
func (r VendorBillRequest) Input() (ConvertInput, error) {
	return convertInput(DirectionVendor, r.PurchaseOrderID, r.VendorName, r.BillDate, r.DueDate, r.BillReference, r.Lines)
}

// SalesBillRequest is the JSON body of POST /sales/bills.
type SalesBillRequest struct {
	SalesOrderID  *int64        `json:"salesOrderId" validate:"omitempty,gt=0"`
	CustomerName  string        `json:"customerName" validate:"required_without=SalesOrderID,max=128"`
	BillDate      string        `json:"billDate" validate:"required,datetime=2006-01-02"`
	DueDate       string        `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	BillReference *string       `json:"billReference" validate:"omitempty,max=128"`
	LineItems     []LineRequest `json:"lineItems" validate:"required_without=SalesOrderID,dive"`
}

// Input converts the request to a conversion input.
func (r SalesBillRequest) Input() (ConvertInput, error) {
	return convertInput(DirectionSales, r.SalesOrderID, r.CustomerName, r.BillDate, r.DueDate, r.BillReference, r.LineItems)
}

func convertInput(dir Direction, orderID *int64, partner, billDate, dueDate string, ref *string, lines []LineRequest) (ConvertInput, error) {
	in := ConvertInput{Direction: dir, SourceOrderID: orderID, PartnerName: partner, Reference: ref}
	var err error
	if in.BillDate, err = time.Parse(dateLayout, billDate); err != nil {
		return ConvertInput{}, shared.NewValidationError("billDate", "must be a date formatted "+dateLayout)
	}
	if dueDate != "" {
		if in.DueDate, err = time.Parse(dateLayout, dueDate); err != nil {
			return ConvertInput{}, shared.NewValidationError("dueDate", "must be a date formatted "+dateLayout)
		}
	}
	for _, l := range lines {
		in.Lines = append(in.Lines, LineInput{
			Product:     string(l.Product),
			Account:     string(l.Account),
			Tax:         string(l.Tax),
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return in, nil
}
