package domain

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Product mirrors one record of the remote productos collection.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	Stock       int    `json:"stock"`
}

// PriceLabel is the list-view rendering of the price, e.g. "$9.99".
func (p Product) PriceLabel() string { return p.Price.Label() }

// Price is a decimal amount as sent by the service. Valid is false when the
// field was absent, null or not a number.
type Price struct {
	Amount decimal.Decimal
	Valid  bool
}

func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{Amount: d, Valid: true}, nil
}

func (p Price) Label() string {
	if !p.Valid {
		return "$—"
	}
	return "$" + p.Amount.StringFixed(2)
}

// UnmarshalJSON accepts quoted and bare numbers. Anything else leaves the
// price invalid instead of failing the whole collection.
func (p *Price) UnmarshalJSON(b []byte) error {
	var d decimal.NullDecimal
	if err := d.UnmarshalJSON(b); err != nil {
		*p = Price{}
		return nil
	}
	*p = Price{Amount: d.Decimal, Valid: d.Valid}
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return p.Amount.MarshalJSON()
}

// Draft is the editor buffer. Fields hold raw form text.
type Draft struct {
	Name        string
	Description string
	Price       string
	Stock       string
	EditingID   *int64 // nil: create new
}

func (d Draft) Editing() bool { return d.EditingID != nil }

// Payload is the body of create and update requests.
type Payload struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// MarshalJSON sends the price as a string with exactly two fraction digits.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       string `json:"price"`
		Stock       int    `json:"stock"`
	}{p.Name, p.Description, p.Price.StringFixed(2), p.Stock})
}

// ViewState is the per-session UI state kept across requests. The product
// list is deliberately absent: it is always re-fetched.
type ViewState struct {
	EditorOpen bool
	Draft      Draft
	Error      string
}

// ActivityEntry records one mutation attempt.
type ActivityEntry struct {
	ID        string `db:"id"`
	SessionID string `db:"session_id"`
	RequestID string `db:"request_id"`
	Action    string `db:"action"` // create | update | delete
	ProductID int64  `db:"product_id"`
	Outcome   string `db:"outcome"` // ok | error
	Message   string `db:"message"`
	CreatedAt string `db:"created_at"`
}
