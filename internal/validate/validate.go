package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"productos/internal/domain"
)

var v = validator.New()

// draftFields are the raw editor fields after trimming.
type draftFields struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	Price       string `validate:"required,numeric"`
	Stock       string `validate:"required,number"`
}

// DraftError lists the editor fields that did not convert.
type DraftError struct {
	Fields []string
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("invalid draft fields: %s", strings.Join(e.Fields, ","))
}

// Draft converts the editor buffer into a request payload. Price must be a
// non-negative decimal with at most two fraction digits, stock a
// non-negative integer.
func Draft(d domain.Draft) (domain.Payload, error) {
	f := draftFields{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Price:       strings.TrimSpace(d.Price),
		Stock:       strings.TrimSpace(d.Stock),
	}

	bad := map[string]bool{}
	if err := v.Struct(f); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return domain.Payload{}, err
		}
		for _, fe := range verrs {
			bad[strings.ToLower(fe.Field())] = true
		}
	}

	var price decimal.Decimal
	if !bad["price"] {
		p, err := decimal.NewFromString(f.Price)
		if err != nil || p.IsNegative() || !p.Equal(p.Round(2)) {
			bad["price"] = true
		} else {
			price = p
		}
	}
	var stock int
	if !bad["stock"] {
		n, err := strconv.Atoi(f.Stock)
		if err != nil || n < 0 {
			bad["stock"] = true
		} else {
			stock = n
		}
	}

	if len(bad) > 0 {
		e := &DraftError{}
		for _, k := range []string{"name", "description", "price", "stock"} {
			if bad[k] {
				e.Fields = append(e.Fields, k)
			}
		}
		return domain.Payload{}, e
	}
	return domain.Payload{Name: f.Name, Description: f.Description, Price: price, Stock: stock}, nil
}

// FromProduct fills an editor buffer from a cached product.
func FromProduct(p domain.Product) domain.Draft {
	id := p.ID
	d := domain.Draft{
		Name:        p.Name,
		Description: p.Description,
		Stock:       strconv.Itoa(p.Stock),
		EditingID:   &id,
	}
	if p.Price.Valid {
		d.Price = p.Price.Amount.String()
	}
	return d
}

// ID validates a product identifier taken from a path segment.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
