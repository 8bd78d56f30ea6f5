package models

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product is a catalog entry offered by the storefront. PriceID is the
// provider's price identifier and the only reference a cart may carry.
type Product struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	PriceID     string        `json:"price_id" bson:"price_id" validate:"required"`
	Name        string        `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Description string        `json:"description" bson:"description" validate:"max=2000"`
	UnitAmount  int64         `json:"unit_amount" bson:"unit_amount" validate:"gte=0"` // minor units, e.g. cents
	Currency    string        `json:"currency" bson:"currency" validate:"required,len=3"`
	Images      []string      `json:"images" bson:"images" validate:"dive,url"`
	Active      bool          `json:"active" bson:"active"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

// UnitPrice converts the stored minor-unit amount into an exact decimal
// in major units (1999 -> 19.99).
func (p *Product) UnitPrice() decimal.Decimal {
	return decimal.New(p.UnitAmount, -2)
}

func (p *Product) CurrencyCode() string {
	return strings.ToUpper(p.Currency)
}

func (p *Product) IsAvailable() bool {
	return p.Active && p.PriceID != ""
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the catalog constraints in the struct tags.
func (p *Product) Validate() error {
	return validate.Struct(p)
}
