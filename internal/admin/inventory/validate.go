package inventory

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"finitefield.org/stock-admin/internal/admin/catalog"
)

// ProductInput carries the operator's form values for create and update.
type ProductInput struct {
	Title    string          `validate:"required"`
	Category string          `validate:"required"`
	ImageURL string
	Stock    int             `validate:"gte=0,lte=2147483647"`
	Price    decimal.Decimal `validate:"-"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// fieldMessages keys are struct field names, optionally suffixed with the
// failing tag.
var fieldMessages = map[string]struct {
	field   string
	message string
}{
	"Title":     {field: "title", message: "El nombre del producto es obligatorio."},
	"Category":  {field: "category", message: "La categoría es obligatoria."},
	"Stock":     {field: "stock", message: "El inventario no puede ser negativo."},
	"Stock.lte": {field: "stock", message: "El inventario supera el máximo permitido."},
}

// normalized returns a copy with surrounding whitespace removed from text fields.
func (in ProductInput) normalized() ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// Validate reports the first problem with the input as a *catalog.ValidationError.
func (in ProductInput) Validate() error {
	in = in.normalized()
	if err := inputValidator().Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if m, ok := fieldMessages[fe.StructField()+"."+fe.Tag()]; ok {
				return &catalog.ValidationError{Field: m.field, Message: m.message}
			}
			if m, ok := fieldMessages[fe.StructField()]; ok {
				return &catalog.ValidationError{Field: m.field, Message: m.message}
			}
			return &catalog.ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Error()}
		}
		return err
	}
	if in.Price.IsNegative() {
		return &catalog.ValidationError{Field: "price", Message: "El precio no puede ser negativo."}
	}
	return nil
}
