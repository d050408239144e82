package inventory

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/shopspring/decimal"
)

const (
	// MaxNameLength is the maximum number of code points in a product name.
	MaxNameLength = 100
	// MaxCategoryLength is the maximum number of code points in a category.
	MaxCategoryLength = 50
)

// Validate checks the field constraints of a draft. Callers run it at the
// boundary; Service assumes drafts it receives are already valid.
func (d Draft) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.By(notBlank), validation.RuneLength(1, MaxNameLength)),
		validation.Field(&d.Category, validation.Required, validation.By(notBlank), validation.RuneLength(1, MaxCategoryLength)),
		validation.Field(&d.Price, validation.By(positiveDecimal)),
		validation.Field(&d.Quantity, validation.Min(0)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "product draft is invalid").
			WithTextCode("PRODUCT_INVALID")
	}
	return nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func positiveDecimal(value any) error {
	price, ok := value.(decimal.Decimal)
	if !ok || !price.IsPositive() {
		return errors.New("must be greater than 0")
	}
	return nil
}
