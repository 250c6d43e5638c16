package handler

import (
	"reflect"
	"strings"

	"foodmart/internal/model"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their JSON name
// and checks the money fields tags cannot express.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(menuItemRequestValidation, model.MenuItemRequest{})
	v.RegisterStructValidation(menuItemUpdateValidation, model.MenuItemUpdate{})
	v.RegisterStructValidation(couponCheckValidation, model.CouponCheckRequest{})

	return v
}

func menuItemRequestValidation(sl validator.StructLevel) {
	req := sl.Current().Interface().(model.MenuItemRequest)
	if !req.Price.IsPositive() {
		sl.ReportError(req.Price, "price", "Price", "gt0", "")
	}
}

func menuItemUpdateValidation(sl validator.StructLevel) {
	req := sl.Current().Interface().(model.MenuItemUpdate)
	if req.Price != nil && !req.Price.IsPositive() {
		sl.ReportError(*req.Price, "price", "Price", "gt0", "")
	}
}

func couponCheckValidation(sl validator.StructLevel) {
	req := sl.Current().Interface().(model.CouponCheckRequest)
	if req.Amount.IsNegative() {
		sl.ReportError(req.Amount, "amount", "Amount", "gte0", "")
	}
}
