package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/paginate"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Цена хранится с точностью до сотых.
const pricePlaces = 2

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct прогоняет теги validate и собирает ошибки по полям.
func validateStruct(s any) *e.ValidationError {
	verr := &e.ValidationError{}

	err := validate.Struct(s)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return verr.Add("body", err.Error())
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}

	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + fe.Param() + " is empty"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "email":
		return "must be a valid email"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain only digits"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

// checkPrice проверяет, что цена положительна и не точнее сотых.
func checkPrice(verr *e.ValidationError, field string, price decimal.Decimal) {
	switch {
	case !price.IsPositive():
		verr.Add(field, e.ErrInvalidPrice.Error())
	case !price.Equal(price.Round(pricePlaces)):
		verr.Add(field, e.ErrPricePrecision.Error())
	}
}

func validateDraft(draft *PurchaseDraft) error {
	if draft == nil {
		return e.NewValidationError("body", "is required")
	}

	verr := validateStruct(draft)
	checkPrice(verr, "unit_price", draft.UnitPrice)
	if draft.Date.IsZero() {
		verr.Add("date", "is required")
	}

	return verr.OrNil()
}

func validateListReq(req *ListReq) error {
	if req == nil || req.Page < 1 {
		return e.NewValidationError("page", e.ErrInvalidPagination.Error())
	}
	if req.PageSize < 1 || req.PageSize > paginate.MaxPageSize {
		return e.NewValidationError("page_size", fmt.Sprintf("must be between 1 and %d", paginate.MaxPageSize))
	}
	return nil
}
