// Package validation проверяет входные данные запросов: теги validator/v10,
// собственные правила (CNPJ, аббревиатура клиента, тип производства) и
// перевод ошибок полей в ErrValidation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var acronymPattern = regexp.MustCompile(`^[A-Z]{2,5}$`)

// Get возвращает общий экземпляр валидатора.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		v.RegisterStructValidation(productionTypeValidation, model.ProductionType{})

		mustRegister(v, "cnpj", func(fl validator.FieldLevel) bool {
			return IsValidCNPJ(fl.Field().String())
		})
		mustRegister(v, "acronym", func(fl validator.FieldLevel) bool {
			return acronymPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "role", func(fl validator.FieldLevel) bool {
			return model.Role(fl.Field().String()).Valid()
		})
		mustRegister(v, "nullgt", nullDecimalBound(decimal.Decimal.GreaterThan))
		mustRegister(v, "nullgte", nullDecimalBound(decimal.Decimal.GreaterThanOrEqual))

		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// decimalValue подставляет валидатору значение денежных полей как float64,
// чтобы к ним применялись числовые теги gte/gt.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// nullDecimalBound проверяет необязательное число: пустое значение допустимо,
// заданное сравнивается с параметром тега, включая ноль.
func nullDecimalBound(cmp func(d, bound decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		nd, ok := fl.Field().Interface().(decimal.NullDecimal)
		if !ok {
			return false
		}
		if !nd.Valid {
			return true
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(nd.Decimal, bound)
	}
}

func productionTypeValidation(sl validator.StructLevel) {
	p := sl.Current().Interface().(model.ProductionType)
	if p.Kind != model.ProductionRotary && p.Kind != model.ProductionLocalized {
		return
	}
	if !p.PayloadMatchesKind() {
		sl.ReportError(p.Kind, "type", "Kind", "payload", string(p.Kind))
	}
}

// Struct проверяет структуру и возвращает ErrValidation со списком всех ошибок полей.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.ErrValidation.Wrap(err)
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fieldPath(fe)
		msg := translate(fe, name)
		fields = append(fields, apperror.FieldError{Field: name, Message: msg})
		messages = append(messages, msg)
	}

	return apperror.ErrValidation.Withf("%s", strings.Join(messages, "; ")).WithFields(fields)
}

// fieldPath возвращает путь поля без имени корневой структуры: address.state, productionType.type.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

var messageTemplates = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"url":      "%s must be a valid URL",
	"uuid":     "%s must be a valid id",
	"alpha":    "%s must contain only letters",
	"cnpj":     "%s must be a valid CNPJ",
	"acronym":  "%s must be 2 to 5 uppercase letters",
	"role":     "%s must be one of ADMIN, DEFAULT, PRINTING, FINANCING",
	"payload":  "%s does not match the submitted production data",
}

var messageWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"len":      "%s must be exactly %s characters long",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gt":       "%s must be greater than %s",
	"nullgt":   "%s must be greater than %s",
	"nullgte":  "%s must be greater than or equal to %s",
	"lt":       "%s must be less than %s",
	"gtfield":  "%s must be after %s",
	"gtefield": "%s must not be before %s",
}

func translate(fe validator.FieldError, field string) string {
	tag, param := fe.Tag(), fe.Param()

	if tpl, ok := messageTemplates[tag]; ok {
		return fmt.Sprintf(tpl, field)
	}
	if tpl, ok := messageWithParam[tag]; ok {
		return fmt.Sprintf(tpl, field, param)
	}

	switch kind := fe.Kind(); {
	case tag == "min" && kind == reflect.String:
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case tag == "min" && (kind == reflect.Slice || kind == reflect.Array):
		return fmt.Sprintf("%s must contain at least %s items", field, param)
	case tag == "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case tag == "max" && kind == reflect.String:
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case tag == "max" && (kind == reflect.Slice || kind == reflect.Array):
		return fmt.Sprintf("%s must contain at most %s items", field, param)
	case tag == "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
