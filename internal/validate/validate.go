// Package validate checks mutation inputs before they reach the state.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/nikbrunner/netmark/internal/ipv4"
	"github.com/nikbrunner/netmark/internal/model"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// reasons maps validator tags to readable messages.
var reasons = map[string]string{
	"notblank":   "must not be blank",
	"required":   "is required",
	"oneof":      "must be one of",
	"dottedquad": "must be a dotted-quad IPv4 address",
}

// Struct validates one of the model input structs and returns the first
// failure as a *model.ValidationError.
func Struct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}

	fe := ve[0]
	reason, ok := reasons[fe.Tag()]
	if !ok {
		reason = "failed on " + fe.Tag()
	}
	if fe.Param() != "" {
		reason += " " + fe.Param()
	}
	return &model.ValidationError{Field: fieldPath(fe), Reason: reason}
}

// fieldPath drops the top-level struct name from the namespace, so
// "NewBookmarkParams.ports[0].port" becomes "ports[0].port".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if comma := strings.Index(name, ","); comma != -1 {
				name = name[:comma]
			}
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		mustRegister(validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		}))
		mustRegister(validate.RegisterValidation("dottedquad", func(fl validator.FieldLevel) bool {
			return ipv4.Valid(fl.Field().String())
		}))

		validate.RegisterStructValidation(func(sl validator.StructLevel) {
			p := sl.Current().Interface().(model.NewBookmarkParams)
			checkIPValue(sl, p.Type, p.Value)
		}, model.NewBookmarkParams{})
		validate.RegisterStructValidation(func(sl validator.StructLevel) {
			u := sl.Current().Interface().(model.BookmarkUpdate)
			checkIPValue(sl, u.Type, u.Value)
		}, model.BookmarkUpdate{})
	})
	return validate
}

// checkIPValue requires a valid address when the bookmark is IP-typed.
func checkIPValue(sl validator.StructLevel, typ model.BookmarkType, value string) {
	if typ != model.TypeIP || strings.TrimSpace(value) == "" {
		return
	}
	if err := sl.Validator().Var(value, "dottedquad"); err != nil {
		sl.ReportError(value, "value", "Value", "dottedquad", "")
	}
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}
