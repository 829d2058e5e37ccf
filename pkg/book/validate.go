package book

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/herobook/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// structValidator returns the shared validator. Field names in errors are
// the JSON names so messages point at the payload, not the Go structs.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// ValidateAndSetDefaults checks the whole request and applies defaults to
// every optional field. It has no other side effects and is idempotent.
func (r *Request) ValidateAndSetDefaults() error {
	if r.validated {
		return nil
	}
	if err := errors.ValidateOrderID(r.OrderID); err != nil {
		return err
	}
	if err := structValidator().Struct(r); err != nil {
		return translate(err)
	}
	r.SetDefaults()
	if _, err := r.Spec.Geometry(); err != nil {
		return err
	}
	r.validated = true
	return nil
}

// SetDefaults fills unset optional fields with the documented defaults.
func (r *Request) SetDefaults() {
	r.Spec.SetDefaults()
	if r.Child.Pronouns == "" {
		r.Child.Pronouns = DefaultPronouns
	}
	if r.Options == nil {
		r.Options = &Personalization{}
	}
	r.Options.SetDefaults()
	if r.Shipping != nil && r.Shipping.Country == "" {
		r.Shipping.Country = DefaultCountry
	}
}

// SetDefaults fills unset spec fields.
func (s *RenderSpec) SetDefaults() {
	if s.Trim == "" {
		s.Trim = DefaultTrim
	}
	if s.Bleed == "" {
		s.Bleed = DefaultBleed
	}
	if s.PageCount == 0 {
		s.PageCount = InteriorPageCount
	}
	if s.ColorSpace == "" {
		s.ColorSpace = DefaultColorSpace
	}
	if s.Binding == "" {
		s.Binding = DefaultBinding
	}
}

// SetDefaults fills unset personalization fields. Dedication stays empty;
// the dedication page generates its own fallback.
func (p *Personalization) SetDefaults() {
	if p.FavoriteAnimal == "" {
		p.FavoriteAnimal = DefaultFavoriteAnimal
	}
	if p.FavoriteFood == "" {
		p.FavoriteFood = DefaultFavoriteFood
	}
	if p.FavoriteColor == "" {
		p.FavoriteColor = DefaultFavoriteColor
	}
	if p.Hometown == "" {
		p.Hometown = DefaultHometown
	}
	if p.Occasion == "" {
		p.Occasion = DefaultOccasion
	}
}

// translate converts validator errors into an INVALID_INPUT error naming the
// first offending field.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid render request")
	}
	fe := verrs[0]
	return errors.New(errors.ErrCodeInvalidInput, "%s %s", fieldPath(fe), describe(fe))
}

// fieldPath strips the root struct name from the namespace:
// "Request.manuscript.pages[3].text" becomes "manuscript.pages[3].text".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have exactly %s entries (got %d)", fe.Param(), reflect.ValueOf(fe.Value()).Len())
		}
		return fmt.Sprintf("must have length %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "eq":
		return fmt.Sprintf("must equal %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "must be a valid email address"
	case "notblank":
		return "must not be blank"
	case "url":
		return "must be a valid URL"
	case "http_url":
		return "must be an http or https URL"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// Validate is the package-level form of ValidateAndSetDefaults. It returns
// the same request with defaults applied.
func Validate(r *Request) (*Request, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "render request is empty")
	}
	if err := r.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return r, nil
}
