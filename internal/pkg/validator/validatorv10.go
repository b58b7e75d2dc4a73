package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/xceltrack/xceltrack-api/internal/pkg/strcase"
)

// The identity provider rejects passwords shorter than 6 characters.
var rePassword = regexp.MustCompile(`^.{6,72}$`)

// ErrTranslatorNotFound indicates the English translator could not be loaded.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps snake_case field names to translated messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(map[string]string(vs))
	if err != nil {
		return fmt.Sprintf("validation error: %v", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator builds a validator with English messages and the custom
// "password" rule.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerPassword(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, translator: enTrans}, nil
}

func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	out := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}

	return out
}

func registerPassword(validate *validator.Validate, trans ut.Translator) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		p, ok := fl.Field().Interface().(string)
		return ok && rePassword.MatchString(p)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("password", trans,
		func(ut ut.Translator) error {
			return ut.Add("password", "{0} must be 6-72 characters", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, tErr := ut.T(fe.Tag(), fe.Field())
			if tErr != nil {
				return fe.Error()
			}
			return t
		},
	)
}
