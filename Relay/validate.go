package Relay

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"Folio/Models"
)

// submissionValidator checks the required tags on Models.Submission and
// renders failures in English for the server log.
type submissionValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newSubmissionValidator() *submissionValidator {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, found := uni.GetTranslator("en")
	if !found {
		panic("validator: english translator not registered")
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// Errors name fields by their json key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(err)
	}
	return &submissionValidator{validate: v, trans: trans}
}

// check returns the fields that failed, translated, or nil when s is valid.
func (sv *submissionValidator) check(s Models.Submission) ([]string, error) {
	err := sv.validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(sv.trans))
	}
	return msgs, nil
}
