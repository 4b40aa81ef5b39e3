package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/ZaguanLabs/cliptl"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Registration errors only occur for empty tags or nil funcs.
	_ = validate.RegisterValidation("lang", validLang)
	_ = validate.RegisterValidation("target_lang", validTargetLang)
}

// validLang accepts "auto" and any well-formed BCP 47 tag.
func validLang(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if strings.EqualFold(code, cliptl.AutoLang) {
		return true
	}
	_, err := language.Parse(code)
	return err == nil
}

// validTargetLang rejects "auto", which only makes sense as a source.
func validTargetLang(fl validator.FieldLevel) bool {
	return !strings.EqualFold(fl.Field().String(), cliptl.AutoLang)
}

// Validate checks cfg against its validate tags.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validation failed: %w", err)
		}
		var errMsgs []string
		for _, err := range verrs {
			errMsgs = append(errMsgs, fmt.Sprintf(
				"Field: %s, Tag: %s, Param: %s", err.Namespace(), err.Tag(), err.Param(),
			))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(errMsgs, "; "))
	}
	return nil
}
