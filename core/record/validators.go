package record

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/registro/core"
)

var (
	periodTag  = "period"
	periodText = "invalid grading period"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(periodTag, periodValidation)
	core.RegisterCustomTranslation(validate, translator, periodTag, periodText)
}

// periodValidation checks that the provided grading period is one of Periods.
func periodValidation(fl validator.FieldLevel) bool {
	period := fl.Field().String()
	for _, p := range Periods {
		if period == p {
			return true
		}
	}
	return false
}
