package validator

import (
	stderrors "errors"

	"github.com/go-playground/validator/v10"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// пустая строка означает "режим не задан"
	_ = validate.RegisterValidation("powermode", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || domain.PowerMode(s).Valid()
	})
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return domain.IsValidSlug(fl.Field().String())
	})
}

// Validate - валидация структуры. Ошибки валидации возвращаются как VALIDATION_FAILED
// с описанием нарушенного правила для каждого поля.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ErrInvalidRequest.Wrap(err)
	}

	details := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return errors.ErrValidationFailed.WithDetails(details).Wrap(err)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
