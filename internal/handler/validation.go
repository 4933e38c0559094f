package handler

import (
	"github.com/go-playground/validator/v10"

	appErrors "github.com/costmatrix/analytics-engine/pkg/errors"
)

// paramValidator validates query-parameter structs: one shared
// *validator.Validate instance, struct tags carry the rules.
var paramValidator = validator.New()

// validateStruct runs paramValidator over req and, on failure, wraps the
// first field error into the ErrValidation envelope handlers already speak.
func validateStruct(req interface{}) error {
	if err := paramValidator.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return appErrors.Clone(appErrors.ErrValidation, verrs[0].Field()+" "+verrs[0].Tag())
		}
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return nil
}
