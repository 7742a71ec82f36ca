package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/intake-service/internal/dtos"
	"github.com/poofware/intake-service/internal/utils"
)

var intakeValidate = validator.New()

// formatValidationErrors is a helper to convert validator errors into a user-friendly format.
func formatValidationErrors(errs validator.ValidationErrors) []dtos.ValidationErrorDetail {
	var details []dtos.ValidationErrorDetail
	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required", "required_without":
			message = fmt.Sprintf("Field '%s' is required", err.Field())
		case "email":
			message = fmt.Sprintf("Field '%s' must be a valid email address", err.Field())
		case "url":
			message = fmt.Sprintf("Field '%s' must be a valid URL", err.Field())
		case "min":
			message = fmt.Sprintf("Field '%s' must have at least %s entries", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("Field '%s' must not exceed %s in length", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", err.Field(), err.Tag())
		}
		details = append(details, dtos.ValidationErrorDetail{
			Field:   err.Field(),
			Message: message,
			Code:    "validation_" + err.Tag(),
		})
	}
	return details
}

// validateRequest writes a 400 and returns false when req is invalid.
func validateRequest(w http.ResponseWriter, req any) bool {
	err := intakeValidate.Struct(req)
	if err == nil {
		return true
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", formatValidationErrors(validationErrs), err)
	} else {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation error", nil, err)
	}
	return false
}
