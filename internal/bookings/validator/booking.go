package validator

import (
	"errors"
	"fmt"
	"strings"

	"deskbook/pkg/logger"
	"deskbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

const dateTag = "required,datetime=" + model.DateLayout

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateDates checks that both raw dates are calendar dates in YYYY-MM-DD.
func (v *BookingValidator) ValidateDates(dateFrom, dateTo string) error {
	return v.validateDateFields(
		dateField{"dateFrom", dateFrom},
		dateField{"dateTo", dateTo},
	)
}

// ValidateDate checks a single raw date, reported under field.
func (v *BookingValidator) ValidateDate(field, value string) error {
	return v.validateDateFields(dateField{field, value})
}

type dateField struct {
	name  string
	value string
}

func (v *BookingValidator) validateDateFields(fields ...dateField) error {
	var errs ValidationErrors
	for _, f := range fields {
		if err := v.validate.Var(f.value, dateTag); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				for _, ve := range validationErrs {
					errs = append(errs, ValidationError{Field: f.name, Message: translateTag(f.name, ve)})
				}
				continue
			}
			return err
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateRequest checks the non-date fields of a decoded create request.
func (v *BookingValidator) ValidateRequest(req *model.CreateBookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: translateTag(err.Field(), err),
		})
	}

	return validationErrors
}

func translateTag(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, err.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a calendar date in %s format", field, err.Param())
	}
	return err.Error()
}
