package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const (
	msgMissingFields = "Missing required fields: symbol, date, and amount are required"
	msgAmount        = "Investment amount must be greater than 0"
	msgInvalidDate   = "Invalid date format, expected YYYY-MM-DD"
	msgInvalidBody   = "Invalid request body"
)

// bindingMessage turns a gin binding error into the message shown by the form.
// A missing field is reported before any other failure.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgInvalidBody
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return msgMissingFields
		}
	}
	switch verrs[0].Tag() {
	case "gt":
		return msgAmount
	case "datetime":
		return msgInvalidDate
	default:
		return msgInvalidBody
	}
}
