package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func OK(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

func Error(msg string, errs ...string) Response {
	return Response{
		Success: false,
		Message: msg,
		Errors:  errs,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		field := lowerFirst(err.Field())

		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("%s is required", field))
		case "email":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be a valid email address", field))
		case "oneof":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be one of: %s", field, err.Param()))
		case "min":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be at least %s characters long", field, err.Param()))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must be at most %s characters long", field, err.Param()))
		case "numeric":
			errMsgs = append(errMsgs, fmt.Sprintf("%s must contain digits only", field))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("%s is not valid", field))
		}
	}

	return Response{
		Success: false,
		Message: "Validation failed",
		Errors:  errMsgs,
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}
