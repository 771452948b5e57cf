// Package web defines common components for a web application.
package web

import "github.com/go-playground/validator/v10"

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken          string `json:"access_token,omitempty"`
	AccessTokenExpiresAt string `json:"access_token_expires_at,omitempty"`
	Data                 any    `json:"data,omitempty"`
	Error                string `json:"error,omitempty"`
}

// Error wraps a given err into a json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a readable message for a request validation error.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return " must be greater or equal than " + fe.Param()
	case "max":
		return " must be less or equal than " + fe.Param()
	case "oneof":
		return " must be one of " + fe.Param()
	case "email":
		return " must be a valid email"
	case "alphanum":
		return " must contain only letters and numbers"
	case "kwh":
		return " must be a positive decimal amount"
	}

	return " is invalid"
}
