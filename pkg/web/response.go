// Package web defines the JSON envelope shared by the backend and its clients.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every failed backend response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) ErrorResponse {
	return ErrorResponse{Message: err.Error()}
}

// Message wraps a plain message into json friendly struct.
func Message(msg string) ErrorResponse {
	return ErrorResponse{Message: msg}
}

// GetErrorMsg converts the first validation error into a human readable message.
func GetErrorMsg(ve validator.ValidationErrors) ErrorResponse {
	if len(ve) == 0 {
		return Message("invalid request")
	}

	fe := ve[0]

	switch fe.Tag() {
	case "required":
		return Message(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return Message(fmt.Sprintf("%s must be a valid email", fe.Field()))
	case "min":
		return Message(fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param()))
	case "token":
		return Message(fmt.Sprintf("%s is not a supported token", fe.Field()))
	}

	return Message(fmt.Sprintf("%s is invalid", fe.Field()))
}
