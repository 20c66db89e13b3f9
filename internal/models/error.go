package models

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrMissingOrderID       = errors.New("order id is required")
	ErrDataNotFound         = errors.New("data not found")
	ErrInternalError        = errors.New("internal error")
)

// GatewayError is returned when the payment gateway rejects or can not process request
type GatewayError struct {
	Code    int
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// NewGatewayError creates gateway error with http status code and gateway message
func NewGatewayError(code int, message string) *GatewayError {
	if message == "" {
		message = fmt.Sprintf("gateway request failed with status %d", code)
	}
	return &GatewayError{Code: code, Message: message}
}
