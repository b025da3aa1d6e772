package types

import "fmt"

// CustomError carries an HTTP status and a short type tag through the
// handler chain to the global error handler.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewCustomError builds a CustomError for the given status code.
func NewCustomError(code int, message, errType string) *CustomError {
	return &CustomError{Code: code, Message: message, Type: errType}
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
