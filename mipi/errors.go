package mipi

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyReportName   = errors.New("empty report name")
	ErrInvalidDateRange  = errors.New("from date is after to date")
	ErrUnknownReportCode = errors.New("unknown report code")
	ErrOperationNotFound = errors.New("operation not described by service")
	ErrMalformedResponse = errors.New("malformed response")
	ErrInvalidValue      = errors.New("invalid value")
)

// FaultError is a SOAP fault returned by the service.
type FaultError struct {
	Code    string
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("soap fault %s: %s", e.Code, e.Message)
}
