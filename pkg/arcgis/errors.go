package arcgis

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrMissingToken is returned when the portal answers a token request without a token.
	ErrMissingToken = errors.New("portal returned no token")
)

// ErrorClass represents a classification of request errors.
type ErrorClass string

const (
	// ErrorClassClient represents rejected requests (bad parameters, unknown layer).
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassAuth represents invalid credentials and invalid or missing tokens.
	ErrorClassAuth ErrorClass = "auth"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// ArcGIS error codes for token problems.
const (
	codeInvalidToken  = 498
	codeTokenRequired = 499
)

// ServiceError is an error reported by a portal or feature service, either as
// an HTTP status or as an error object in a 200 response body.
type ServiceError struct {
	// StatusCode is the HTTP status of the response (0 for network errors)
	StatusCode int
	// Code is the ArcGIS error code, equal to StatusCode when the body had none
	Code       int
	ErrorClass ErrorClass
	Message    string
	Details    []string
	Err        error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(e.Details, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("ArcGIS %s error (code %d): %s: %v",
			e.ErrorClass, e.Code, msg, e.Err)
	}
	return fmt.Sprintf("ArcGIS %s error (code %d): %s",
		e.ErrorClass, e.Code, msg)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is a credential or token error.
func IsAuthError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.ErrorClass == ErrorClassAuth
}

// classifyCode maps an ArcGIS or HTTP error code to an ErrorClass.
func classifyCode(code int) ErrorClass {
	switch {
	case code == codeInvalidToken, code == codeTokenRequired,
		code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrorClassAuth
	case code >= 400 && code < 500:
		return ErrorClassClient
	case code >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}
