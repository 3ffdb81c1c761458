package cipher

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ytget/ytcore/errs"
)

// Error codes
const (
	ErrCodePlayerJSNotFound  = "PLAYER_JS_NOT_FOUND"
	ErrCodePlayerJSDownload  = "PLAYER_JS_DOWNLOAD_FAILED"
	ErrCodeFunctionNotFound  = "DECIPHER_FUNCTION_NOT_FOUND"
	ErrCodeFunctionBody      = "DECIPHER_FUNCTION_BODY_NOT_FOUND"
	ErrCodeNotReady          = "DECIPHERER_NOT_READY"
	ErrCodeSignatureInvalid  = "SIGNATURE_INVALID"
	ErrCodeJSExecutionFailed = "JS_EXECUTION_FAILED"
	ErrCodeJSParsingFailed   = "JS_PARSING_FAILED"
	ErrCodeCipherMalformed   = "SIGNATURE_CIPHER_MALFORMED"
	ErrCodeOperationsStoreIO = "OPERATIONS_STORE_IO"
)

// sentinels maps codes onto the package-independent errors in errs.
var sentinels = map[string]error{
	ErrCodePlayerJSNotFound:  errs.ErrExtractionNotFound,
	ErrCodeFunctionNotFound:  errs.ErrLocatorNotFound,
	ErrCodeFunctionBody:      errs.ErrLocatorNotFound,
	ErrCodeNotReady:          errs.ErrDecipherFailed,
	ErrCodeSignatureInvalid:  errs.ErrDecipherFailed,
	ErrCodeJSExecutionFailed: errs.ErrDecipherFailed,
	ErrCodeJSParsingFailed:   errs.ErrDecipherFailed,
	ErrCodeCipherMalformed:   errs.ErrCipherParse,
}

// Error represents a structured error with code and details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the matching errs sentinel so errors.Is works across
// packages.
func (e *Error) Unwrap() error {
	return sentinels[e.Code]
}

// MarshalJSON implements json.Marshaler
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal(&struct {
		*Alias
		Error string `json:"error"`
	}{
		Alias: (*Alias)(e),
		Error: e.Error(),
	})
}

// NewError creates a new Error with the given code and message
func NewError(code string, message string, details ...any) *Error {
	e := &Error{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

func hasCode(err error, codes ...string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	for _, c := range codes {
		if e.Code == c {
			return true
		}
	}
	return false
}

// IsNotFound returns true if the player script or the decipher function could
// not be found.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodePlayerJSNotFound, ErrCodeFunctionNotFound, ErrCodeFunctionBody)
}

// IsInvalid returns true if the decipher function produced no usable string
func IsInvalid(err error) bool {
	return hasCode(err, ErrCodeSignatureInvalid)
}

// IsJSError returns true if the error is a JavaScript execution error
func IsJSError(err error) bool {
	return hasCode(err, ErrCodeJSExecutionFailed, ErrCodeJSParsingFailed)
}

// IsMalformed returns true if a signature cipher string could not be used
func IsMalformed(err error) bool {
	return hasCode(err, ErrCodeCipherMalformed)
}
