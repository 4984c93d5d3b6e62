package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_010"
)

// Sentinel pseudo-codes used by GetCode.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Similarity module error codes.
const (
	ErrCodeEmptyMemberList     ErrorCode = "SIM_001"
	ErrCodeComparisonFailed    ErrorCode = "SIM_002"
	ErrCodeOrderingInvalid     ErrorCode = "SIM_003"
	ErrCodeMatrixNotFound      ErrorCode = "SIM_004"
	ErrCodeMatrixCorrupt       ErrorCode = "SIM_005"
	ErrCodePairStoreFailure    ErrorCode = "SIM_006"
	ErrCodeCompletionCancelled ErrorCode = "SIM_007"
)

// Timeline module error codes.
const (
	ErrCodeInvalidWindow   ErrorCode = "TL_001"
	ErrCodeInvalidBinWidth ErrorCode = "TL_002"
	ErrCodeEmptyTimestamps ErrorCode = "TL_003"
	ErrCodeInvalidFISpan   ErrorCode = "TL_004"
)

// Catalog module error codes.
const (
	ErrCodeFamilyNotFound  ErrorCode = "CAT_001"
	ErrCodeEventNotFound   ErrorCode = "CAT_002"
	ErrCodeFamilyInvalid   ErrorCode = "CAT_003"
	ErrCodeCatalogConflict ErrorCode = "CAT_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeEmptyMemberList:     http.StatusBadRequest,
	ErrCodeComparisonFailed:    http.StatusInternalServerError,
	ErrCodeOrderingInvalid:     http.StatusInternalServerError,
	ErrCodeMatrixNotFound:      http.StatusNotFound,
	ErrCodeMatrixCorrupt:       http.StatusInternalServerError,
	ErrCodePairStoreFailure:    http.StatusInternalServerError,
	ErrCodeCompletionCancelled: http.StatusRequestTimeout,

	ErrCodeInvalidWindow:   http.StatusBadRequest,
	ErrCodeInvalidBinWidth: http.StatusBadRequest,
	ErrCodeEmptyTimestamps: http.StatusBadRequest,
	ErrCodeInvalidFISpan:   http.StatusBadRequest,

	ErrCodeFamilyNotFound:  http.StatusNotFound,
	ErrCodeEventNotFound:   http.StatusNotFound,
	ErrCodeFamilyInvalid:   http.StatusUnprocessableEntity,
	ErrCodeCatalogConflict: http.StatusConflict,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeServiceUnavailable: "service unavailable",

	ErrCodeEmptyMemberList:     "member list is empty",
	ErrCodeComparisonFailed:    "pairwise comparison failed",
	ErrCodeOrderingInvalid:     "ordering is not a valid permutation",
	ErrCodeMatrixNotFound:      "similarity matrix not found",
	ErrCodeMatrixCorrupt:       "similarity matrix file corrupt",
	ErrCodePairStoreFailure:    "pair store operation failed",
	ErrCodeCompletionCancelled: "matrix completion cancelled",

	ErrCodeInvalidWindow:   "time window is inverted or empty",
	ErrCodeInvalidBinWidth: "bin width must be positive",
	ErrCodeEmptyTimestamps: "timestamp list is empty",
	ErrCodeInvalidFISpan:   "frequency-index span is inverted",

	ErrCodeFamilyNotFound:  "family not found",
	ErrCodeEventNotFound:   "event not found",
	ErrCodeFamilyInvalid:   "family violates catalog invariants",
	ErrCodeCatalogConflict: "catalog write conflict",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
