package errors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrMissingCredentials is returned when username or password is empty.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrUserAlreadyExists is returned when the username is taken.
	ErrUserAlreadyExists = errors.New("username already exists")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrMissingDocument is returned when a scan request carries no file.
	ErrMissingDocument = errors.New("no file uploaded")
	// ErrUnsupportedDocument is returned when the uploaded file is not plain text.
	ErrUnsupportedDocument = errors.New("only plain text documents are supported")
	// ErrDocumentTooLarge is returned when the uploaded file exceeds the size cap.
	ErrDocumentTooLarge = errors.New("document too large")
	// ErrMissingReason is returned when a credit request has no reason.
	ErrMissingReason = errors.New("reason is required")
	// ErrInsufficientCredits is returned when a user has no credits left.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrCreditRequestNotFound is returned when a credit request is not found.
	ErrCreditRequestNotFound = errors.New("credit request not found")
	// ErrCreditRequestResolved is returned when a credit request already left pending.
	ErrCreditRequestResolved = errors.New("credit request already processed")
	// ErrScanTimeout is returned when a scan exceeds its deadline.
	ErrScanTimeout = errors.New("scan timed out")
	// ErrUnauthorized is returned when no bearer token is presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken is returned when the bearer token is invalid, expired or revoked.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden is returned when a non-admin calls an admin endpoint.
	ErrForbidden = errors.New("admin access required")
	// ErrInvalidID is returned when a path id is not a positive integer.
	ErrInvalidID = errors.New("invalid id")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// ValidationError reports a malformed or incomplete request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation builds a ValidationError with the given message.
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// StorageError wraps a persistence failure with the operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

type mapping struct {
	err     error
	status  int
	message string
	code    string
}

// Messages follow the ones the browser client already displays.
var mappings = []mapping{
	{ErrMissingCredentials, http.StatusBadRequest, "Username and password are required", "MISSING_CREDENTIALS"},
	{ErrUserAlreadyExists, http.StatusBadRequest, "Username already exists", "USER_ALREADY_EXISTS"},
	{ErrInvalidCredentials, http.StatusBadRequest, "Invalid username or password", "INVALID_CREDENTIALS"},
	{ErrMissingDocument, http.StatusBadRequest, "No file uploaded", "MISSING_DOCUMENT"},
	{ErrUnsupportedDocument, http.StatusBadRequest, "Only plain text documents are supported", "UNSUPPORTED_DOCUMENT"},
	{ErrMissingReason, http.StatusBadRequest, "Reason is required", "MISSING_REASON"},
	{ErrInvalidID, http.StatusBadRequest, "Invalid id", "INVALID_ID"},
	{ErrUnauthorized, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED"},
	{ErrInvalidToken, http.StatusForbidden, "Invalid token", "INVALID_TOKEN"},
	{ErrForbidden, http.StatusForbidden, "Admin access required", "FORBIDDEN"},
	{ErrInsufficientCredits, http.StatusForbidden, "Not enough credits. Request more or wait until reset.", "INSUFFICIENT_CREDITS"},
	{ErrUserNotFound, http.StatusNotFound, "User not found", "USER_NOT_FOUND"},
	{ErrCreditRequestNotFound, http.StatusNotFound, "Credit request not found", "CREDIT_REQUEST_NOT_FOUND"},
	{ErrCreditRequestResolved, http.StatusConflict, "Credit request already processed", "CREDIT_REQUEST_RESOLVED"},
	{ErrDocumentTooLarge, http.StatusRequestEntityTooLarge, "Document too large", "DOCUMENT_TOO_LARGE"},
	{ErrScanTimeout, http.StatusServiceUnavailable, "Scan timed out, try again later", "SCAN_TIMEOUT"},
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.message, m.code)
		}
	}

	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "STORAGE_ERROR")
	}

	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// CodeForStatus derives an error code from a bare HTTP status, e.g. 404 -> NOT_FOUND.
func CodeForStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "INTERNAL_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
