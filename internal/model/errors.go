package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ProblemTypeBase prefixes every problem type URI.
const ProblemTypeBase = "https://hearth-api.forgo.software/errors/"

// ErrorCode is the numeric code carried in a problem response. The thousands
// digit groups codes by family: 1 authentication, 2 access, 3 resources,
// 4 input, 5 server.
type ErrorCode int

const (
	ErrCodeUnauthorized ErrorCode = 1001
	ErrCodeTokenExpired ErrorCode = 1002
	ErrCodeTokenInvalid ErrorCode = 1003
	ErrCodeLoginFailed  ErrorCode = 1004

	ErrCodeForbidden          ErrorCode = 2001
	ErrCodeNotMember          ErrorCode = 2002
	ErrCodeInsufficientAccess ErrorCode = 2003
	ErrCodeChannelClosed      ErrorCode = 2004

	ErrCodeNotFound      ErrorCode = 3001
	ErrCodeAlreadyExists ErrorCode = 3002
	ErrCodeConflict      ErrorCode = 3003

	ErrCodeValidation    ErrorCode = 4001
	ErrCodeInvalidInput  ErrorCode = 4002
	ErrCodeLimitExceeded ErrorCode = 4003

	ErrCodeInternal     ErrorCode = 5001
	ErrCodeDatabase     ErrorCode = 5002
	ErrCodeInvalidState ErrorCode = 5004
)

// ProblemDetails is an RFC 9457 problem document. Code, Limit and Current
// are extension members.
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`

	Code    ErrorCode `json:"code,omitempty"`
	Limit   *int      `json:"limit,omitempty"`
	Current *int      `json:"current,omitempty"`
}

// FieldError points a validation failure at one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON sends p as an application/problem+json response.
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// problemKind is the fixed part of a problem response: everything except
// the detail and extensions.
type problemKind struct {
	slug   string
	title  string
	status int
	code   ErrorCode
}

var (
	kindUnauthorized  = problemKind{"unauthorized", "Unauthorized", http.StatusUnauthorized, ErrCodeUnauthorized}
	kindForbidden     = problemKind{"forbidden", "Forbidden", http.StatusForbidden, ErrCodeForbidden}
	kindInsufficient  = problemKind{"insufficient-access", "Insufficient Access Level", http.StatusForbidden, ErrCodeInsufficientAccess}
	kindNotFound      = problemKind{"not-found", "Not Found", http.StatusNotFound, ErrCodeNotFound}
	kindConflict      = problemKind{"conflict", "Conflict", http.StatusConflict, ErrCodeConflict}
	kindValidation    = problemKind{"validation", "Validation Error", http.StatusUnprocessableEntity, ErrCodeValidation}
	kindLimitExceeded = problemKind{"limit-exceeded", "Limit Exceeded", http.StatusUnprocessableEntity, ErrCodeLimitExceeded}
	kindTooLarge      = problemKind{"too-large", "Payload Too Large", http.StatusRequestEntityTooLarge, ErrCodeLimitExceeded}
	kindBadRequest    = problemKind{"bad-request", "Bad Request", http.StatusBadRequest, ErrCodeInvalidInput}
	kindRateLimited   = problemKind{"rate-limited", "Too Many Requests", http.StatusTooManyRequests, 0}
	kindInternal      = problemKind{"internal", "Internal Server Error", http.StatusInternalServerError, ErrCodeInternal}
	kindInvalidState  = problemKind{"invalid-state", "Invalid State", http.StatusInternalServerError, ErrCodeInvalidState}
)

func (k problemKind) with(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   ProblemTypeBase + k.slug,
		Title:  k.title,
		Status: k.status,
		Detail: detail,
		Code:   k.code,
	}
}

func NewUnauthorizedError(detail string) *ProblemDetails { return kindUnauthorized.with(detail) }

func NewForbiddenError(detail string) *ProblemDetails { return kindForbidden.with(detail) }

// NewInsufficientAccessError is returned when the requester's tier toward a
// group is below what the operation needs.
func NewInsufficientAccessError(detail string) *ProblemDetails { return kindInsufficient.with(detail) }

func NewNotFoundError(resource string) *ProblemDetails {
	return kindNotFound.with(resource + " not found")
}

func NewConflictError(detail string) *ProblemDetails { return kindConflict.with(detail) }

func NewBadRequestError(detail string) *ProblemDetails { return kindBadRequest.with(detail) }

// NewPayloadTooLargeError rejects a request body over the accepted size.
func NewPayloadTooLargeError(detail string) *ProblemDetails { return kindTooLarge.with(detail) }

// NewValidationError summarises the first failing field in Detail and lists
// all of them in Errors.
func NewValidationError(fields []FieldError) *ProblemDetails {
	var detail string
	switch len(fields) {
	case 0:
		detail = "One or more fields failed validation"
	case 1:
		detail = fields[0].Field + ": " + fields[0].Message
	default:
		detail = fmt.Sprintf("%s: %s (and %d more errors)", fields[0].Field, fields[0].Message, len(fields)-1)
	}
	p := kindValidation.with(detail)
	p.Errors = fields
	return p
}

func NewLimitExceededError(resource string, limit, current int) *ProblemDetails {
	p := kindLimitExceeded.with(fmt.Sprintf("Maximum of %d %s reached", limit, resource))
	p.Limit, p.Current = &limit, &current
	return p
}

func NewRateLimitError(retryAfter int) *ProblemDetails {
	return kindRateLimited.with(fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter))
}

func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return kindInternal.with(detail)
}

// NewInvalidStateError reports a server-side invariant violation
func NewInvalidStateError(detail string) *ProblemDetails { return kindInvalidState.with(detail) }
