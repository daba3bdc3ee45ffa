package errors

import "net/http"

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	// checkout and order lifecycle
	CodeEmptyCart         Code = "EMPTY_CART"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeInvalidCoupon     Code = "INVALID_COUPON"
	CodeNotCancellable    Code = "NOT_CANCELLABLE"
)

// Metadata describes how a code is presented over HTTP.
type Metadata struct {
	HTTPStatus    int
	Retryable     bool
	PublicMessage string
	// MessageAllowed lets the error's own message replace PublicMessage.
	MessageAllowed bool
	DetailsAllowed bool
}

type exposure uint8

const (
	showMessage exposure = 1 << iota
	showDetails
	retryable
)

var metadataByCode = map[Code]Metadata{}

func define(code Code, status int, public string, flags exposure) {
	metadataByCode[code] = Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		Retryable:      flags&retryable != 0,
		MessageAllowed: flags&showMessage != 0,
		DetailsAllowed: flags&showDetails != 0,
	}
}

func init() {
	define(CodeValidation, http.StatusBadRequest, "validation failed", showMessage|showDetails)
	define(CodeUnauthorized, http.StatusUnauthorized, "authentication required", showMessage)
	define(CodeForbidden, http.StatusForbidden, "access denied", showMessage)
	define(CodeNotFound, http.StatusNotFound, "resource not found", showMessage)
	define(CodeConflict, http.StatusConflict, "conflict detected", showMessage)
	define(CodeStateConflict, http.StatusUnprocessableEntity, "state transition disallowed", showMessage|showDetails)
	define(CodeIdempotency, http.StatusConflict, "idempotency key reused", showMessage|showDetails)
	define(CodeRateLimit, http.StatusTooManyRequests, "rate limit exceeded", showMessage)
	define(CodeInternal, http.StatusInternalServerError, "internal server error", retryable)
	define(CodeDependency, http.StatusServiceUnavailable, "dependency unavailable", retryable|showDetails)

	define(CodeEmptyCart, http.StatusBadRequest, "cart is empty", showMessage)
	define(CodeInsufficientStock, http.StatusBadRequest, "insufficient stock", showMessage|showDetails)
	define(CodeInvalidCoupon, http.StatusBadRequest, "coupon is not valid", showMessage|showDetails)
	define(CodeNotCancellable, http.StatusBadRequest, "not cancellable", showMessage|showDetails)
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}
