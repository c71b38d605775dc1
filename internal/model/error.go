package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
	// OrderID names an order that was stored before the request failed.
	OrderID string `json:"orderId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeMissingContactFields = "MISSING_CONTACT_FIELDS"
	ErrCodeMissingBillingFields = "MISSING_BILLING_FIELDS"
	ErrCodeInvalidCheckoutState = "INVALID_CHECKOUT_STATE"
	ErrCodeInvalidOrder         = "INVALID_ORDER"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeCategoryExists       = "CATEGORY_EXISTS"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeNotificationFailed   = "NOTIFICATION_FAILED"
	ErrCodeMailNotConfigured    = "MAIL_NOT_CONFIGURED"
	ErrCodePersistence          = "PERSISTENCE_FAILED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// ErrorKind groups domain errors by how the HTTP boundary reports them.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindAuth         ErrorKind = "auth"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindNotification ErrorKind = "notification"
	KindPersistence  ErrorKind = "persistence"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Kind    ErrorKind
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that a detailed copy created with
// WithMessage still satisfies errors.Is against the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error carrying a more specific message.
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message, Kind: e.Kind}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, kind ErrorKind) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// Common domain errors
var (
	ErrValidation           = NewDomainError(ErrCodeValidation, "Invalid input", KindValidation)
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Add items to cart", KindValidation)
	ErrMissingContactFields = NewDomainError(ErrCodeMissingContactFields, "Fill company, contact, email, and address", KindValidation)
	ErrMissingBillingFields = NewDomainError(ErrCodeMissingBillingFields, "Fill at least billing company and billing address", KindValidation)
	ErrInvalidCheckoutState = NewDomainError(ErrCodeInvalidCheckoutState, "Checkout is not at the billing step", KindValidation)
	ErrInvalidOrder         = NewDomainError(ErrCodeInvalidOrder, "Missing order payload fields", KindValidation)
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found", KindNotFound)
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found", KindNotFound)
	ErrCategoryNotFound     = NewDomainError(ErrCodeCategoryNotFound, "Category not found", KindNotFound)
	ErrCategoryExists       = NewDomainError(ErrCodeCategoryExists, "Category already exists", KindConflict)
	ErrUnauthorised         = NewDomainError(ErrCodeUnauthorised, "Unauthorized", KindAuth)
	ErrNotificationFailed   = NewDomainError(ErrCodeNotificationFailed, "Failed to send order email", KindNotification)
	ErrMailNotConfigured    = NewDomainError(ErrCodeMailNotConfigured, "SMTP_USER / SMTP_PASS missing", KindNotification)
	ErrPersistence          = NewDomainError(ErrCodePersistence, "Failed to persist data", KindPersistence)
)

// KindOf returns the kind of the first DomainError in err's chain, or an
// empty kind when err carries none.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
