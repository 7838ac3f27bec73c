package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidPrice        = "INVALID_PRICE"
	ErrCodeGuestContact        = "GUEST_CONTACT_REQUIRED"
	ErrCodeClientIDRequired    = "CLIENT_ID_REQUIRED"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeProductExists       = "PRODUCT_EXISTS"
	ErrCodeProductInUse        = "PRODUCT_IN_USE"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeIllegalTransition   = "ILLEGAL_TRANSITION"
	ErrCodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	ErrCodeSlugTaken           = "SLUG_TAKEN"
	ErrCodeCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeContentNotFound     = "CONTENT_NOT_FOUND"
	ErrCodeContentKeyTaken     = "CONTENT_KEY_TAKEN"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodePaymentUnavailable  = "PAYMENT_UNAVAILABLE"
	ErrCodePaymentFailed       = "PAYMENT_FAILED"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeInvalidFeedLine     = "INVALID_FEED_LINE"
	ErrCodeInvalidProductField = "INVALID_PRODUCT"
)

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindUpstream
	KindAuthenticity
	KindUnauthorised
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

// Is reports whether target is a DomainError with the same code, so formatted
// instances still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// NewValidationError creates a validation error with a custom message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(KindValidation, ErrCodeMissingField, message)
}

// NewInsufficientStockError names the product and how far short the stock is.
func NewInsufficientStockError(productID, name string, available, requested int) *DomainError {
	label := name
	if label == "" {
		label = productID
	}
	return NewDomainError(KindConflict, ErrCodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s: available %d, requested %d", label, available, requested))
}

// NewProductNotFoundError names the missing product.
func NewProductNotFoundError(productID string) *DomainError {
	return NewDomainError(KindNotFound, ErrCodeProductNotFound,
		fmt.Sprintf("product %s not found", productID))
}

// Common domain errors
var (
	ErrMissingField         = NewDomainError(KindValidation, ErrCodeMissingField, "A required field is missing")
	ErrEmptyCart            = NewDomainError(KindValidation, ErrCodeEmptyCart, "Cart must contain at least one item")
	ErrInvalidQuantity      = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPrice         = NewDomainError(KindValidation, ErrCodeInvalidPrice, "Price must be a non-negative amount in whole cents")
	ErrGuestContactRequired = NewDomainError(KindValidation, ErrCodeGuestContact, "Guest checkout requires first name, last name and email")
	ErrClientIDRequired     = NewDomainError(KindValidation, ErrCodeClientIDRequired, "X-Client-ID header is required for anonymous clients")
	ErrInvalidStatus        = NewDomainError(KindValidation, ErrCodeInvalidStatus, "Status must be one of PENDING, PAID, SHIPPED, DELIVERED, CANCELLED")
	ErrInvalidProduct       = NewDomainError(KindValidation, ErrCodeInvalidProductField, "Product is invalid")

	ErrProductNotFound  = NewDomainError(KindNotFound, ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound    = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrCategoryNotFound = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrCustomerNotFound = NewDomainError(KindNotFound, ErrCodeCustomerNotFound, "Customer not found")
	ErrContentNotFound  = NewDomainError(KindNotFound, ErrCodeContentNotFound, "Content block not found")

	ErrInsufficientStock = NewDomainError(KindConflict, ErrCodeInsufficientStock, "Insufficient stock")
	ErrIllegalTransition = NewDomainError(KindConflict, ErrCodeIllegalTransition, "Order status transition is not allowed")
	ErrProductExists     = NewDomainError(KindConflict, ErrCodeProductExists, "A product with this id already exists")
	ErrProductInUse      = NewDomainError(KindConflict, ErrCodeProductInUse, "Product is referenced by existing orders")
	ErrSlugTaken         = NewDomainError(KindConflict, ErrCodeSlugTaken, "Slug is already in use")
	ErrEmailTaken        = NewDomainError(KindConflict, ErrCodeEmailTaken, "Email is already in use")
	ErrContentKeyTaken   = NewDomainError(KindConflict, ErrCodeContentKeyTaken, "Content key is already in use")

	ErrPaymentUnavailable = NewDomainError(KindUpstream, ErrCodePaymentUnavailable, "Payment processor is not configured")
	ErrPaymentFailed      = NewDomainError(KindUpstream, ErrCodePaymentFailed, "Payment processor request failed")

	ErrInvalidSignature = NewDomainError(KindAuthenticity, ErrCodeInvalidSignature, "Payment notification signature is invalid")
	ErrUnauthorised     = NewDomainError(KindUnauthorised, ErrCodeUnauthorised, "Authentication is required")
)
