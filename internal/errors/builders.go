package gwerrors

import "fmt"

// ErrorBuilder provides the ancestor's fluent construction pattern for Error values.
type ErrorBuilder struct {
	err *Error
}

// NewError starts building an Error of the given code.
func NewError(code Code) *ErrorBuilder {
	return &ErrorBuilder{err: &Error{Code: code, Details: make(map[string]interface{})}}
}

func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err.Message = msg
	return b
}

func (b *ErrorBuilder) WithMessagef(format string, args ...interface{}) *ErrorBuilder {
	b.err.Message = fmt.Sprintf(format, args...)
	return b
}

func (b *ErrorBuilder) WithDetail(key string, value interface{}) *ErrorBuilder {
	b.err.Details[key] = value
	return b
}

func (b *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	if cause != nil {
		b.err.Cause = cause
	}
	return b
}

func (b *ErrorBuilder) Build() *Error {
	if b.err.Message == "" {
		b.err.Message = defaultMessage(b.err.Code)
	}
	return b.err
}

func defaultMessage(code Code) string {
	switch code {
	case CodeInvalidToken:
		return "signature verification failed"
	case CodeTerminalBlocked:
		return "merchant terminal is blocked"
	case CodeDuplicateOrder:
		return "order id already used by this merchant"
	case CodeInvalidState:
		return "payment is not in a state that allows this operation"
	case CodeInvalidTransition:
		return "requested status transition is not allowed"
	case CodeInvalidCard:
		return "card details failed validation"
	case CodeExpired:
		return "payment has expired"
	case CodeBankRejected:
		return "bank declined the operation"
	case CodeBankUnavailable:
		return "bank is unavailable"
	case CodeConcurrentModified:
		return "payment was modified concurrently, retry"
	case CodeNotFound:
		return "resource not found"
	case CodeValidation:
		return "request validation failed"
	default:
		return "internal error"
	}
}

// Common constructors used throughout the service layer.

func InvalidToken(reason string) *Error {
	return NewError(CodeInvalidToken).WithDetail("reason", reason).Build()
}

func TerminalBlocked(merchantKey string) *Error {
	return NewError(CodeTerminalBlocked).WithDetail("merchant_key", merchantKey).Build()
}

func DuplicateOrder(merchantKey, orderID string) *Error {
	return NewError(CodeDuplicateOrder).
		WithDetail("merchant_key", merchantKey).
		WithDetail("order_id", orderID).
		Build()
}

func InvalidTransition(from, to string) *Error {
	return NewError(CodeInvalidTransition).
		WithDetail("from", from).
		WithDetail("to", to).
		Build()
}

func ConcurrentModification(paymentID string) *Error {
	return NewError(CodeConcurrentModified).WithDetail("payment_id", paymentID).Build()
}

func NotFound(entity, id string) *Error {
	return NewError(CodeNotFound).
		WithMessagef("%s %q not found", entity, id).
		WithDetail("entity", entity).
		WithDetail("id", id).
		Build()
}

func Validation(field, reason string) *Error {
	return NewError(CodeValidation).
		WithMessagef("field %q: %s", field, reason).
		WithDetail("field", field).
		WithDetail("reason", reason).
		Build()
}

func Internal(message string, cause error) *Error {
	return NewError(CodeInternal).WithMessage(message).WithCause(cause).Build()
}

func BankUnavailable(cause error) *Error {
	return NewError(CodeBankUnavailable).WithCause(cause).Build()
}

func BankRejected(reason string) *Error {
	return NewError(CodeBankRejected).WithDetail("reason", reason).Build()
}
