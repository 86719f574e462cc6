package service

import "fmt"

// Error codes surfaced to the handler boundary.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeEmailInUse         = "EMAIL_IN_USE"
	CodeUnknownEmail       = "UNKNOWN_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeForbidden          = "FORBIDDEN"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewNotFound(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid value for field '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewForbidden(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeForbidden,
		Message: fmt.Sprintf("caller is not the owner of %s %s", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewDuplicateEmail(email string) *BusinessError {
	return &BusinessError{
		Code:    CodeDuplicateEmail,
		Message: "email is already registered",
		Details: map[string]any{"email": email},
	}
}

func NewEmailInUse(email string) *BusinessError {
	return &BusinessError{
		Code:    CodeEmailInUse,
		Message: "email is already in use by another account",
		Details: map[string]any{"email": email},
	}
}

func NewUnknownEmail(email string) *BusinessError {
	return &BusinessError{
		Code:    CodeUnknownEmail,
		Message: "email is not registered",
		Details: map[string]any{"email": email},
	}
}

func NewInvalidCredentials() *BusinessError {
	return &BusinessError{
		Code:    CodeInvalidCredentials,
		Message: "password does not match",
	}
}

func NewWeakPassword(reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeWeakPassword,
		Message: "new password is too weak: " + reason,
		Details: map[string]any{"reason": reason},
	}
}
