package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeMissingIdempotencyKey = "MISSING_IDEMPOTENCY_KEY"
	ErrCodeRateLimited           = "RATE_LIMITED"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeUnsupportedEvent      = "UNSUPPORTED_EVENT_VERSION"
	ErrCodeNotificationDelivery  = "NOTIFICATION_DELIVERY_FAILED"
	ErrCodePaymentNotFound       = "PAYMENT_NOT_FOUND"
)

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewMissingIdempotencyKeyError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeMissingIdempotencyKey,
		Message:    "Idempotency-Key header is required",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewRateLimitedError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRateLimited,
		Message:    "Too many requests. Please retry later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewPaymentNotFoundError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodePaymentNotFound,
		Message:    "Payment not found",
		HTTPStatus: http.StatusNotFound,
		Err:        err,
	}
}

func NewNotificationDeliveryError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotificationDelivery,
		Message:    "Notification delivery failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
