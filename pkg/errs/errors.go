// Package errs holds the error taxonomy shared by the pipeline, the gateway and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound               Kind = "NOT_FOUND"
	KindFeatureDisabled        Kind = "FEATURE_DISABLED"
	KindNoApiKeyConfigured     Kind = "NO_API_KEY_CONFIGURED"
	KindMalformedModelResponse Kind = "MALFORMED_MODEL_RESPONSE"
	KindEmbeddingFailed        Kind = "EMBEDDING_FAILED"
	KindStoreWriteFailed       Kind = "STORE_WRITE_FAILED"
	KindInvalidRequest         Kind = "INVALID_REQUEST"
)

// Error carries a kind, the HTTP status it maps to and a client-facing message.
// errors.Is matches two *Error values by kind, so wrapped causes never break matching.
type Error struct {
	Kind           Kind
	HttpStatusCode int
	Message        string
	cause          error
}

var (
	ErrNotFound               = New(KindNotFound, http.StatusNotFound, "resource not found")
	ErrFeatureDisabled        = New(KindFeatureDisabled, http.StatusForbidden, "ai features are disabled for this account")
	ErrNoApiKeyConfigured     = New(KindNoApiKeyConfigured, http.StatusPreconditionFailed, "no api key configured for ai features")
	ErrMalformedModelResponse = New(KindMalformedModelResponse, http.StatusBadGateway, "language model returned an unusable response")
	ErrEmbeddingFailed        = New(KindEmbeddingFailed, http.StatusBadGateway, "embedding provider failed")
	ErrStoreWriteFailed       = New(KindStoreWriteFailed, http.StatusInternalServerError, "failed to persist memory data")
	ErrInvalidRequest         = New(KindInvalidRequest, http.StatusBadRequest, "invalid request")
)

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, HttpStatusCode: status, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithMessage returns a copy of e with a different client-facing message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Kind: e.Kind, HttpStatusCode: e.HttpStatusCode, Message: message, cause: e.cause}
}

// Wrap returns a new error of base's kind with cause attached.
func Wrap(base *Error, cause error) *Error {
	return &Error{Kind: base.Kind, HttpStatusCode: base.HttpStatusCode, Message: base.Message, cause: cause}
}

func Wrapf(base *Error, format string, args ...interface{}) *Error {
	return Wrap(base, fmt.Errorf(format, args...))
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRequestLevel reports whether err should be surfaced to the caller of a
// synchronous operation rather than only logged.
func IsRequestLevel(err error) bool {
	e, ok := As(err)
	if !ok {
		return false
	}
	switch e.Kind {
	case KindNotFound, KindFeatureDisabled, KindNoApiKeyConfigured, KindInvalidRequest:
		return true
	}
	return false
}
