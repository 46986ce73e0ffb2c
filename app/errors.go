package app

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindFormData    ErrorKind = "FormDataError"
	KindImageUpload ErrorKind = "ImageUploadError"
	KindInvalidJson ErrorKind = "InvalidJsonError"
	KindValidation  ErrorKind = "ValidationError"
	KindAuth        ErrorKind = "AuthError"
	KindNotFound    ErrorKind = "NotFoundError"
	KindStorage     ErrorKind = "StorageError"
)

// Error is a domain failure. Message is safe to show a client; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v: %v: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func FormDataError(message string, err error) *Error {
	return newError(KindFormData, message, err)
}

func ImageUploadError(message string, err error) *Error {
	return newError(KindImageUpload, message, err)
}

func InvalidJsonError(message string, err error) *Error {
	return newError(KindInvalidJson, message, err)
}

func ValidationError(message string) *Error {
	return newError(KindValidation, message, nil)
}

func AuthError(message string, err error) *Error {
	return newError(KindAuth, message, err)
}

func NotFoundError(message string) *Error {
	return newError(KindNotFound, message, nil)
}

func StorageError(message string, err error) *Error {
	return newError(KindStorage, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" for unclassified errors.
func KindOf(err error) ErrorKind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
