// Package apperr defines the error taxonomy shared by all services. Every
// failing operation reports one of four kinds so handlers can map them to a
// distinct HTTP status instead of a generic catch-all.
package apperr

import "errors"

type Kind int

const (
	// KindUnknown is anything a service did not classify; handlers treat it
	// as an internal error.
	KindUnknown Kind = iota
	// KindNotFound means a resource id did not resolve.
	KindNotFound
	// KindPermissionDenied means the ability engine denied the action.
	KindPermissionDenied
	// KindValidation means a precondition was violated (duplicate friend
	// request, double like, self kick, ...).
	KindValidation
	// KindUnauthenticated means identity resolution failed.
	KindUnauthenticated
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func PermissionDenied(msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// KindOf extracts the kind from any error, returning KindUnknown for errors
// that did not originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool         { return KindOf(err) == KindNotFound }
func IsPermissionDenied(err error) bool { return KindOf(err) == KindPermissionDenied }
func IsValidation(err error) bool       { return KindOf(err) == KindValidation }
func IsUnauthenticated(err error) bool  { return KindOf(err) == KindUnauthenticated }
