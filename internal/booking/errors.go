package booking

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the HTTP layer can map it to a status
// code without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthorization
	KindPolicy
)

// DomainError is a recoverable business-rule failure with a message meant
// for the API client.
type DomainError struct {
	Kind    Kind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func Validationf(format string, args ...any) error {
	return &DomainError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &DomainError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...any) error {
	return &DomainError{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Policyf(format string, args ...any) error {
	return &DomainError{Kind: KindPolicy, Message: fmt.Sprintf(format, args...)}
}

// KindOf unwraps err and reports its domain kind, or KindUnknown for
// infrastructure failures. Store failures must never be read as "no conflict",
// so anything unclassified stays KindUnknown and surfaces as an internal error.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
