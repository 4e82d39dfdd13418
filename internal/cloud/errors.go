package cloud

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures the orchestrator reacts to.
type ErrorKind int

const (
	// KindOther is any failure without special handling.
	KindOther ErrorKind = iota
	// KindNotFound means the referenced resource does not exist (yet).
	KindNotFound
	// KindDuplicate means the resource or rule already exists.
	KindDuplicate
	// KindDependency means the resource is still referenced by another.
	KindDependency
	// KindUnsupported means the backend cannot express the request.
	KindUnsupported
)

// Error wraps a provider SDK error with the operation and its kind. The
// SDK error stays reachable through errors.As.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err for op with the given kind. A nil err yields nil.
func NewError(op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func isKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsNotFound reports whether err marks a missing resource.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsDuplicate reports whether err marks an already existing resource.
func IsDuplicate(err error) bool { return isKind(err, KindDuplicate) }

// IsDependency reports whether err marks a resource still in use.
func IsDependency(err error) bool { return isKind(err, KindDependency) }

// IsUnsupported reports whether err marks a request the backend cannot serve.
func IsUnsupported(err error) bool { return isKind(err, KindUnsupported) }
