package fault

import (
	"errors"
	"fmt"
)

// Kind classifies domain failures so transport layers can map them to a
// response code without inspecting package sentinels one by one.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidOperation
	KindConfig
)

type Fault struct {
	kind Kind
	err  error
}

func (f *Fault) Error() string {
	return f.err.Error()
}

func (f *Fault) Unwrap() error {
	return f.err
}

func (f *Fault) Kind() Kind {
	return f.kind
}

// Wrap attaches a kind to err. A nil err returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Fault{kind: kind, err: err}
}

func NotFound(format string, args ...any) error {
	return Wrap(KindNotFound, fmt.Errorf(format, args...))
}

func Forbidden(format string, args ...any) error {
	return Wrap(KindForbidden, fmt.Errorf(format, args...))
}

func InvalidOperation(format string, args ...any) error {
	return Wrap(KindInvalidOperation, fmt.Errorf(format, args...))
}

func Config(format string, args ...any) error {
	return Wrap(KindConfig, fmt.Errorf(format, args...))
}

// KindOf walks the error chain for a Fault classification.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool  { return KindOf(err) == KindNotFound }
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }
func IsInvalid(err error) bool   { return KindOf(err) == KindInvalidOperation }
