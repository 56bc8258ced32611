// Package errs classifies tracker failures.
//
// Every failure that aborts a step carries a Kind so the driver and the CLI
// can report what went wrong without string matching. Kinds are attached at
// the boundary where the failure is first observed (the HTTP client, the
// snapshot decoder, the policy resolver) and survive further wrapping with
// fmt.Errorf("...: %w").
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure.
type Kind string

const (
	// KindConfig indicates an invalid or unreadable configuration file.
	KindConfig Kind = "config"
	// KindNetwork indicates a transport failure talking to a remote service.
	KindNetwork Kind = "network"
	// KindResponse indicates a remote service answered with errors or no data.
	KindResponse Kind = "response"
	// KindNotFound indicates a remote object (repository, issue) does not exist.
	KindNotFound Kind = "not_found"
	// KindParse indicates a malformed snapshot or version header.
	KindParse Kind = "parse"
	// KindPolicy indicates the repo policy cannot be applied (missing label, bad component).
	KindPolicy Kind = "policy"
)

// Error is a classified failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap classifies err under kind with op describing what was being attempted.
// A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf creates a classified error from a format string.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or "" if err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Convenience constructors for the common kinds.

func Config(op string, err error) error   { return Wrap(KindConfig, op, err) }
func Network(op string, err error) error  { return Wrap(KindNetwork, op, err) }
func Response(op string, err error) error { return Wrap(KindResponse, op, err) }
func NotFound(op string, err error) error { return Wrap(KindNotFound, op, err) }
func Parse(op string, err error) error    { return Wrap(KindParse, op, err) }
func Policy(op string, err error) error   { return Wrap(KindPolicy, op, err) }
