package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures.
type Kind int

const (
	// KindGateway means the external tool could not be run or reported failure.
	KindGateway Kind = iota
	// KindParse means the external tool produced output we could not decode.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindGateway:
		return "gateway"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is a typed gateway failure. Message is suitable for the status line.
type Error struct {
	Op      string
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func gatewayError(op string, err error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: KindGateway, Message: fmt.Sprintf(format, args...), Err: err}
}

func parseError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindParse, Message: fmt.Sprintf("Parse error: %v", err), Err: err}
}

// IsParse reports whether err is a parse failure.
func IsParse(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == KindParse
}

// Message returns the user-facing text for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Error()
	}
	return err.Error()
}
