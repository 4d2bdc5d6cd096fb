// Package cerr defines an error type that carries a status code, a message
// safe to show to clients, and optional structured details.
package cerr

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"buf.build/gen/go/bufbuild/protovalidate/protocolbuffers/go/buf/validate"
	"google.golang.org/protobuf/proto"

	"github.com/kazz187/todotxt/pkg/clog"
)

type Error struct {
	Code    Code
	Msg     string          // returned to the client together with Code
	Err     error           // logged, never returned
	Stack   string          // captured for error-level codes
	Details []proto.Message // returned to the client
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.CodeToLevel(code.ConnectCode()) == slog.LevelError {
		buf := make([]byte, 2048)
		n := runtime.Stack(buf, false)
		err.Stack = string(buf[:n])
	}
	return err
}

func NewErrorWithDetails(code Code, msg string, underlying error, details ...proto.Message) *Error {
	err := NewError(code, msg, underlying)
	err.Details = details
	return err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AddDetailMessage attaches a human readable detail.
func (e *Error) AddDetailMessage(msg string) *Error {
	e.Details = append(e.Details, &validate.Violation{Message: &msg})
	return e
}

// AddDetailMessageWithCode attaches a detail with a machine readable rule
// id such as "parse" or "date".
func (e *Error) AddDetailMessageWithCode(msg, ruleID string) *Error {
	e.Details = append(e.Details, &validate.Violation{Message: &msg, RuleId: &ruleID})
	return e
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

// CodeFromError returns the code of the first *Error in err's chain,
// Unknown when there is none, and OK for nil.
func CodeFromError(err error) Code {
	if err == nil {
		return OK
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return Unknown
}
