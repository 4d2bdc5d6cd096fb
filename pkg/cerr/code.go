package cerr

import (
	"net/http"

	"connectrpc.com/connect"
)

// Code classifies an Error. The values follow the gRPC status codes.
type Code int

const (
	OK Code = iota
	Canceled
	Unknown
	InvalidArgument
	DeadlineExceeded
	NotFound
	AlreadyExists
	PermissionDenied
	ResourceExhausted
	FailedPrecondition
	Aborted
	OutOfRange
	Unimplemented
	Internal
	Unavailable
	DataLoss
	Unauthenticated
)

var codeNames = [...]string{
	OK:                 "ok",
	Canceled:           "canceled",
	Unknown:            "unknown",
	InvalidArgument:    "invalid_argument",
	DeadlineExceeded:   "deadline_exceeded",
	NotFound:           "not_found",
	AlreadyExists:      "already_exists",
	PermissionDenied:   "permission_denied",
	ResourceExhausted:  "resource_exhausted",
	FailedPrecondition: "failed_precondition",
	Aborted:            "aborted",
	OutOfRange:         "out_of_range",
	Unimplemented:      "unimplemented",
	Internal:           "internal",
	Unavailable:        "unavailable",
	DataLoss:           "data_loss",
	Unauthenticated:    "unauthenticated",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return "unknown"
	}
	return codeNames[c]
}

// ParseCode is the inverse of String. Unrecognized names are Unknown.
func ParseCode(s string) Code {
	for c, name := range codeNames {
		if name == s {
			return Code(c)
		}
	}
	return Unknown
}

// ConnectCode returns the matching connect code. OK maps to 0, which connect
// does not define.
func (c Code) ConnectCode() connect.Code {
	if c == OK {
		return 0
	}
	if c < 0 || c > Unauthenticated {
		return connect.CodeUnknown
	}
	// connect codes share the gRPC numbering.
	return connect.Code(c)
}

// CodeOf returns the code carried by a connect error, or Unknown.
func CodeOf(err error) Code {
	cc := connect.CodeOf(err)
	if cc < connect.CodeCanceled || cc > connect.CodeUnauthenticated {
		return Unknown
	}
	return Code(cc)
}

var httpStatus = map[Code]int{
	OK:                 http.StatusOK,
	Canceled:           499,
	Unknown:            http.StatusInternalServerError,
	InvalidArgument:    http.StatusBadRequest,
	DeadlineExceeded:   http.StatusGatewayTimeout,
	NotFound:           http.StatusNotFound,
	AlreadyExists:      http.StatusConflict,
	PermissionDenied:   http.StatusForbidden,
	ResourceExhausted:  http.StatusTooManyRequests,
	FailedPrecondition: http.StatusPreconditionFailed,
	Aborted:            http.StatusConflict,
	OutOfRange:         http.StatusBadRequest,
	Unimplemented:      http.StatusNotImplemented,
	Internal:           http.StatusInternalServerError,
	Unavailable:        http.StatusServiceUnavailable,
	DataLoss:           http.StatusInternalServerError,
	Unauthenticated:    http.StatusUnauthorized,
}

func (c Code) HTTPCode() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
