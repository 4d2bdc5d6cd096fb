package clog

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
)

// StatusToLevel maps an HTTP response status to the level it is logged at.
// Client errors warn, server errors fail, and 499 (client closed request)
// is informational.
func StatusToLevel(status int) slog.Level {
	switch {
	case status == 499:
		return slog.LevelInfo
	case status >= 100 && status < http.StatusBadRequest:
		return slog.LevelInfo
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// CodeToLevel maps an error code to the level it is logged at. Codes that
// describe caller mistakes are informational.
func CodeToLevel(code connect.Code) slog.Level {
	switch code {
	case connect.CodeCanceled,
		connect.CodeInvalidArgument,
		connect.CodeDeadlineExceeded,
		connect.CodeNotFound,
		connect.CodeAlreadyExists,
		connect.CodePermissionDenied,
		connect.CodeFailedPrecondition,
		connect.CodeAborted,
		connect.CodeOutOfRange,
		connect.CodeUnauthenticated:
		return slog.LevelInfo
	default:
		return slog.LevelError
	}
}
