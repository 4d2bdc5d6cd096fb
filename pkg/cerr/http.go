package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"google.golang.org/protobuf/encoding/protojson"

	"github.com/kazz187/todotxt/pkg/clog"
)

type responseReceiverKey struct{}

type responseReceiver struct {
	status   int
	response any
	err      error
}

func responseReceiverFrom(ctx context.Context) *responseReceiver {
	rr, _ := ctx.Value(responseReceiverKey{}).(*responseReceiver)
	return rr
}

// SetJSONResponse records the value the middleware encodes as the response
// body with status 200.
func SetJSONResponse(ctx context.Context, response any) {
	if rr := responseReceiverFrom(ctx); rr != nil {
		rr.response = response
	}
}

// SetJSONResponseWithStatus is SetJSONResponse with another 2xx status.
func SetJSONResponseWithStatus(ctx context.Context, status int, response any) {
	if rr := responseReceiverFrom(ctx); rr != nil {
		rr.status = status
		rr.response = response
	}
}

// SetJSONError records the error the middleware turns into the response.
func SetJSONError(ctx context.Context, err error) {
	if rr := responseReceiverFrom(ctx); rr != nil {
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// NewJSONChiMiddleware lets handlers report results through SetJSONResponse
// and SetJSONError instead of writing the response themselves.
func NewJSONChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{}
			ctx := context.WithValue(r.Context(), responseReceiverKey{}, rr)
			next.ServeHTTP(rw, r.WithContext(ctx))
			writeResponse(ctx, rw, rr)
		})
	}
}

type httpError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []json.RawMessage `json:"details,omitempty"`
}

func writeResponse(ctx context.Context, rw http.ResponseWriter, rr *responseReceiver) {
	if rr.err == nil {
		status := rr.status
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(ctx, rw, status, rr.response)
		return
	}
	if isCanceled(rr.err) {
		writeJSONError(ctx, rw, NewError(Canceled, "connection closed", rr.err))
		return
	}

	clog.AddError(ctx, rr.err)
	var cErr *Error
	if errors.As(rr.err, &cErr) {
		if cErr.Stack != "" {
			clog.AddStack(ctx, cErr.Stack)
		}
		writeJSONError(ctx, rw, cErr)
		return
	}
	writeJSONError(ctx, rw, NewError(Unknown, "unknown error", rr.err))
}

func isCanceled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.Err == "operation was canceled"
}

func encode(v any) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, response any) {
	buf, err := encode(response)
	if err != nil {
		writeJSONError(ctx, rw, NewError(Internal, "server error", err))
		return
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}

func writeJSONError(ctx context.Context, rw http.ResponseWriter, origErr *Error) {
	body := httpError{Code: origErr.Code.String(), Message: origErr.Msg}
	for _, d := range origErr.Details {
		raw, err := protojson.Marshal(d)
		if err != nil {
			origErr.Err = errors.Join(origErr.Err, err)
			continue
		}
		body.Details = append(body.Details, raw)
	}
	buf, err := encode(body)
	if err != nil {
		buf = bytes.NewBufferString(`{"code":"internal","message":"server error"}` + "\n")
		origErr.Err = errors.Join(origErr.Err, err)
		clog.AddError(ctx, origErr)
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(origErr.Code.HTTPCode())
	if _, err := rw.Write(buf.Bytes()); err != nil {
		origErr.Err = errors.Join(origErr.Err, err)
		clog.AddError(ctx, origErr)
	}
}
