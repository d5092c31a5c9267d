package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// ResponseRecorder wraps ResponseWriter, captures the status code and byte count, and runs
// registered hooks once just before the header is written.
type ResponseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool
	before []func(http.ResponseWriter)
}

// NewResponseRecorder wraps w. An existing recorder is returned as is so nested middleware
// share one set of hooks.
func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	if rw, ok := w.(*ResponseRecorder); ok {
		return rw
	}
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

// SetBeforeWrite registers fn to run before the first header write. Hooks run in reverse
// registration order, so inner middleware see the response before outer ones.
func (rw *ResponseRecorder) SetBeforeWrite(fn func(http.ResponseWriter)) {
	if fn != nil {
		rw.before = append(rw.before, fn)
	}
}

func (rw *ResponseRecorder) fireBefore() {
	if rw.wrote {
		return
	}
	rw.wrote = true
	for i := len(rw.before) - 1; i >= 0; i-- {
		rw.before[i](rw.ResponseWriter)
	}
}

func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	if rw.wrote {
		return
	}
	rw.status = statusCode
	rw.fireBefore()
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseRecorder) Write(p []byte) (int, error) {
	if !rw.wrote {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += n
	return n, err
}

// Flush implements http.Flusher when the underlying writer does.
func (rw *ResponseRecorder) Flush() {
	if !rw.wrote {
		rw.WriteHeader(http.StatusOK)
	}
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker when the underlying writer does.
func (rw *ResponseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("middleware: hijack not supported")
	}
	return h.Hijack()
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (rw *ResponseRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

func (rw *ResponseRecorder) Status() int { return rw.status }

// BytesWritten reports the body size written so far.
func (rw *ResponseRecorder) BytesWritten() int { return rw.bytes }

// Wrote reports whether the header has been sent.
func (rw *ResponseRecorder) Wrote() bool { return rw.wrote }
